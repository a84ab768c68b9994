package checker

import (
	"tyco/internal/ast"
	"tyco/internal/diag"
	"tyco/internal/solver"
	"tyco/internal/types"
)

// checkCall types call and new expressions. Signatures are tried in
// declaration order; the first whose inference and argument checks succeed
// wins. When none matches, the diagnostic lands against the last signature.
func (c *fileChecker) checkCall(node ast.NodeID, construct bool) types.TypeID {
	b := c.b()
	callee := c.arena.CallCallee(node)
	calleeType := c.checkExpr(callee, types.NoTypeID)
	args := c.arena.ListItems(c.arena.CallArgs(node))
	typeArgs := c.arena.ListItems(c.arena.CallTypeArgs(node))

	if calleeType == b.Error {
		c.checkArgsLoose(args)
		return b.Error
	}
	if calleeType == b.Any || calleeType == b.StrictAny {
		c.checkArgsLoose(args)
		return b.Any
	}

	ev := c.sub.Evaluator().Evaluate(calleeType)
	sigs := c.signaturesOf(ev, construct)
	if len(sigs) == 0 {
		c.checkArgsLoose(args)
		c.errorAt(diag.NotCallable, node,
			"This expression is not callable.\n  Type '%s' has no call signatures.", c.in.Format(calleeType))
		return b.Error
	}

	var explicit []types.TypeID
	for _, ta := range typeArgs {
		explicit = append(explicit, c.typeFromNode(ta, nil))
	}

	for i, sigID := range sigs {
		last := i == len(sigs)-1
		ret, ok := c.tryCallSignature(sigID, args, explicit, node, last)
		if ok {
			return ret
		}
	}
	return b.Error
}

func (c *fileChecker) checkArgsLoose(args []ast.NodeID) {
	for _, a := range args {
		c.checkExpr(a, types.NoTypeID)
	}
}

func (c *fileChecker) signaturesOf(t types.TypeID, construct bool) []types.SignatureID {
	o, ok := c.in.Object(t)
	if !ok {
		if c.in.KindOf(t) == types.KindIntersection {
			var out []types.SignatureID
			for _, m := range c.in.ListMembers(t) {
				out = append(out, c.signaturesOf(c.sub.Evaluator().Evaluate(m), construct)...)
			}
			return out
		}
		return nil
	}
	if construct {
		return o.Constructs
	}
	return o.Calls
}

// tryCallSignature attempts one overload. Diagnostics are emitted only for
// the final candidate (reportErrors), matching reference behavior.
func (c *fileChecker) tryCallSignature(sigID types.SignatureID, args []ast.NodeID, explicit []types.TypeID, node ast.NodeID, reportErrors bool) (types.TypeID, bool) {
	b := c.b()
	sig := c.in.Signature(sigID)

	// Instantiate generic signatures: explicit type arguments first,
	// inference from argument types otherwise.
	if len(sig.TypeParams) > 0 {
		var sub solver.Substitution
		if len(explicit) > 0 {
			sub = make(solver.Substitution, len(sig.TypeParams))
			for i, tp := range sig.TypeParams {
				if i < len(explicit) {
					sub[tp] = explicit[i]
				} else if info, _ := c.in.Param(tp); info != nil && info.Default.IsValid() {
					sub[tp] = info.Default
				} else {
					sub[tp] = b.Unknown
				}
			}
		} else {
			ic := solver.NewInference(c.in, sig.TypeParams)
			params := nonThis(sig.Params)
			for i, arg := range args {
				pt, ok := c.paramTypeAt(params, i)
				if !ok {
					break
				}
				at := c.argumentProbeType(arg)
				if at.IsValid() {
					ic.Infer(c.unfresh(at), pt, types.VarianceCovariant)
				}
			}
			var solved bool
			sub, solved = ic.Solve(c.sub)
			if !solved {
				if reportErrors {
					c.errorAt(diag.NoMatchingOverload, node, "No overload matches this call.")
					c.checkArgsLoose(args)
				}
				return b.Error, false
			}
		}
		inst := c.sub.Evaluator().Instantiate(c.in.MakeFunction(sigID), sub)
		if o, ok := c.in.Object(inst); ok && len(o.Calls) > 0 {
			sig = c.in.Signature(o.Calls[0])
		}
	}

	params := nonThis(sig.Params)
	required := sig.RequiredParams()
	_, hasRest := sig.Rest()
	if len(args) < required || (!hasRest && len(args) > len(params)) {
		if reportErrors {
			c.errorAt(diag.ExpectedArguments, node,
				"Expected %d arguments, but got %d.", required, len(args))
			c.checkArgsLoose(args)
		}
		return b.Error, false
	}

	ok := true
	for i, arg := range args {
		pt, found := c.paramTypeAt(params, i)
		if !found {
			break
		}
		at := c.checkExpr(arg, pt)
		if reportErrors {
			if !c.checkAssignable(at, pt, arg, diag.ArgumentNotAssignable) {
				ok = false
			}
		} else if !c.sub.Check(at, pt).IsTrue() && at != b.Error {
			ok = false
		}
	}
	if !ok {
		return b.Error, false
	}
	return sig.Return, true
}

// paramTypeAt resolves the parameter type an argument position checks
// against, expanding the rest parameter.
func (c *fileChecker) paramTypeAt(params []types.Param, i int) (types.TypeID, bool) {
	if i < len(params) && !params[i].Rest {
		return params[i].Type, true
	}
	if len(params) > 0 && params[len(params)-1].Rest {
		t := params[len(params)-1].Type
		if c.in.KindOf(t) == types.KindArray {
			return c.in.MustLookup(t).Elem, true
		}
		return t, true
	}
	return types.NoTypeID, false
}

// argumentProbeType computes an argument's type for inference without
// emitting diagnostics or committing contextual decisions. Function
// expressions are skipped: their parameters await the instantiated
// contextual signature.
func (c *fileChecker) argumentProbeType(arg ast.NodeID) types.TypeID {
	switch c.arena.Kind(arg) {
	case ast.KindArrowFunction, ast.KindFunctionExpr:
		return types.NoTypeID
	}
	if t, ok := c.res.ExprTypes[arg]; ok {
		return t
	}
	return c.checkExpr(arg, types.NoTypeID)
}

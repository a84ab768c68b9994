package checker

import (
	"tyco/internal/ast"
	"tyco/internal/types"
)

// checkFunctionExpr types an arrow or function expression. Unannotated
// parameters receive types from the contextual call signature, which is how
// callbacks get their parameter types without annotations.
func (c *fileChecker) checkFunctionExpr(node ast.NodeID, contextual types.TypeID) types.TypeID {
	var ctxSig *types.SignatureInfo
	if contextual.IsValid() {
		ev := c.sub.Evaluator().Evaluate(contextual)
		if o, ok := c.in.Object(ev); ok && len(o.Calls) > 0 {
			ctxSig = c.in.Signature(o.Calls[0])
		}
	}

	params := c.arena.ListItems(c.arena.FnParams(node))
	var sigParams []types.Param
	ctxIdx := 0
	for _, p := range params {
		pf := c.arena.Flags(p)
		if pf.Has(ast.FlagThisParam) {
			continue
		}
		var t types.TypeID
		switch {
		case c.arena.DeclType(p).IsValid():
			t = c.typeFromNode(c.arena.DeclType(p), nil)
		case ctxSig != nil && ctxIdx < len(nonThis(ctxSig.Params)):
			t = nonThis(ctxSig.Params)[ctxIdx].Type
		case c.arena.DeclInit(p).IsValid():
			t = c.widenLiteral(c.unfresh(c.checkExpr(c.arena.DeclInit(p), types.NoTypeID)))
		default:
			t = c.b().Any
		}
		if sym := c.bind.DeclSymbols[p]; sym.IsValid() {
			c.res.SymbolTypes[sym] = t
		}
		sigParams = append(sigParams, types.Param{
			Name:     c.arena.Atom(c.arena.DeclName(p)),
			Type:     t,
			Optional: pf.Has(ast.FlagOptional) || c.arena.DeclInit(p).IsValid(),
			Rest:     pf.Has(ast.FlagRest),
		})
		ctxIdx++
	}

	var annotated types.TypeID
	if rt := c.arena.FnReturnType(node); rt.IsValid() && c.arena.Kind(rt) != ast.KindTypePredicate {
		annotated = c.typeFromNode(rt, nil)
	}
	sigID := c.in.MakeSignature(types.SignatureInfo{Params: sigParams, Return: firstValid(annotated, c.b().Any)})
	ret := c.checkFunctionBody(node, sigID)
	if annotated.IsValid() {
		ret = annotated
	}

	final := c.in.MakeSignature(types.SignatureInfo{Params: sigParams, Return: ret})
	c.checkImplicitAnyParams(node)
	return c.in.MakeFunction(final)
}

func nonThis(ps []types.Param) []types.Param {
	if len(ps) > 0 && ps[0].IsThis {
		return ps[1:]
	}
	return ps
}

func firstValid(a, b types.TypeID) types.TypeID {
	if a.IsValid() {
		return a
	}
	return b
}

package checker

import (
	"tyco/internal/ast"
	"tyco/internal/diag"
	"tyco/internal/types"
)

func (c *fileChecker) checkBinary(node ast.NodeID, contextual types.TypeID) types.TypeID {
	op := c.arena.Op(node)
	lhs := c.arena.BinLHS(node)
	rhs := c.arena.BinRHS(node)
	b := c.b()

	if op.IsAssignment() {
		return c.checkAssignment(node, op, lhs, rhs)
	}

	switch op {
	case ast.OpComma:
		c.checkExpr(lhs, types.NoTypeID)
		return c.checkExpr(rhs, contextual)
	case ast.OpLogicalAnd:
		c.checkExpr(lhs, types.NoTypeID)
		rt := c.checkExpr(rhs, contextual)
		return c.in.MakeUnion(rt, b.False)
	case ast.OpLogicalOr:
		lt := c.checkExpr(lhs, types.NoTypeID)
		rt := c.checkExpr(rhs, contextual)
		return c.in.MakeUnion(c.removeFalsy(lt), rt)
	case ast.OpNullish:
		lt := c.checkExpr(lhs, types.NoTypeID)
		rt := c.checkExpr(rhs, contextual)
		return c.in.MakeUnion(c.removeNullish(lt), rt)
	}

	lt := c.checkExpr(lhs, types.NoTypeID)
	rt := c.checkExpr(rhs, types.NoTypeID)

	switch op {
	case ast.OpPlus:
		lb := c.in.BaseOfLiteral(lt)
		rb := c.in.BaseOfLiteral(rt)
		switch {
		case lb == b.String || rb == b.String:
			return b.String
		case lb == b.BigInt && rb == b.BigInt:
			return b.BigInt
		case lt == b.Any || rt == b.Any || lt == b.Error || rt == b.Error:
			return b.Any
		default:
			return b.Number
		}
	case ast.OpMinus, ast.OpStar, ast.OpSlash, ast.OpPercent, ast.OpExp,
		ast.OpAmp, ast.OpPipe, ast.OpCaret, ast.OpShl, ast.OpShr, ast.OpUShr:
		if c.in.BaseOfLiteral(lt) == b.BigInt && c.in.BaseOfLiteral(rt) == b.BigInt {
			return b.BigInt
		}
		return b.Number
	case ast.OpLess, ast.OpLessEq, ast.OpGreater, ast.OpGreaterEq:
		return b.Boolean
	case ast.OpEq, ast.OpNotEq, ast.OpStrictEq, ast.OpStrictNotEq:
		c.checkComparability(node, lt, rt)
		return b.Boolean
	case ast.OpInstanceOf, ast.OpIn:
		return b.Boolean
	}
	return b.Error
}

// checkComparability flags comparisons whose operands share no overlap.
func (c *fileChecker) checkComparability(node ast.NodeID, lt, rt types.TypeID) {
	b := c.b()
	if lt == b.Any || rt == b.Any || lt == b.Error || rt == b.Error {
		return
	}
	if c.in.IsNullish(lt) || c.in.IsNullish(rt) {
		return
	}
	if c.sub.Check(lt, rt).IsTrue() || c.sub.Check(rt, lt).IsTrue() {
		return
	}
	// Literal vs its base primitive overlaps.
	if c.sub.Check(c.in.BaseOfLiteral(lt), c.in.BaseOfLiteral(rt)).IsTrue() ||
		c.sub.Check(c.in.BaseOfLiteral(rt), c.in.BaseOfLiteral(lt)).IsTrue() {
		return
	}
	c.errorAt(diag.ComparisonUnintentional, node,
		"This comparison appears to be unintentional because the types '%s' and '%s' have no overlap.",
		c.in.Format(lt), c.in.Format(rt))
}

func (c *fileChecker) checkAssignment(node ast.NodeID, op ast.Op, lhs, rhs ast.NodeID) types.TypeID {
	b := c.b()
	targetType := c.writeTypeOf(lhs)
	ctx := targetType
	if op != ast.OpAssign {
		ctx = types.NoTypeID
	}
	rt := c.checkExpr(rhs, ctx)
	if op == ast.OpAssign && targetType.IsValid() && targetType != b.Error {
		c.checkAssignable(rt, targetType, rhs, diag.NotAssignable)
		return rt
	}
	if logical, ok := op.LogicalAssignmentOp(); ok {
		_ = logical
		return c.in.MakeUnion(c.unfresh(targetType), c.unfresh(rt))
	}
	// Compound arithmetic assignments produce the operand primitive.
	lb := c.in.BaseOfLiteral(targetType)
	if op == ast.OpPlusAssign && lb == b.String {
		return b.String
	}
	return b.Number
}

// writeTypeOf computes the type an assignment target accepts, preferring
// setter types and flagging readonly violations.
func (c *fileChecker) writeTypeOf(lhs ast.NodeID) types.TypeID {
	b := c.b()
	switch c.arena.Kind(lhs) {
	case ast.KindIdent:
		name := c.arena.Atom(lhs)
		sym, ok := c.resolveName(lhs, name)
		if !ok {
			c.errorAt(diag.CannotFindName, lhs, "Cannot find name '%s'.", c.arena.Text(lhs))
			return b.Error
		}
		c.res.UseSymbols[lhs] = sym
		return c.typeOfSymbol(sym)
	case ast.KindPropertyAccess:
		objType := c.checkExpr(c.arena.AccessObj(lhs), types.NoTypeID)
		name := c.arena.Atom(c.arena.AccessName(lhs))
		ev := c.sub.Evaluator().Evaluate(objType)
		if p, ok := c.in.FindProp(ev, name); ok {
			if p.Readonly {
				text, _ := c.arena.Strings.Lookup(name)
				c.errorAt(diag.ReadonlyAssignment, lhs,
					"Cannot assign to '%s' because it is a read-only property.", text)
			}
			if p.WriteType.IsValid() {
				return p.WriteType
			}
			return p.Type
		}
		return c.propertyOn(lhs, objType, name)
	case ast.KindElementAccess:
		return c.checkElementAccess(lhs)
	case ast.KindArrayLit, ast.KindObjectLit:
		// Destructuring assignment target: each element rechecks on its own.
		return b.Any
	}
	return c.checkExpr(lhs, types.NoTypeID)
}

// checkAssignable runs the solver and reports a diagnostic with the traced
// failure path when the check fails. ERROR on either side passes vacuously.
func (c *fileChecker) checkAssignable(src, tgt types.TypeID, at ast.NodeID, code diag.Code) bool {
	b := c.b()
	if !src.IsValid() || !tgt.IsValid() || src == b.Error || tgt == b.Error {
		return true
	}
	if c.sub.Check(src, tgt).IsTrue() {
		return true
	}
	// Re-run with the tracer installed for the precise failure reason.
	tracer := &solverTracerAdapter{}
	c.sub.Tracer = tracer
	c.sub.Check(src, tgt)
	c.sub.Tracer = nil

	if excess, prop, ok := tracer.excess(); ok {
		_ = excess
		text, _ := c.arena.Strings.Lookup(prop)
		c.errorAt(diag.ExcessProperty, at,
			"Object literal may only specify known properties, and '%s' does not exist in type '%s'.",
			text, c.in.Format(tgt))
		return false
	}
	msg := "Type '%s' is not assignable to type '%s'."
	if code == diag.ArgumentNotAssignable {
		msg = "Argument of type '%s' is not assignable to parameter of type '%s'."
	}
	c.errorAt(code, at, msg, c.in.Format(c.unfresh(src)), c.in.Format(tgt))
	return false
}

// removeFalsy drops the members the || operator filters out.
func (c *fileChecker) removeFalsy(t types.TypeID) types.TypeID {
	b := c.b()
	drop := func(m types.TypeID) bool {
		if c.in.IsNullish(m) || m == b.False || m == b.Void {
			return true
		}
		if v, ok := c.in.NumberValue(m); ok && v == 0 {
			return true
		}
		if s, ok := c.in.StringValue(m); ok && s == "" {
			return true
		}
		return false
	}
	if c.in.KindOf(t) != types.KindUnion {
		if drop(t) {
			return b.Never
		}
		return t
	}
	var kept []types.TypeID
	for _, m := range c.in.ListMembers(t) {
		if !drop(m) {
			kept = append(kept, m)
		}
	}
	return c.in.MakeUnion(kept...)
}

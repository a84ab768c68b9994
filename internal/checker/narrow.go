package checker

import (
	"tyco/internal/ast"
	"tyco/internal/flow"
	"tyco/internal/source"
	"tyco/internal/symbols"
	"tyco/internal/types"
)

// narrowedTypeAt walks the flow graph backwards from an identifier use,
// applying each flow fact to the declared type.
func (c *fileChecker) narrowedTypeAt(sym symbols.SymbolID, declared types.TypeID, use ast.NodeID) types.TypeID {
	flowID := c.bind.Flow.UseOf(use)
	if !flowID.IsValid() {
		return declared
	}
	w := &flowWalker{c: c, sym: sym, declared: declared, visiting: make(map[flow.FlowID]bool)}
	return w.typeAt(flowID, 0)
}

type flowWalker struct {
	c        *fileChecker
	sym      symbols.SymbolID
	declared types.TypeID
	visiting map[flow.FlowID]bool
}

const maxFlowDepth = 200

func (w *flowWalker) typeAt(id flow.FlowID, depth int) types.TypeID {
	c := w.c
	if depth > maxFlowDepth {
		return w.declared
	}
	n := c.bind.Flow.Get(id)
	if n == nil {
		return w.declared
	}
	if w.visiting[id] {
		// Loop back-edge: contribute nothing new.
		return c.b().Never
	}
	w.visiting[id] = true
	defer delete(w.visiting, id)

	switch n.Kind {
	case flow.KindStart:
		return w.declared
	case flow.KindUnreachable:
		return w.declared
	case flow.KindAssignment:
		return w.afterAssignment(n, depth)
	case flow.KindTrueCondition:
		t := w.typeAt(n.Antecedent(), depth+1)
		return w.narrowBy(t, n.Node, true)
	case flow.KindFalseCondition:
		t := w.typeAt(n.Antecedent(), depth+1)
		return w.narrowBy(t, n.Node, false)
	case flow.KindBranchLabel, flow.KindLoopLabel:
		var parts []types.TypeID
		for _, a := range n.Antecedents {
			parts = append(parts, w.typeAt(a, depth+1))
		}
		if len(parts) == 0 {
			return w.declared
		}
		return c.in.MakeUnion(parts...)
	case flow.KindCall:
		return w.afterCall(n, depth)
	case flow.KindArrayMutation, flow.KindAwaitPoint, flow.KindYieldPoint:
		// Suspension and mutation points invalidate narrowings that rely
		// on identity over time for mutable bindings.
		if w.isMutableBinding() {
			return w.declared
		}
		return w.typeAt(n.Antecedent(), depth+1)
	}
	return w.declared
}

func (w *flowWalker) isMutableBinding() bool {
	s := w.c.bind.Symbols.Get(w.sym)
	if s == nil {
		return true
	}
	if s.Flags&symbols.FlagBlockScopedVariable != 0 {
		for _, decl := range s.Decls {
			if w.c.isConstDecl(decl) {
				return false
			}
		}
	}
	return true
}

// afterAssignment refines to the assigned value's type when the assignment
// wrote this symbol.
func (w *flowWalker) afterAssignment(n *flow.Node, depth int) types.TypeID {
	c := w.c
	node := n.Node
	switch c.arena.Kind(node) {
	case ast.KindVarDeclaration:
		if c.bind.DeclSymbols[node] == w.sym {
			if t, ok := c.res.ExprTypes[c.arena.DeclInit(node)]; ok {
				return w.clampToDeclared(t)
			}
			return w.declared
		}
	case ast.KindBinary:
		lhs := c.arena.BinLHS(node)
		if c.arena.Kind(lhs) == ast.KindIdent && c.res.UseSymbols[lhs] == w.sym {
			if c.arena.Op(node) == ast.OpAssign {
				if t, ok := c.res.ExprTypes[c.arena.BinRHS(node)]; ok {
					return w.clampToDeclared(t)
				}
			}
			return w.declared
		}
	case ast.KindPrefixUnary, ast.KindPostfixUnary:
		operand := c.arena.Child(node, 0)
		if c.arena.Kind(operand) == ast.KindIdent && c.res.UseSymbols[operand] == w.sym {
			return w.clampToDeclared(c.b().Number)
		}
	}
	return w.typeAt(n.Antecedent(), depth+1)
}

// clampToDeclared keeps assignment narrowing inside the declared type.
func (w *flowWalker) clampToDeclared(t types.TypeID) types.TypeID {
	t = w.c.unfresh(t)
	if w.c.sub.Check(t, w.declared).IsTrue() {
		return t
	}
	return w.declared
}

// afterCall applies assertion-function narrowing at call flow nodes.
func (w *flowWalker) afterCall(n *flow.Node, depth int) types.TypeID {
	c := w.c
	before := w.typeAt(n.Antecedent(), depth+1)
	callNode := n.Node
	callee := c.arena.CallCallee(callNode)
	calleeType, ok := c.res.ExprTypes[callee]
	if !ok {
		return before
	}
	o, isObj := c.in.Object(c.sub.Evaluator().Evaluate(calleeType))
	if !isObj || len(o.Calls) == 0 {
		return before
	}
	pred := c.in.Signature(o.Calls[0]).Predicate
	if pred == nil || !pred.Asserts {
		return before
	}
	args := c.arena.ListItems(c.arena.CallArgs(callNode))
	if pred.ParamIndex < 0 || int(pred.ParamIndex) >= len(args) {
		return before
	}
	arg := args[pred.ParamIndex]
	if pred.Type.IsValid() {
		if c.arena.Kind(arg) == ast.KindIdent && c.res.UseSymbols[arg] == w.sym {
			return w.narrowTo(before, pred.Type, true)
		}
		return before
	}
	// assert(cond): the condition holds downstream.
	return w.narrowBy(before, arg, true)
}

// narrowBy refines t using a condition expression observed to be truthy
// (positive) or falsy.
func (w *flowWalker) narrowBy(t types.TypeID, cond ast.NodeID, positive bool) types.TypeID {
	c := w.c
	switch c.arena.Kind(cond) {
	case ast.KindParen:
		return w.narrowBy(t, c.arena.Child(cond, 0), positive)
	case ast.KindPrefixUnary:
		if c.arena.Op(cond) == ast.OpNot {
			return w.narrowBy(t, c.arena.Child(cond, 0), !positive)
		}
	case ast.KindIdent:
		if c.res.UseSymbols[cond] == w.sym || w.identIs(cond) {
			if positive {
				return c.removeFalsy(t)
			}
		}
	case ast.KindBinary:
		return w.narrowByBinary(t, cond, positive)
	case ast.KindCall:
		return w.narrowByPredicateCall(t, cond, positive)
	}
	return t
}

// identIs resolves an identifier use to confirm it names the walked symbol
// even when the expression was bound but not yet checked.
func (w *flowWalker) identIs(node ast.NodeID) bool {
	if w.c.arena.Kind(node) != ast.KindIdent {
		return false
	}
	if sym, ok := w.c.res.UseSymbols[node]; ok {
		return sym == w.sym
	}
	sym, ok := w.c.resolveName(node, w.c.arena.Atom(node))
	return ok && sym == w.sym
}

func (w *flowWalker) narrowByBinary(t types.TypeID, cond ast.NodeID, positive bool) types.TypeID {
	c := w.c
	op := c.arena.Op(cond)
	lhs := c.arena.BinLHS(cond)
	rhs := c.arena.BinRHS(cond)

	switch op {
	case ast.OpLogicalAnd:
		if positive {
			return w.narrowBy(w.narrowBy(t, lhs, true), rhs, true)
		}
		return t
	case ast.OpLogicalOr:
		if !positive {
			return w.narrowBy(w.narrowBy(t, lhs, false), rhs, false)
		}
		return t
	}
	if !op.IsEquality() {
		if op == ast.OpInstanceOf {
			return w.narrowByInstanceof(t, lhs, rhs, positive)
		}
		return t
	}
	if op == ast.OpNotEq || op == ast.OpStrictNotEq {
		positive = !positive
	}
	loose := op == ast.OpEq || op == ast.OpNotEq

	// typeof x === "kind"
	if tn, lit, ok := w.typeofComparison(lhs, rhs); ok && tn {
		return w.narrowByTypeof(t, lit, positive)
	}
	// x === <literal> and x.k === <literal>
	if litType, ok := w.literalOperand(lhs, rhs); ok {
		other := lhs
		if w.isLiteralNode(lhs) {
			other = rhs
		}
		if w.identIs(other) {
			return w.narrowByLiteral(t, litType, positive, loose)
		}
		if c.arena.Kind(other) == ast.KindPropertyAccess && w.identIs(c.arena.AccessObj(other)) {
			prop := c.arena.Atom(c.arena.AccessName(other))
			return w.narrowByDiscriminant(t, prop, litType, positive)
		}
	}
	return t
}

// typeofComparison recognizes `typeof x === "s"` with x naming the symbol.
func (w *flowWalker) typeofComparison(lhs, rhs ast.NodeID) (matched bool, literal string, ok bool) {
	c := w.c
	var typeofNode, litNode ast.NodeID
	switch {
	case c.arena.Kind(lhs) == ast.KindTypeOfExpr && c.arena.Kind(rhs) == ast.KindStringLit:
		typeofNode, litNode = lhs, rhs
	case c.arena.Kind(rhs) == ast.KindTypeOfExpr && c.arena.Kind(lhs) == ast.KindStringLit:
		typeofNode, litNode = rhs, lhs
	default:
		return false, "", false
	}
	if !w.identIs(c.arena.Child(typeofNode, 0)) {
		return false, "", false
	}
	return true, c.arena.Text(litNode), true
}

func (w *flowWalker) isLiteralNode(node ast.NodeID) bool {
	switch w.c.arena.Kind(node) {
	case ast.KindStringLit, ast.KindNumberLit, ast.KindTrueLit, ast.KindFalseLit,
		ast.KindNullLit, ast.KindBigIntLit:
		return true
	case ast.KindIdent:
		return w.c.arena.Text(node) == "undefined"
	}
	return false
}

func (w *flowWalker) literalOperand(lhs, rhs ast.NodeID) (types.TypeID, bool) {
	for _, n := range []ast.NodeID{lhs, rhs} {
		if !w.isLiteralNode(n) {
			continue
		}
		c := w.c
		switch c.arena.Kind(n) {
		case ast.KindStringLit:
			return c.in.MakeLiteralString(c.arena.Text(n)), true
		case ast.KindNumberLit:
			return c.in.MakeLiteralNumber(c.arena.Number(n)), true
		case ast.KindTrueLit:
			return c.b().True, true
		case ast.KindFalseLit:
			return c.b().False, true
		case ast.KindNullLit:
			return c.b().Null, true
		case ast.KindBigIntLit:
			return c.in.MakeLiteralBigInt(c.arena.Text(n)), true
		case ast.KindIdent:
			return c.b().Undefined, true
		}
	}
	return types.NoTypeID, false
}

var typeofNarrowings = map[string]func(c *fileChecker, member types.TypeID) bool{
	"string": func(c *fileChecker, m types.TypeID) bool {
		return c.in.BaseOfLiteral(m) == c.b().String || c.in.KindOf(m) == types.KindTemplateLiteral
	},
	"number": func(c *fileChecker, m types.TypeID) bool {
		return c.in.BaseOfLiteral(m) == c.b().Number || c.in.KindOf(m) == types.KindEnum
	},
	"boolean": func(c *fileChecker, m types.TypeID) bool {
		return c.in.BaseOfLiteral(m) == c.b().Boolean
	},
	"bigint": func(c *fileChecker, m types.TypeID) bool {
		return c.in.BaseOfLiteral(m) == c.b().BigInt
	},
	"symbol": func(c *fileChecker, m types.TypeID) bool {
		return c.in.BaseOfLiteral(m) == c.b().Symbol
	},
	"undefined": func(c *fileChecker, m types.TypeID) bool {
		return m == c.b().Undefined || m == c.b().Void
	},
	"object": func(c *fileChecker, m types.TypeID) bool {
		if m == c.b().Null {
			return true
		}
		switch c.in.KindOf(m) {
		case types.KindArray, types.KindTuple:
			return true
		case types.KindObject:
			o, _ := c.in.Object(m)
			return len(o.Calls) == 0 && len(o.Constructs) == 0
		}
		return m == c.b().Object
	},
	"function": func(c *fileChecker, m types.TypeID) bool {
		if m == c.b().Function {
			return true
		}
		if o, ok := c.in.Object(m); ok {
			return len(o.Calls) > 0 || len(o.Constructs) > 0
		}
		return false
	},
}

func (w *flowWalker) narrowByTypeof(t types.TypeID, kind string, positive bool) types.TypeID {
	c := w.c
	pred, known := typeofNarrowings[kind]
	if !known {
		return t
	}
	ev := c.sub.Evaluator().Evaluate(t)
	if c.in.KindOf(ev) != types.KindUnion {
		if pred(c, ev) == positive {
			return ev
		}
		if positive {
			// A wider type narrows to the primitive the guard names.
			if prim := w.typeofPrimitive(kind); prim.IsValid() &&
				(ev == c.b().Unknown || ev == c.b().Any || c.in.KindOf(ev) == types.KindTypeParameter) {
				return prim
			}
			return c.b().Never
		}
		return ev
	}
	var kept []types.TypeID
	for _, m := range c.in.ListMembers(ev) {
		if pred(c, m) == positive {
			kept = append(kept, m)
		}
	}
	return c.in.MakeUnion(kept...)
}

func (w *flowWalker) typeofPrimitive(kind string) types.TypeID {
	b := w.c.b()
	switch kind {
	case "string":
		return b.String
	case "number":
		return b.Number
	case "boolean":
		return b.Boolean
	case "bigint":
		return b.BigInt
	case "symbol":
		return b.Symbol
	case "undefined":
		return b.Undefined
	case "function":
		return b.Function
	case "object":
		return w.c.in.MakeUnion(b.Object, b.Null)
	}
	return types.NoTypeID
}

// narrowByLiteral narrows on x === literal. Loose equality folds null and
// undefined together.
func (w *flowWalker) narrowByLiteral(t, lit types.TypeID, positive, loose bool) types.TypeID {
	c := w.c
	b := c.b()
	nullish := c.in.IsNullish(lit)
	ev := c.sub.Evaluator().Evaluate(t)

	drop := func(m types.TypeID) bool {
		if nullish && loose {
			return c.in.IsNullish(m)
		}
		return m == lit
	}
	keep := func(m types.TypeID) bool {
		if nullish && loose {
			return c.in.IsNullish(m)
		}
		return c.sub.Check(lit, m).IsTrue()
	}

	if c.in.KindOf(ev) != types.KindUnion {
		if positive {
			if keep(ev) {
				if c.in.IsUnit(lit) {
					return lit
				}
				return ev
			}
			return ev
		}
		if drop(ev) {
			return b.Never
		}
		return ev
	}
	var kept []types.TypeID
	for _, m := range c.in.ListMembers(ev) {
		if positive {
			if keep(m) {
				if c.in.IsUnit(lit) && c.in.IsUnit(m) {
					kept = append(kept, m)
				} else if c.in.IsUnit(lit) {
					kept = append(kept, lit)
				} else {
					kept = append(kept, m)
				}
			}
		} else if !drop(m) {
			kept = append(kept, m)
		}
	}
	if positive && len(kept) == 0 && c.in.IsUnit(lit) {
		return lit
	}
	return c.in.MakeUnion(kept...)
}

// narrowByDiscriminant filters union members by a property's literal type.
func (w *flowWalker) narrowByDiscriminant(t types.TypeID, prop source.Atom, lit types.TypeID, positive bool) types.TypeID {
	c := w.c
	ev := c.sub.Evaluator().Evaluate(t)
	if c.in.KindOf(ev) != types.KindUnion {
		return t
	}
	var kept []types.TypeID
	for _, m := range c.in.ListMembers(ev) {
		me := c.sub.Evaluator().Evaluate(m)
		p, ok := c.in.FindProp(me, prop)
		matches := ok && c.sub.Check(lit, p.Type).IsTrue()
		if matches == positive {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return t
	}
	return c.in.MakeUnion(kept...)
}

func (w *flowWalker) narrowByInstanceof(t types.TypeID, lhs, rhs ast.NodeID, positive bool) types.TypeID {
	c := w.c
	if !w.identIs(lhs) {
		return t
	}
	if c.arena.Kind(rhs) != ast.KindIdent {
		return t
	}
	classSym, ok := c.resolveName(rhs, c.arena.Atom(rhs))
	if !ok || c.bind.Symbols.Get(classSym).Flags&symbols.FlagClass == 0 {
		return t
	}
	instance := c.in.MakeLazy(c.defFor(classSym))
	return w.narrowTo(t, instance, positive)
}

// narrowByPredicateCall handles user-defined `x is T` guards in conditions.
func (w *flowWalker) narrowByPredicateCall(t types.TypeID, call ast.NodeID, positive bool) types.TypeID {
	c := w.c
	callee := c.arena.CallCallee(call)
	calleeType, ok := c.res.ExprTypes[callee]
	if !ok {
		return t
	}
	o, isObj := c.in.Object(c.sub.Evaluator().Evaluate(calleeType))
	if !isObj || len(o.Calls) == 0 {
		return t
	}
	pred := c.in.Signature(o.Calls[0]).Predicate
	if pred == nil || pred.Asserts || !pred.Type.IsValid() {
		return t
	}
	args := c.arena.ListItems(c.arena.CallArgs(call))
	if pred.ParamIndex < 0 || int(pred.ParamIndex) >= len(args) {
		return t
	}
	if !w.identIs(args[pred.ParamIndex]) {
		return t
	}
	return w.narrowTo(t, pred.Type, positive)
}

// narrowTo filters t down to (or away from) a target type.
func (w *flowWalker) narrowTo(t, target types.TypeID, positive bool) types.TypeID {
	c := w.c
	ev := c.sub.Evaluator().Evaluate(t)
	if c.in.KindOf(ev) == types.KindUnion {
		var kept []types.TypeID
		for _, m := range c.in.ListMembers(ev) {
			fits := c.sub.Check(m, target).IsTrue()
			if fits == positive {
				kept = append(kept, m)
			}
		}
		if len(kept) > 0 {
			return c.in.MakeUnion(kept...)
		}
	}
	if positive {
		if c.sub.Check(target, ev).IsTrue() || ev == c.b().Any || ev == c.b().Unknown {
			return target
		}
		return ev
	}
	if c.sub.Check(ev, target).IsTrue() {
		return c.b().Never
	}
	return ev
}

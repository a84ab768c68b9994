package transform

import "tyco/internal/ast"

// lowerAsync rewrites async function bodies into __awaiter calls:
//
//	function f() {
//	    return __awaiter(this, void 0, void 0, function* () { ...body... });
//	}
//
// The inner generator carries the original body with awaits rewritten to
// yields; a later generator pass (or a native-generator target) takes it
// from there.
func lowerAsync(ctx *Context) {
	a := ctx.Arena
	a.Walk(a.Root(), func(n ast.NodeID) bool {
		if !a.Kind(n).IsFunctionLike() || !a.Flags(n).Has(ast.FlagAsync) {
			return true
		}
		body := a.FnBody(n)
		if !body.IsValid() {
			return true
		}
		ctx.rewriteAwaitsToYields(body)

		inner := a.NewFunctionLike(ast.KindFunctionExpr, ctx.span(),
			ast.NoNodeID, ast.NoNodeID, a.NewList(ctx.span()), ast.NoNodeID, body)
		a.SetFlags(inner, ast.FlagGenerator)

		call := ctx.call(ctx.helperName("__awaiter"),
			a.New(ast.KindThisExpr, ctx.span()), ctx.voidZero(), ctx.voidZero(), inner)
		newBody := a.New(ast.KindBlock, ctx.span(), a.New(ast.KindReturn, ctx.span(), call))

		children := append([]ast.NodeID(nil), a.Children(n)...)
		children[4] = newBody
		a.SetChildren(n, children)
		a.ClearFlags(n, ast.FlagAsync)
		return false
	})
}

func (ctx *Context) rewriteAwaitsToYields(node ast.NodeID) {
	a := ctx.Arena
	a.Walk(node, func(n ast.NodeID) bool {
		if a.Kind(n).IsFunctionLike() && n != node {
			// Nested functions keep their own await semantics.
			return false
		}
		children := a.Children(n)
		for i, c := range children {
			if c.IsValid() && a.Kind(c) == ast.KindAwait {
				y := a.New(ast.KindYield, ctx.span(), a.Child(c, 0))
				mutated := append([]ast.NodeID(nil), children...)
				mutated[i] = y
				a.SetChildren(n, mutated)
			}
		}
		return true
	})
}

// lowerGenerators rewrites generator functions into __generator state
// machines for pre-ES2015 targets. Suspension points are recognized at
// statement granularity: each yield becomes a numbered state with a
// labeled resume.
//
//	function g() {
//	    return __generator(this, function (_a) {
//	        switch (_a.label) {
//	            case 0: return [4, 1];
//	            case 1: _a.sent(); return [2];
//	        }
//	    });
//	}
func lowerGenerators(ctx *Context) {
	a := ctx.Arena
	a.Walk(a.Root(), func(n ast.NodeID) bool {
		if !a.Kind(n).IsFunctionLike() || !a.Flags(n).Has(ast.FlagGenerator) {
			return true
		}
		body := a.FnBody(n)
		if !body.IsValid() {
			return true
		}
		machine := ctx.buildStateMachine(body)

		stateParam := a.NewParameter(ctx.span(), ctx.ident("_a"), ast.NoNodeID, ast.NoNodeID)
		inner := a.NewFunctionLike(ast.KindFunctionExpr, ctx.span(),
			ast.NoNodeID, ast.NoNodeID, a.NewList(ctx.span(), stateParam), ast.NoNodeID, machine)

		call := ctx.call(ctx.helperName("__generator"), a.New(ast.KindThisExpr, ctx.span()), inner)
		newBody := a.New(ast.KindBlock, ctx.span(), a.New(ast.KindReturn, ctx.span(), call))

		children := append([]ast.NodeID(nil), a.Children(n)...)
		children[4] = newBody
		a.SetChildren(n, children)
		a.ClearFlags(n, ast.FlagGenerator)
		return false
	})
}

// Generator opcodes in the __generator protocol.
const (
	genOpReturn   = 2
	genOpYield    = 4
	genOpDelegate = 5 // yield*: the helper iterates the operand
)

// buildStateMachine splits the body into numbered cases at top-level yield
// statements. Yields nested deeper than statement position keep their
// surrounding statement inside the state that reaches them.
func (ctx *Context) buildStateMachine(body ast.NodeID) ast.NodeID {
	a := ctx.Arena
	stmts := a.Children(body)

	type state struct {
		stmts []ast.NodeID
	}
	states := []state{{}}

	appendStmt := func(s ast.NodeID) {
		states[len(states)-1].stmts = append(states[len(states)-1].stmts, s)
	}
	for _, s := range stmts {
		if y, operand, ok := ctx.statementYield(s); ok {
			// return [4, operand];  return [5, operand] for yield*.
			op := genOpYield
			if a.Flags(y).Has(ast.FlagYieldDelegate) {
				op = genOpDelegate
			}
			next := len(states)
			ret := a.New(ast.KindReturn, ctx.span(),
				ctx.arrayLit([]ast.NodeID{ctx.num(float64(op)), operand}))
			appendStmt(ret)
			states = append(states, state{})
			// The resume state consumes the sent value.
			resume := ctx.exprStmt(ctx.call(ctx.prop(ctx.ident("_a"), "sent")))
			states[next].stmts = append(states[next].stmts, resume)
			continue
		}
		if a.Kind(s) == ast.KindReturn {
			e := a.Child(s, 0)
			items := []ast.NodeID{ctx.num(genOpReturn)}
			if e.IsValid() {
				items = append(items, e)
			}
			appendStmt(a.New(ast.KindReturn, ctx.span(), ctx.arrayLit(items)))
			continue
		}
		appendStmt(s)
	}
	// Terminal state returns [2].
	last := &states[len(states)-1]
	needsReturn := true
	if n := len(last.stmts); n > 0 && a.Kind(last.stmts[n-1]) == ast.KindReturn {
		needsReturn = false
	}
	if needsReturn {
		last.stmts = append(last.stmts, a.New(ast.KindReturn, ctx.span(),
			ctx.arrayLit([]ast.NodeID{ctx.num(genOpReturn)})))
	}

	if len(states) == 1 {
		return a.New(ast.KindBlock, ctx.span(), states[0].stmts...)
	}
	// switch (_a.label) { case N: ... }
	var clauses []ast.NodeID
	for i, st := range states {
		caseChildren := append([]ast.NodeID{ctx.num(float64(i))}, st.stmts...)
		clauses = append(clauses, a.New(ast.KindCaseClause, ctx.span(), caseChildren...))
	}
	swChildren := append([]ast.NodeID{ctx.prop(ctx.ident("_a"), "label")}, clauses...)
	sw := a.New(ast.KindSwitch, ctx.span(), swChildren...)
	return a.New(ast.KindBlock, ctx.span(), sw)
}

// statementYield recognizes a statement whose expression is a bare yield.
func (ctx *Context) statementYield(s ast.NodeID) (ast.NodeID, ast.NodeID, bool) {
	a := ctx.Arena
	if a.Kind(s) != ast.KindExpressionStmt {
		return ast.NoNodeID, ast.NoNodeID, false
	}
	e := a.Child(s, 0)
	if a.Kind(e) != ast.KindYield {
		return ast.NoNodeID, ast.NoNodeID, false
	}
	operand := a.Child(e, 0)
	if !operand.IsValid() {
		operand = ctx.voidZero()
	}
	return e, operand, true
}

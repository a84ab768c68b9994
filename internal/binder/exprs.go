package binder

import (
	"tyco/internal/ast"
	"tyco/internal/flow"
)

// arrayMutators are receiver methods whose calls invalidate tuple/element
// narrowings on the receiver.
var arrayMutators = map[string]bool{
	"push": true, "pop": true, "shift": true, "unshift": true,
	"splice": true, "sort": true, "reverse": true, "fill": true,
}

func (b *binder) bindExpr(node ast.NodeID) {
	if !node.IsValid() {
		return
	}
	switch b.arena.Kind(node) {
	case ast.KindIdent:
		b.res.Flow.RecordUse(node, b.currentFlow)
		b.res.UseScopes[node] = b.scope
	case ast.KindThisExpr, ast.KindSuperExpr:
		b.res.Flow.RecordUse(node, b.currentFlow)
		b.res.UseScopes[node] = b.scope
	case ast.KindBinary:
		b.bindBinary(node)
	case ast.KindPrefixUnary, ast.KindPostfixUnary:
		operand := b.arena.Child(node, 0)
		b.bindExpr(operand)
		op := b.arena.Op(node)
		if op == ast.OpPlusPlus || op == ast.OpMinusMinus {
			b.currentFlow = b.res.Flow.New(flow.KindAssignment, node, b.currentFlow)
		}
	case ast.KindCall:
		b.bindCall(node)
	case ast.KindNew, ast.KindTaggedTemplate:
		for _, c := range b.arena.Children(node) {
			b.bindExpr(c)
		}
	case ast.KindConditionalExpr:
		b.bindTernary(node)
	case ast.KindArrowFunction, ast.KindFunctionExpr:
		b.bindFunctionLike(node)
	case ast.KindClassExpr:
		b.bindClass(node)
	case ast.KindAwait:
		b.bindExpr(b.arena.Child(node, 0))
		b.res.Features.Async = true
		b.currentFlow = b.res.Flow.New(flow.KindAwaitPoint, node, b.currentFlow)
	case ast.KindYield:
		b.bindExpr(b.arena.Child(node, 0))
		b.res.Features.Generators = true
		b.currentFlow = b.res.Flow.New(flow.KindYieldPoint, node, b.currentFlow)
	case ast.KindPropertyAccess:
		b.bindExpr(b.arena.AccessObj(node))
		b.res.Flow.RecordUse(node, b.currentFlow)
	case ast.KindElementAccess:
		b.bindExpr(b.arena.AccessObj(node))
		b.bindExpr(b.arena.Child(node, 1))
		b.res.Flow.RecordUse(node, b.currentFlow)
	case ast.KindObjectLit:
		for _, p := range b.arena.Children(node) {
			switch b.arena.Kind(p) {
			case ast.KindPropertyAssignment:
				if name := b.arena.Child(p, 0); b.arena.Kind(name) == ast.KindComputedPropertyName {
					b.bindExpr(b.arena.Child(name, 0))
				}
				b.bindExpr(b.arena.Child(p, 1))
			case ast.KindShorthandProperty:
				b.bindExpr(b.arena.Child(p, 0))
			case ast.KindSpreadAssignment:
				b.bindExpr(b.arena.Child(p, 0))
			case ast.KindMethodDecl, ast.KindGetAccessor, ast.KindSetAccessor:
				b.bindFunctionLike(p)
			}
		}
	case ast.KindTemplateExpr:
		for _, span := range b.arena.Children(node)[1:] {
			b.bindExpr(b.arena.Child(span, 0))
		}
	case ast.KindList, ast.KindArrayLit:
		for _, c := range b.arena.Children(node) {
			b.bindExpr(c)
		}
	case ast.KindParen, ast.KindAsExpr, ast.KindSatisfiesExpr, ast.KindNonNullExpr,
		ast.KindTypeOfExpr, ast.KindVoidExpr, ast.KindDeleteExpr, ast.KindSpreadElement:
		b.bindExpr(b.arena.Child(node, 0))
	}
}

func (b *binder) bindBinary(node ast.NodeID) {
	op := b.arena.Op(node)
	lhs := b.arena.BinLHS(node)
	rhs := b.arena.BinRHS(node)
	switch {
	case op == ast.OpLogicalAnd:
		b.bindExpr(lhs)
		pre := b.currentFlow
		b.currentFlow = b.res.Flow.New(flow.KindTrueCondition, lhs, pre)
		b.bindExpr(rhs)
		merge := b.res.Flow.New(flow.KindBranchLabel, node)
		b.res.Flow.AddAntecedent(merge, b.res.Flow.New(flow.KindFalseCondition, lhs, pre))
		b.res.Flow.AddAntecedent(merge, b.currentFlow)
		b.currentFlow = merge
	case op == ast.OpLogicalOr || op == ast.OpNullish:
		b.bindExpr(lhs)
		pre := b.currentFlow
		b.currentFlow = b.res.Flow.New(flow.KindFalseCondition, lhs, pre)
		b.bindExpr(rhs)
		merge := b.res.Flow.New(flow.KindBranchLabel, node)
		b.res.Flow.AddAntecedent(merge, b.res.Flow.New(flow.KindTrueCondition, lhs, pre))
		b.res.Flow.AddAntecedent(merge, b.currentFlow)
		b.currentFlow = merge
	case op.IsAssignment():
		b.bindExpr(lhs)
		b.bindExpr(rhs)
		b.bindAssignmentTarget(lhs)
		b.currentFlow = b.res.Flow.New(flow.KindAssignment, node, b.currentFlow)
	default:
		b.bindExpr(lhs)
		b.bindExpr(rhs)
	}
}

// bindAssignmentTarget records destructuring-assignment leaves as writes.
func (b *binder) bindAssignmentTarget(node ast.NodeID) {
	switch b.arena.Kind(node) {
	case ast.KindArrayLit, ast.KindObjectLit:
		b.res.Features.Destructuring = true
	}
}

func (b *binder) bindCall(node ast.NodeID) {
	callee := b.arena.CallCallee(node)
	b.bindExpr(callee)
	b.bindExpr(b.arena.CallArgs(node))

	kind := flow.KindCall
	if b.arena.Kind(callee) == ast.KindPropertyAccess {
		if name := b.arena.Text(b.arena.AccessName(callee)); arrayMutators[name] {
			kind = flow.KindArrayMutation
		}
	}
	b.currentFlow = b.res.Flow.New(kind, node, b.currentFlow)
}

func (b *binder) bindTernary(node ast.NodeID) {
	cond := b.arena.Child(node, 0)
	b.bindExpr(cond)
	pre := b.currentFlow

	b.currentFlow = b.res.Flow.New(flow.KindTrueCondition, cond, pre)
	b.bindExpr(b.arena.Child(node, 1))
	afterTrue := b.currentFlow

	b.currentFlow = b.res.Flow.New(flow.KindFalseCondition, cond, pre)
	b.bindExpr(b.arena.Child(node, 2))
	afterFalse := b.currentFlow

	merge := b.res.Flow.New(flow.KindBranchLabel, node)
	b.res.Flow.AddAntecedent(merge, afterTrue)
	b.res.Flow.AddAntecedent(merge, afterFalse)
	b.currentFlow = b.labelOrUnreachable(merge)
}

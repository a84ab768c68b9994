package transform

import "tyco/internal/ast"

// lowerClassFields moves instance field initializers into constructor
// assignments, for targets that predate native class fields. Fields without
// an initializer are dropped; static fields with an initializer and static
// blocks stay in the class body unchanged.
func lowerClassFields(ctx *Context) {
	a := ctx.Arena
	a.Walk(a.Root(), func(n ast.NodeID) bool {
		if a.Kind(n).IsClassLike() {
			ctx.lowerClassFieldsOf(n)
		}
		return true
	})
}

func (ctx *Context) lowerClassFieldsOf(class ast.NodeID) {
	a := ctx.Arena
	membersList := a.ClassMembers(class)
	members := a.ListItems(membersList)

	var fieldInits []ast.NodeID
	var kept []ast.NodeID
	var ctor ast.NodeID
	for _, m := range members {
		switch a.Kind(m) {
		case ast.KindPropertyDecl:
			init := a.DeclInit(m)
			static := a.Flags(m).Has(ast.FlagStatic)
			if !init.IsValid() || static {
				if static && init.IsValid() {
					kept = append(kept, m)
					continue
				}
				// Bare declarations erase below ES2022.
				continue
			}
			target := a.New(ast.KindPropertyAccess, ctx.span(),
				a.New(ast.KindThisExpr, ctx.span()),
				ctx.ident(a.Text(a.DeclName(m))))
			fieldInits = append(fieldInits, ctx.exprStmt(ctx.assign(target, init)))
		case ast.KindConstructorDecl:
			ctor = m
			kept = append(kept, m)
		default:
			kept = append(kept, m)
		}
	}
	if len(fieldInits) == 0 {
		a.SetChildren(membersList, kept)
		return
	}

	if !ctor.IsValid() {
		body := a.New(ast.KindBlock, ctx.span(), fieldInits...)
		ctor = a.NewFunctionLike(ast.KindConstructorDecl, ctx.span(),
			ast.NoNodeID, ast.NoNodeID, a.NewList(ctx.span()), ast.NoNodeID, body)
		kept = append([]ast.NodeID{ctor}, kept...)
	} else {
		body := a.FnBody(ctor)
		stmts := a.Children(body)
		// Field initializers run after a leading super() call, before
		// everything else.
		insertAt := 0
		if len(stmts) > 0 && ctx.isSuperCall(stmts[0]) {
			insertAt = 1
		}
		merged := make([]ast.NodeID, 0, len(stmts)+len(fieldInits))
		merged = append(merged, stmts[:insertAt]...)
		merged = append(merged, fieldInits...)
		merged = append(merged, stmts[insertAt:]...)
		a.SetChildren(body, merged)
	}
	a.SetChildren(membersList, kept)
}

func (ctx *Context) isSuperCall(stmt ast.NodeID) bool {
	a := ctx.Arena
	if a.Kind(stmt) != ast.KindExpressionStmt {
		return false
	}
	call := a.Child(stmt, 0)
	return a.Kind(call) == ast.KindCall && a.Kind(a.CallCallee(call)) == ast.KindSuperExpr
}

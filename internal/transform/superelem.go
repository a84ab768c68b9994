package transform

import "tyco/internal/ast"

// lowerSuperElement routes element access on `super` through the prototype
// chain for targets without native super semantics:
//
//	super[k](x)  →  Object.getPrototypeOf(C.prototype)[k].call(this, x)
//	super[k]     →  Object.getPrototypeOf(C.prototype)[k]
func lowerSuperElement(ctx *Context) {
	a := ctx.Arena
	a.Walk(a.Root(), func(n ast.NodeID) bool {
		if a.Kind(n).IsClassLike() {
			name := a.Text(a.ClassName(n))
			if name != "" {
				ctx.rewriteSuperIn(n, name)
			}
			return false
		}
		return true
	})
}

func (ctx *Context) rewriteSuperIn(class ast.NodeID, className string) {
	a := ctx.Arena
	protoBase := func() ast.NodeID {
		return ctx.call(ctx.prop(ctx.ident("Object"), "getPrototypeOf"),
			ctx.prop(ctx.ident(className), "prototype"))
	}
	a.Walk(class, func(n ast.NodeID) bool {
		children := a.Children(n)
		for i, c := range children {
			if !c.IsValid() {
				continue
			}
			// super[k](args...) gains an explicit receiver.
			if a.Kind(c) == ast.KindCall {
				callee := a.CallCallee(c)
				if a.Kind(callee) == ast.KindElementAccess && a.Kind(a.AccessObj(callee)) == ast.KindSuperExpr {
					access := a.New(ast.KindElementAccess, ctx.span(), protoBase(), a.Child(callee, 1))
					args := append([]ast.NodeID{a.New(ast.KindThisExpr, ctx.span())},
						a.ListItems(a.CallArgs(c))...)
					replaced := ctx.call(ctx.prop(access, "call"), args...)
					mutated := append([]ast.NodeID(nil), children...)
					mutated[i] = replaced
					a.SetChildren(n, mutated)
					continue
				}
			}
			if a.Kind(c) == ast.KindElementAccess && a.Kind(a.AccessObj(c)) == ast.KindSuperExpr {
				replaced := a.New(ast.KindElementAccess, ctx.span(), protoBase(), a.Child(c, 1))
				mutated := append([]ast.NodeID(nil), children...)
				mutated[i] = replaced
				a.SetChildren(n, mutated)
			}
		}
		return true
	})
}

package transform

import "tyco/internal/ast"

// lowerDecorators rewrites decorated classes into the experimental
// decorator shape: the class stays, followed by
//
//	C = __decorate([dec1, dec2], C);
//
// member decorators route through __decorate with the prototype and the
// member name; parameter decorators wrap in __param(index, dec). When
// metadata emission is on, __metadata("design:type", ...) joins the list.
func lowerDecorators(ctx *Context) {
	a := ctx.Arena
	root := a.Root()
	var out []ast.NodeID
	for _, stmt := range a.Children(root) {
		out = append(out, stmt)
		if a.Kind(stmt) != ast.KindClassDecl {
			continue
		}
		out = append(out, ctx.decorateClass(stmt)...)
	}
	a.SetChildren(root, out)
}

func (ctx *Context) decorateClass(class ast.NodeID) []ast.NodeID {
	a := ctx.Arena
	className := a.Text(a.ClassName(class))
	var out []ast.NodeID

	// Member decorators first, in declaration order.
	for _, m := range a.ListItems(a.ClassMembers(class)) {
		decs := a.Decorators(m)
		paramDecs := ctx.paramDecorators(m)
		if len(decs) == 0 && len(paramDecs) == 0 {
			continue
		}
		var list []ast.NodeID
		for _, d := range decs {
			list = append(list, a.Child(d, 0))
		}
		list = append(list, paramDecs...)
		if ctx.Opts.EmitDecoratorMetadata {
			list = append(list, ctx.call(ctx.helperName("__metadata"),
				ctx.str("design:type"), ctx.ident("Function")))
		}

		target := ctx.prop(ctx.ident(className), "prototype")
		if a.Flags(m).Has(ast.FlagStatic) {
			target = ctx.ident(className)
		}
		name := a.Text(a.Child(m, 0))
		out = append(out, ctx.exprStmt(ctx.call(ctx.helperName("__decorate"),
			ctx.arrayLit(list), target, ctx.str(name), ctx.descriptorArg(m))))
	}

	// Class decorators wrap last so they observe decorated members.
	if decs := a.Decorators(class); len(decs) > 0 {
		var list []ast.NodeID
		for _, d := range decs {
			list = append(list, a.Child(d, 0))
		}
		if ctor := ctx.ctorParamDecorators(class); len(ctor) > 0 {
			list = append(list, ctor...)
		}
		if ctx.Opts.EmitDecoratorMetadata {
			list = append(list, ctx.call(ctx.helperName("__metadata"),
				ctx.str("design:paramtypes"), ctx.arrayLit(nil)))
		}
		out = append(out, ctx.exprStmt(ctx.assign(ctx.ident(className),
			ctx.call(ctx.helperName("__decorate"), ctx.arrayLit(list), ctx.ident(className)))))
	}
	return out
}

// paramDecorators collects __param(i, dec) wrappers for a method's
// decorated parameters.
func (ctx *Context) paramDecorators(m ast.NodeID) []ast.NodeID {
	a := ctx.Arena
	if !a.Kind(m).IsFunctionLike() {
		return nil
	}
	var out []ast.NodeID
	for i, p := range a.ListItems(a.FnParams(m)) {
		for _, d := range a.Decorators(p) {
			out = append(out, ctx.call(ctx.helperName("__param"),
				ctx.num(float64(i)), a.Child(d, 0)))
		}
	}
	return out
}

func (ctx *Context) ctorParamDecorators(class ast.NodeID) []ast.NodeID {
	a := ctx.Arena
	for _, m := range a.ListItems(a.ClassMembers(class)) {
		if a.Kind(m) == ast.KindConstructorDecl {
			return ctx.paramDecorators(m)
		}
	}
	return nil
}

// descriptorArg supplies the fourth __decorate argument: null for methods
// (the descriptor is looked up), void 0 for properties.
func (ctx *Context) descriptorArg(m ast.NodeID) ast.NodeID {
	if ctx.Arena.Kind(m) == ast.KindPropertyDecl {
		return ctx.voidZero()
	}
	return ctx.Arena.New(ast.KindNullLit, ctx.span())
}

func (ctx *Context) arrayLit(items []ast.NodeID) ast.NodeID {
	return ctx.Arena.New(ast.KindArrayLit, ctx.span(), items...)
}

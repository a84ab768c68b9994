package transform

import "tyco/internal/ast"

// lowerEnumsAndNamespaces rewrites enum and instantiated namespace
// declarations into their classic runtime form:
//
//	var E;
//	(function (E) {
//	    E[E["A"] = 0] = "A";
//	})(E || (E = {}));
//
// Type-only namespaces (no value declarations) erase entirely.
func lowerEnumsAndNamespaces(ctx *Context) {
	a := ctx.Arena
	root := a.Root()
	var out []ast.NodeID
	for _, stmt := range a.Children(root) {
		switch a.Kind(stmt) {
		case ast.KindEnumDecl:
			out = append(out, ctx.lowerEnum(stmt)...)
		case ast.KindModuleDecl:
			out = append(out, ctx.lowerNamespace(stmt)...)
		default:
			out = append(out, stmt)
		}
	}
	a.SetChildren(root, out)
}

func (ctx *Context) lowerEnum(stmt ast.NodeID) []ast.NodeID {
	a := ctx.Arena
	name := a.Text(a.Child(stmt, 0))
	exported := a.Flags(stmt).Has(ast.FlagExport)

	var body []ast.NodeID
	next := 0.0
	autoOK := true
	for _, m := range a.ListItems(a.Child(stmt, 1)) {
		memberName := a.Text(a.Child(m, 0))
		init := a.Child(m, 1)
		var valueExpr ast.NodeID
		stringValued := false
		switch {
		case init.IsValid() && a.Kind(init) == ast.KindStringLit:
			valueExpr = init
			stringValued = true
			autoOK = false
		case init.IsValid() && a.Kind(init) == ast.KindNumberLit:
			valueExpr = init
			next = a.Number(init) + 1
		case init.IsValid():
			valueExpr = init
			autoOK = false
		case autoOK:
			valueExpr = ctx.num(next)
			next++
		default:
			valueExpr = ctx.num(0)
		}

		// E["A"] = value
		keyAccess := a.New(ast.KindElementAccess, ctx.span(), ctx.ident(name), ctx.str(memberName))
		assignment := ctx.assign(keyAccess, valueExpr)
		if stringValued {
			body = append(body, ctx.exprStmt(assignment))
			continue
		}
		// Numeric members also build the reverse mapping:
		// E[E["A"] = 0] = "A"
		reverse := a.New(ast.KindElementAccess, ctx.span(), ctx.ident(name), assignment)
		body = append(body, ctx.exprStmt(ctx.assign(reverse, ctx.str(memberName))))
	}

	return ctx.iifeWrapper(name, body, exported, stmt)
}

func (ctx *Context) lowerNamespace(stmt ast.NodeID) []ast.NodeID {
	a := ctx.Arena
	body := a.ModuleBody(stmt)
	if a.Kind(body) != ast.KindModuleBlock {
		// Dotted namespaces flatten one level at a time.
		return ctx.lowerNamespace(body)
	}
	name := a.Text(a.ModuleName(stmt))
	exported := a.Flags(stmt).Has(ast.FlagExport)

	var stmts []ast.NodeID
	hasValues := false
	for _, s := range a.Children(body) {
		switch a.Kind(s) {
		case ast.KindInterfaceDecl, ast.KindTypeAliasDecl:
			continue
		case ast.KindEnumDecl:
			hasValues = true
			stmts = append(stmts, ctx.lowerEnum(s)...)
			continue
		}
		hasValues = true
		stmts = append(stmts, s)
		// Exported members attach to the namespace object.
		if a.Flags(s).Has(ast.FlagExport) {
			for _, n := range ctx.declaredNames(s) {
				stmts = append(stmts, ctx.exprStmt(
					ctx.assign(ctx.prop(ctx.ident(name), n), ctx.ident(n))))
			}
		}
	}
	if !hasValues {
		return nil
	}
	return ctx.iifeWrapper(name, stmts, exported, stmt)
}

// iifeWrapper builds `var N; (function (N) { ... })(N || (N = {}));`. When the
// declaration was exported, the var statement carries the export flag; no
// separate exports assignment is built here.
func (ctx *Context) iifeWrapper(name string, body []ast.NodeID, exported bool, origin ast.NodeID) []ast.NodeID {
	a := ctx.Arena
	decl := ctx.varDecl(name, ast.NoNodeID)
	if exported {
		a.SetFlags(decl, ast.FlagExport)
	}

	param := a.NewParameter(ctx.span(), ctx.ident(name), ast.NoNodeID, ast.NoNodeID)
	fnBody := a.New(ast.KindBlock, ctx.span(), body...)
	fn := a.NewFunctionLike(ast.KindFunctionExpr, ctx.span(),
		ast.NoNodeID, ast.NoNodeID, a.NewList(ctx.span(), param), ast.NoNodeID, fnBody)
	paren := a.New(ast.KindParen, ctx.span(), fn)

	// N || (N = {})
	emptyObj := a.New(ast.KindObjectLit, ctx.span())
	a.SetFlags(emptyObj, ast.FlagSingleLine)
	orInit := a.NewBinary(ctx.span(), ast.OpLogicalOr,
		ctx.ident(name),
		a.New(ast.KindParen, ctx.span(), ctx.assign(ctx.ident(name), emptyObj)))

	call := ctx.call(paren, orInit)
	return []ast.NodeID{decl, ctx.exprStmt(call)}
}

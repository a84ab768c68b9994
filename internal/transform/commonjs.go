package transform

import (
	"fmt"

	"tyco/internal/ast"
)

// lowerCommonJS converts ES module syntax to the CommonJS shape, statement
// for statement:
//
//	"use strict";
//	Object.defineProperty(exports, "__esModule", { value: true });
//	exports.b = exports.a = void 0;        // reverse declaration order
//	var mod_1 = require("mod");
//	const a = 1; exports.a = a;
//	Object.defineProperty(exports, "x", { enumerable: true, get: ... });
func lowerCommonJS(ctx *Context) {
	a := ctx.Arena
	root := a.Root()
	old := a.Children(root)

	var exportedNames []string
	hasModuleSyntax := false
	for _, stmt := range old {
		switch a.Kind(stmt) {
		case ast.KindImportDecl, ast.KindExportDecl:
			hasModuleSyntax = true
		case ast.KindExportAssignment:
			hasModuleSyntax = true
		default:
			if a.Flags(stmt).Has(ast.FlagExport) {
				hasModuleSyntax = true
				if !a.Flags(stmt).Has(ast.FlagDefault) {
					exportedNames = append(exportedNames, ctx.declaredNames(stmt)...)
				}
			}
		}
	}
	if !hasModuleSyntax {
		return
	}

	var out []ast.NodeID
	out = append(out, ctx.exprStmt(ctx.str("use strict")))
	out = append(out, ctx.exprStmt(ctx.definePropertyCall(
		ctx.ident("exports"), "__esModule", ctx.objectLit("value", a.NewBool(ctx.span(), true)))))

	// Pre-declare every exported name to void 0, chained in reverse
	// declaration order.
	if len(exportedNames) > 0 {
		expr := ctx.voidZero()
		for i := 0; i < len(exportedNames); i++ {
			expr = ctx.assign(ctx.prop(ctx.ident("exports"), exportedNames[i]), expr)
		}
		out = append(out, ctx.exprStmt(expr))
	}

	importCounter := 0
	for _, stmt := range old {
		switch a.Kind(stmt) {
		case ast.KindImportDecl:
			importCounter++
			out = append(out, ctx.lowerImport(stmt, importCounter)...)
		case ast.KindExportDecl:
			out = append(out, ctx.lowerExportDecl(stmt, &importCounter)...)
		case ast.KindExportAssignment:
			expr := a.Child(stmt, 0)
			if a.Flags(stmt).Has(ast.FlagExportEquals) {
				out = append(out, ctx.exprStmt(ctx.assign(ctx.prop(ctx.ident("module"), "exports"), expr)))
			} else {
				out = append(out, ctx.exprStmt(ctx.assign(ctx.prop(ctx.ident("exports"), "default"), expr)))
			}
		default:
			out = append(out, stmt)
			if a.Flags(stmt).Has(ast.FlagExport) && !a.Flags(stmt).Has(ast.FlagDefault) {
				for _, name := range ctx.declaredNames(stmt) {
					out = append(out, ctx.exprStmt(
						ctx.assign(ctx.prop(ctx.ident("exports"), name), ctx.ident(name))))
				}
			}
		}
	}
	a.SetChildren(root, out)
}

// lowerImport rewrites one import declaration into require calls with a
// deterministic local module variable.
func (ctx *Context) lowerImport(stmt ast.NodeID, counter int) []ast.NodeID {
	a := ctx.Arena
	clause := a.Child(stmt, 0)
	spec := a.Child(stmt, 1)
	moduleVar := fmt.Sprintf("%s_%d", sanitizeModuleName(a.Text(spec)), counter)

	requireCall := ctx.call(ctx.ident("require"), ctx.str(a.Text(spec)))
	var out []ast.NodeID
	out = append(out, ctx.varDecl(moduleVar, requireCall))

	if !clause.IsValid() {
		return out
	}
	if def := a.Child(clause, 0); def.IsValid() {
		// Default import: interop via .default access.
		out = append(out, ctx.varDecl(a.Text(def), ctx.prop(ctx.ident(moduleVar), "default")))
	}
	bindings := a.Child(clause, 1)
	switch a.Kind(bindings) {
	case ast.KindNamespaceImport:
		out = append(out, ctx.varDecl(a.Text(a.Child(bindings, 0)), ctx.ident(moduleVar)))
	case ast.KindNamedImports:
		for _, s := range a.Children(bindings) {
			local := a.Child(s, 1)
			remote := a.Child(s, 0)
			if !remote.IsValid() {
				remote = local
			}
			out = append(out, ctx.varDecl(a.Text(local), ctx.prop(ctx.ident(moduleVar), a.Text(remote))))
		}
	}
	return out
}

// lowerExportDecl handles `export { ... }` and re-exports from modules.
func (ctx *Context) lowerExportDecl(stmt ast.NodeID, importCounter *int) []ast.NodeID {
	a := ctx.Arena
	clause := a.Child(stmt, 0)
	spec := a.Child(stmt, 1)
	var out []ast.NodeID

	if spec.IsValid() {
		*importCounter++
		moduleVar := fmt.Sprintf("%s_%d", sanitizeModuleName(a.Text(spec)), *importCounter)
		out = append(out, ctx.varDecl(moduleVar, ctx.call(ctx.ident("require"), ctx.str(a.Text(spec)))))
		for _, s := range a.Children(clause) {
			exported := a.Child(s, 1)
			local := a.Child(s, 0)
			if !local.IsValid() {
				local = exported
			}
			getter := ctx.arrowReturning(ctx.prop(ctx.ident(moduleVar), a.Text(local)))
			out = append(out, ctx.exprStmt(ctx.definePropertyCall(
				ctx.ident("exports"), a.Text(exported),
				ctx.objectLit2("enumerable", a.NewBool(ctx.span(), true), "get", getter))))
		}
		return out
	}
	for _, s := range a.Children(clause) {
		exported := a.Child(s, 1)
		local := a.Child(s, 0)
		if !local.IsValid() {
			local = exported
		}
		out = append(out, ctx.exprStmt(
			ctx.assign(ctx.prop(ctx.ident("exports"), a.Text(exported)), ctx.ident(a.Text(local)))))
	}
	return out
}

func (ctx *Context) varDecl(name string, init ast.NodeID) ast.NodeID {
	decl := ctx.Arena.NewVarDeclaration(ctx.span(), ctx.ident(name), ast.NoNodeID, init)
	return ctx.Arena.NewVarStatement(ctx.span(), 0, decl)
}

// definePropertyCall builds Object.defineProperty(target, "name", descriptor).
func (ctx *Context) definePropertyCall(target ast.NodeID, name string, descriptor ast.NodeID) ast.NodeID {
	return ctx.call(ctx.prop(ctx.ident("Object"), "defineProperty"), target, ctx.str(name), descriptor)
}

func (ctx *Context) objectLit(key string, value ast.NodeID) ast.NodeID {
	prop := ctx.Arena.New(ast.KindPropertyAssignment, ctx.span(), ctx.ident(key), value)
	lit := ctx.Arena.New(ast.KindObjectLit, ctx.span(), prop)
	ctx.Arena.SetFlags(lit, ast.FlagSingleLine)
	return lit
}

func (ctx *Context) objectLit2(k1 string, v1 ast.NodeID, k2 string, v2 ast.NodeID) ast.NodeID {
	p1 := ctx.Arena.New(ast.KindPropertyAssignment, ctx.span(), ctx.ident(k1), v1)
	p2 := ctx.Arena.New(ast.KindPropertyAssignment, ctx.span(), ctx.ident(k2), v2)
	lit := ctx.Arena.New(ast.KindObjectLit, ctx.span(), p1, p2)
	ctx.Arena.SetFlags(lit, ast.FlagSingleLine)
	return lit
}

func (ctx *Context) arrowReturning(expr ast.NodeID) ast.NodeID {
	return ctx.Arena.NewFunctionLike(ast.KindArrowFunction, ctx.span(),
		ast.NoNodeID, ast.NoNodeID, ctx.Arena.NewList(ctx.span()), ast.NoNodeID, expr)
}

func sanitizeModuleName(spec string) string {
	out := make([]byte, 0, len(spec))
	for i := 0; i < len(spec); i++ {
		ch := spec[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '_':
			out = append(out, ch)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "mod"
	}
	return string(out)
}

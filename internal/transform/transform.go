// Package transform hosts the downleveling rewrites: AST-to-AST functions
// that preserve observable behavior for well-typed programs. Each transform
// reads the binder's feature flags and the compiler options to decide
// whether it applies.
package transform

import (
	"tyco/internal/ast"
	"tyco/internal/binder"
	"tyco/internal/project"
	"tyco/internal/source"
)

// Context carries the shared state of one file's transform pipeline.
type Context struct {
	Arena *ast.Arena
	Bind  *binder.Result
	Opts  project.Options
}

// Apply runs the applicable transforms in order. Later transforms see the
// output of earlier ones; the module-format conversion runs last so it
// observes the final top-level statements.
func Apply(ctx *Context) {
	if ctx.Opts.ExperimentalDecorators && ctx.Bind.Features.Decorators {
		lowerDecorators(ctx)
	}
	if ctx.Opts.Target < project.ES2022 && ctx.Bind.Features.ClassFields {
		lowerClassFields(ctx)
	}
	if ctx.Opts.Target < project.ES2017 && ctx.Bind.Features.Async {
		lowerAsync(ctx)
	}
	if ctx.Opts.Target < project.ES2015 && (ctx.Bind.Features.Generators || ctx.Bind.Features.Async) {
		lowerGenerators(ctx)
	}
	if ctx.Opts.Target < project.ES2015 && ctx.Bind.Features.Destructuring {
		lowerDestructuring(ctx)
	}
	if ctx.Opts.Target < project.ES2015 {
		lowerSuperElement(ctx)
	}
	lowerEnumsAndNamespaces(ctx)
	if ctx.Opts.Module == project.ModuleCommonJS {
		lowerCommonJS(ctx)
	}
}

// Node-building shorthands. Every synthesized node carries a zero span.

func (ctx *Context) span() source.Span { return source.Span{} }

func (ctx *Context) ident(name string) ast.NodeID {
	return ctx.Arena.NewIdent(ctx.span(), name)
}

func (ctx *Context) str(value string) ast.NodeID {
	return ctx.Arena.NewStringLit(ctx.span(), value)
}

func (ctx *Context) num(value float64) ast.NodeID {
	return ctx.Arena.NewNumberLit(ctx.span(), value)
}

func (ctx *Context) prop(obj ast.NodeID, name string) ast.NodeID {
	return ctx.Arena.NewPropertyAccess(ctx.span(), obj, name)
}

func (ctx *Context) call(callee ast.NodeID, args ...ast.NodeID) ast.NodeID {
	return ctx.Arena.NewCall(ctx.span(), callee, ast.NoNodeID, ctx.Arena.NewList(ctx.span(), args...))
}

func (ctx *Context) assign(lhs, rhs ast.NodeID) ast.NodeID {
	return ctx.Arena.NewBinary(ctx.span(), ast.OpAssign, lhs, rhs)
}

func (ctx *Context) exprStmt(e ast.NodeID) ast.NodeID {
	return ctx.Arena.New(ast.KindExpressionStmt, ctx.span(), e)
}

func (ctx *Context) voidZero() ast.NodeID {
	return ctx.Arena.New(ast.KindVoidExpr, ctx.span(), ctx.num(0))
}

// helperName returns the reference to a runtime helper (__decorate, ...).
// The helper implementations are external; only the calls are emitted.
func (ctx *Context) helperName(name string) ast.NodeID {
	return ctx.ident(name)
}

// declaredNames lists the binding names a statement introduces.
func (ctx *Context) declaredNames(stmt ast.NodeID) []string {
	a := ctx.Arena
	switch a.Kind(stmt) {
	case ast.KindVarStatement:
		var out []string
		for _, decl := range a.Children(stmt) {
			out = append(out, ctx.bindingNames(a.DeclName(decl))...)
		}
		return out
	case ast.KindFunctionDecl, ast.KindClassDecl, ast.KindEnumDecl, ast.KindModuleDecl:
		if name := a.Child(stmt, 0); name.IsValid() {
			return []string{a.Text(name)}
		}
	}
	return nil
}

func (ctx *Context) bindingNames(name ast.NodeID) []string {
	a := ctx.Arena
	switch a.Kind(name) {
	case ast.KindIdent:
		return []string{a.Text(name)}
	case ast.KindObjectBindingPattern, ast.KindArrayBindingPattern:
		var out []string
		for _, el := range a.Children(name) {
			if a.Kind(el) == ast.KindBindingElement {
				out = append(out, ctx.bindingNames(a.Child(el, 1))...)
			}
		}
		return out
	}
	return nil
}

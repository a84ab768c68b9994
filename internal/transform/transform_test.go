package transform

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"tyco/internal/ast"
	"tyco/internal/binder"
	"tyco/internal/printer"
	"tyco/internal/project"
	"tyco/internal/source"
)

func sp() source.Span { return source.Span{} }

func emit(t *testing.T, opts project.Options, build func(a *ast.Arena) []ast.NodeID) string {
	t.Helper()
	a := ast.NewArena(0, nil)
	stmts := build(a)
	a.NewSourceFile(sp(), stmts...)
	bind := binder.Bind(a)
	Apply(&Context{Arena: a, Bind: bind, Opts: opts})
	return printer.Print(a, printer.Options{})
}

// S6 — CommonJS emit shape for `export const bar = 42;`.
func TestCommonJSExportShape(t *testing.T) {
	opts := project.DefaultOptions()
	out := emit(t, opts, func(a *ast.Arena) []ast.NodeID {
		decl := a.NewVarDeclaration(sp(), a.NewIdent(sp(), "bar"), ast.NoNodeID, a.NewNumberLit(sp(), 42))
		vs := a.NewVarStatement(sp(), ast.FlagConst, decl)
		a.SetFlags(vs, ast.FlagExport)
		return []ast.NodeID{vs}
	})

	wantInOrder := []string{
		`"use strict";`,
		`Object.defineProperty(exports, "__esModule", { value: true });`,
		`exports.bar = void 0;`,
		`const bar = 42;`,
		`exports.bar = bar;`,
	}
	at := 0
	for _, want := range wantInOrder {
		idx := strings.Index(out[at:], want)
		if idx < 0 {
			t.Fatalf("emit missing or out of order: %q\nfull output:\n%s", want, out)
		}
		at += idx + len(want)
	}
	snaps.MatchSnapshot(t, out)
}

func TestCommonJSMultipleExportsReverseOrder(t *testing.T) {
	opts := project.DefaultOptions()
	out := emit(t, opts, func(a *ast.Arena) []ast.NodeID {
		mk := func(name string, v float64) ast.NodeID {
			decl := a.NewVarDeclaration(sp(), a.NewIdent(sp(), name), ast.NoNodeID, a.NewNumberLit(sp(), v))
			vs := a.NewVarStatement(sp(), ast.FlagConst, decl)
			a.SetFlags(vs, ast.FlagExport)
			return vs
		}
		return []ast.NodeID{mk("a", 1), mk("b", 2)}
	})
	if !strings.Contains(out, "exports.b = exports.a = void 0;") {
		t.Fatalf("pre-declaration must chain in reverse declaration order:\n%s", out)
	}
}

func TestCommonJSReExport(t *testing.T) {
	opts := project.DefaultOptions()
	out := emit(t, opts, func(a *ast.Arena) []ast.NodeID {
		spec := a.New(ast.KindExportSpecifier, sp(), ast.NoNodeID, a.NewIdent(sp(), "thing"))
		named := a.New(ast.KindNamedExports, sp(), spec)
		return []ast.NodeID{a.New(ast.KindExportDecl, sp(), named, a.NewStringLit(sp(), "./dep"))}
	})
	if !strings.Contains(out, `Object.defineProperty(exports, "thing", { enumerable: true, get: () =>`) {
		t.Fatalf("re-export must use the defineProperty getter shape:\n%s", out)
	}
	snaps.MatchSnapshot(t, out)
}

func TestEnumLowering(t *testing.T) {
	opts := project.DefaultOptions()
	opts.Module = project.ModuleNone
	out := emit(t, opts, func(a *ast.Arena) []ast.NodeID {
		members := a.NewList(sp(),
			a.New(ast.KindEnumMember, sp(), a.NewIdent(sp(), "Red"), ast.NoNodeID),
			a.New(ast.KindEnumMember, sp(), a.NewIdent(sp(), "Blue"), ast.NoNodeID))
		return []ast.NodeID{a.New(ast.KindEnumDecl, sp(), a.NewIdent(sp(), "Color"), members)}
	})
	for _, want := range []string{
		"var Color;",
		`Color[Color["Red"] = 0] = "Red";`,
		`Color[Color["Blue"] = 1] = "Blue";`,
		"(Color || (Color = {}))",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("enum lowering missing %q:\n%s", want, out)
		}
	}
	snaps.MatchSnapshot(t, out)
}

func TestClassFieldLowering(t *testing.T) {
	opts := project.DefaultOptions()
	opts.Module = project.ModuleNone
	opts.Target = project.ES2015
	out := emit(t, opts, func(a *ast.Arena) []ast.NodeID {
		field := a.New(ast.KindPropertyDecl, sp(),
			a.NewIdent(sp(), "count"), ast.NoNodeID, a.NewNumberLit(sp(), 0))
		members := a.NewList(sp(), field)
		return []ast.NodeID{a.New(ast.KindClassDecl, sp(),
			a.NewIdent(sp(), "Counter"), ast.NoNodeID, ast.NoNodeID, members)}
	})
	if !strings.Contains(out, "this.count = 0;") || !strings.Contains(out, "constructor()") {
		t.Fatalf("field initializer should move into the constructor:\n%s", out)
	}
}

func TestAsyncLowering(t *testing.T) {
	opts := project.DefaultOptions()
	opts.Module = project.ModuleNone
	opts.Target = project.ES2015
	out := emit(t, opts, func(a *ast.Arena) []ast.NodeID {
		await := a.New(ast.KindAwait, sp(), a.NewIdent(sp(), "p"))
		body := a.New(ast.KindBlock, sp(), a.New(ast.KindReturn, sp(), await))
		fn := a.NewFunctionLike(ast.KindFunctionDecl, sp(),
			a.NewIdent(sp(), "f"), ast.NoNodeID, a.NewList(sp()), ast.NoNodeID, body)
		a.SetFlags(fn, ast.FlagAsync)
		return []ast.NodeID{fn}
	})
	if !strings.Contains(out, "__awaiter(this, void 0, void 0, function* ()") &&
		!strings.Contains(out, "__awaiter(this, void 0, void 0, function*()") {
		t.Fatalf("async lowering should produce an __awaiter wrapper:\n%s", out)
	}
	if !strings.Contains(out, "yield p") {
		t.Fatalf("awaits should rewrite to yields inside the wrapper:\n%s", out)
	}
}

func TestGeneratorLowering(t *testing.T) {
	opts := project.DefaultOptions()
	opts.Module = project.ModuleNone
	opts.Target = project.ES5
	out := emit(t, opts, func(a *ast.Arena) []ast.NodeID {
		y := a.New(ast.KindYield, sp(), a.NewNumberLit(sp(), 1))
		body := a.New(ast.KindBlock, sp(), a.New(ast.KindExpressionStmt, sp(), y))
		fn := a.NewFunctionLike(ast.KindFunctionDecl, sp(),
			a.NewIdent(sp(), "g"), ast.NoNodeID, a.NewList(sp()), ast.NoNodeID, body)
		a.SetFlags(fn, ast.FlagGenerator)
		return []ast.NodeID{fn}
	})
	for _, want := range []string{"__generator(this, function (_a)", "switch (_a.label)", "return [4, 1];", "_a.sent();", "return [2];"} {
		if !strings.Contains(out, want) {
			t.Fatalf("generator state machine missing %q:\n%s", want, out)
		}
	}
	snaps.MatchSnapshot(t, out)
}

func TestGeneratorDelegateLowering(t *testing.T) {
	opts := project.DefaultOptions()
	opts.Module = project.ModuleNone
	opts.Target = project.ES5
	out := emit(t, opts, func(a *ast.Arena) []ast.NodeID {
		// function* g() { yield* inner(); yield 1; }
		delegated := a.New(ast.KindYield, sp(),
			a.NewCall(sp(), a.NewIdent(sp(), "inner"), ast.NoNodeID, a.NewList(sp())))
		a.SetFlags(delegated, ast.FlagYieldDelegate)
		plain := a.New(ast.KindYield, sp(), a.NewNumberLit(sp(), 1))
		body := a.New(ast.KindBlock, sp(),
			a.New(ast.KindExpressionStmt, sp(), delegated),
			a.New(ast.KindExpressionStmt, sp(), plain))
		fn := a.NewFunctionLike(ast.KindFunctionDecl, sp(),
			a.NewIdent(sp(), "g"), ast.NoNodeID, a.NewList(sp()), ast.NoNodeID, body)
		a.SetFlags(fn, ast.FlagGenerator)
		return []ast.NodeID{fn}
	})
	if !strings.Contains(out, "return [5, inner()];") {
		t.Fatalf("yield* must emit the delegate opcode:\n%s", out)
	}
	if !strings.Contains(out, "return [4, 1];") {
		t.Fatalf("plain yield must keep the yield opcode:\n%s", out)
	}
}

func TestDestructuringLowering(t *testing.T) {
	opts := project.DefaultOptions()
	opts.Module = project.ModuleNone
	opts.Target = project.ES5
	out := emit(t, opts, func(a *ast.Arena) []ast.NodeID {
		// var { x, y = 1 } = src;
		elX := a.New(ast.KindBindingElement, sp(), ast.NoNodeID, a.NewIdent(sp(), "x"), ast.NoNodeID)
		elY := a.New(ast.KindBindingElement, sp(), ast.NoNodeID, a.NewIdent(sp(), "y"), a.NewNumberLit(sp(), 1))
		pattern := a.New(ast.KindObjectBindingPattern, sp(), elX, elY)
		decl := a.NewVarDeclaration(sp(), pattern, ast.NoNodeID, a.NewIdent(sp(), "src"))
		return []ast.NodeID{a.NewVarStatement(sp(), 0, decl)}
	})
	for _, want := range []string{"_a = src", "x = _a.x", "_b = _a.y", "y = _b === void 0 ? 1 : _b"} {
		if !strings.Contains(out, want) {
			t.Fatalf("destructuring lowering missing %q:\n%s", want, out)
		}
	}
}

func TestObjectRestLowering(t *testing.T) {
	opts := project.DefaultOptions()
	opts.Module = project.ModuleNone
	opts.Target = project.ES5
	out := emit(t, opts, func(a *ast.Arena) []ast.NodeID {
		// var { a, b, ...rest } = src;
		elA := a.New(ast.KindBindingElement, sp(), ast.NoNodeID, a.NewIdent(sp(), "a"), ast.NoNodeID)
		elB := a.New(ast.KindBindingElement, sp(), ast.NoNodeID, a.NewIdent(sp(), "b"), ast.NoNodeID)
		elRest := a.New(ast.KindBindingElement, sp(), ast.NoNodeID, a.NewIdent(sp(), "rest"), ast.NoNodeID)
		a.SetFlags(elRest, ast.FlagRest)
		pattern := a.New(ast.KindObjectBindingPattern, sp(), elA, elB, elRest)
		decl := a.NewVarDeclaration(sp(), pattern, ast.NoNodeID, a.NewIdent(sp(), "src"))
		return []ast.NodeID{a.NewVarStatement(sp(), 0, decl)}
	})
	if !strings.Contains(out, `rest = __rest(_a, ["a", "b"])`) {
		t.Fatalf("object rest must copy unbound properties through __rest:\n%s", out)
	}
	if strings.Contains(out, "_a.rest") {
		t.Fatalf("object rest must not read a literal 'rest' property:\n%s", out)
	}
}

func TestDecoratorLowering(t *testing.T) {
	opts := project.DefaultOptions()
	opts.Module = project.ModuleNone
	opts.ExperimentalDecorators = true
	out := emit(t, opts, func(a *ast.Arena) []ast.NodeID {
		class := a.New(ast.KindClassDecl, sp(),
			a.NewIdent(sp(), "Widget"), ast.NoNodeID, ast.NoNodeID, a.NewList(sp()))
		dec := a.New(ast.KindDecorator, sp(), a.NewIdent(sp(), "sealed"))
		a.SetDecorators(class, []ast.NodeID{dec})
		return []ast.NodeID{class}
	})
	if !strings.Contains(out, "Widget = __decorate([sealed], Widget);") {
		t.Fatalf("class decorator should emit a __decorate call:\n%s", out)
	}
}

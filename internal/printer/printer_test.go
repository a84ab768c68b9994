package printer

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"tyco/internal/ast"
	"tyco/internal/source"
)

func sp() source.Span { return source.Span{} }

func TestPrintStatements(t *testing.T) {
	a := ast.NewArena(0, nil)
	decl := a.NewVarDeclaration(sp(), a.NewIdent(sp(), "x"), ast.NoNodeID, a.NewNumberLit(sp(), 1))
	vs := a.NewVarStatement(sp(), ast.FlagConst, decl)
	cond := a.NewBinary(sp(), ast.OpGreater, a.NewIdent(sp(), "x"), a.NewNumberLit(sp(), 0))
	thenBlock := a.New(ast.KindBlock, sp(),
		a.New(ast.KindReturn, sp(), a.NewIdent(sp(), "x")))
	ifStmt := a.New(ast.KindIf, sp(), cond, thenBlock, ast.NoNodeID)
	body := a.New(ast.KindBlock, sp(), vs, ifStmt, a.New(ast.KindReturn, sp(), a.NewNumberLit(sp(), 0)))
	fn := a.NewFunctionLike(ast.KindFunctionDecl, sp(),
		a.NewIdent(sp(), "f"), ast.NoNodeID, a.NewList(sp()), ast.NoNodeID, body)
	a.NewSourceFile(sp(), fn)

	out := Print(a, Options{})
	for _, want := range []string{"function f() {", "const x = 1;", "if (x > 0) {", "return x;", "return 0;"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	snaps.MatchSnapshot(t, out)
}

func TestTypeAnnotationsErase(t *testing.T) {
	a := ast.NewArena(0, nil)
	numType := a.NewKeywordType(sp(), ast.OpNumberKeyword)
	decl := a.NewVarDeclaration(sp(), a.NewIdent(sp(), "n"), numType, a.NewNumberLit(sp(), 1))
	vs := a.NewVarStatement(sp(), ast.FlagLet, decl)
	asExpr := a.New(ast.KindAsExpr, sp(), a.NewIdent(sp(), "n"), a.NewKeywordType(sp(), ast.OpAnyKeyword))
	iface := a.New(ast.KindInterfaceDecl, sp(),
		a.NewIdent(sp(), "I"), ast.NoNodeID, ast.NoNodeID, a.NewList(sp()))
	a.NewSourceFile(sp(), vs, a.New(ast.KindExpressionStmt, sp(), asExpr), iface)

	out := Print(a, Options{})
	if strings.Contains(out, "number") || strings.Contains(out, "interface") || strings.Contains(out, " as ") {
		t.Fatalf("type syntax must erase:\n%s", out)
	}
	if !strings.Contains(out, "let n = 1;") || !strings.Contains(out, "n;") {
		t.Fatalf("value side must survive erasure:\n%s", out)
	}
}

func TestObjectLiteralLayoutPreserved(t *testing.T) {
	a := ast.NewArena(0, nil)
	mkLit := func(flags ast.Flags) ast.NodeID {
		p1 := a.New(ast.KindPropertyAssignment, sp(), a.NewIdent(sp(), "a"), a.NewNumberLit(sp(), 1))
		p2 := a.New(ast.KindPropertyAssignment, sp(), a.NewIdent(sp(), "b"), a.NewNumberLit(sp(), 2))
		lit := a.New(ast.KindObjectLit, sp(), p1, p2)
		a.SetFlags(lit, flags)
		return lit
	}
	single := a.NewVarDeclaration(sp(), a.NewIdent(sp(), "s"), ast.NoNodeID, mkLit(ast.FlagSingleLine))
	multi := a.NewVarDeclaration(sp(), a.NewIdent(sp(), "m"), ast.NoNodeID, mkLit(0))
	a.NewSourceFile(sp(),
		a.NewVarStatement(sp(), ast.FlagConst, single),
		a.NewVarStatement(sp(), ast.FlagConst, multi))

	out := Print(a, Options{})
	if !strings.Contains(out, "const s = { a: 1, b: 2 };") {
		t.Fatalf("single-line literal should stay on one line:\n%s", out)
	}
	if !strings.Contains(out, "a: 1,\n") {
		t.Fatalf("multi-line literal should break per property:\n%s", out)
	}
}

func TestAccessChainNewlinePreserved(t *testing.T) {
	a := ast.NewArena(0, nil)
	obj := a.NewIdent(sp(), "builder")
	first := a.New(ast.KindPropertyAccess, sp(), obj, a.NewIdent(sp(), "a"))
	second := a.New(ast.KindPropertyAccess, sp(), first, a.NewIdent(sp(), "b"))
	a.SetFlags(second, ast.FlagNewlineBefore)
	a.NewSourceFile(sp(), a.New(ast.KindExpressionStmt, sp(), second))

	out := Print(a, Options{})
	if !strings.Contains(out, "builder.a\n") || !strings.Contains(out, ".b;") {
		t.Fatalf("chain newline should survive printing:\n%s", out)
	}
}

func TestPrecedenceParens(t *testing.T) {
	a := ast.NewArena(0, nil)
	// (1 + 2) * 3 — the lower-precedence operand needs parentheses.
	sum := a.NewBinary(sp(), ast.OpPlus, a.NewNumberLit(sp(), 1), a.NewNumberLit(sp(), 2))
	prod := a.NewBinary(sp(), ast.OpStar, sum, a.NewNumberLit(sp(), 3))
	a.NewSourceFile(sp(), a.New(ast.KindExpressionStmt, sp(), prod))
	out := Print(a, Options{})
	if !strings.Contains(out, "(1 + 2) * 3;") {
		t.Fatalf("precedence parens missing:\n%s", out)
	}
}

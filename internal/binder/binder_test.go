package binder

import (
	"testing"

	"tyco/internal/ast"
	"tyco/internal/flow"
	"tyco/internal/source"
	"tyco/internal/symbols"
)

func sp() source.Span { return source.Span{} }

func TestVarHoistingAcrossBlocks(t *testing.T) {
	a := ast.NewArena(0, nil)
	// { var x = 1; } var x = 2;
	declInner := a.NewVarDeclaration(sp(), a.NewIdent(sp(), "x"), ast.NoNodeID, a.NewNumberLit(sp(), 1))
	inner := a.NewVarStatement(sp(), 0, declInner)
	block := a.New(ast.KindBlock, sp(), inner)
	declOuter := a.NewVarDeclaration(sp(), a.NewIdent(sp(), "x"), ast.NoNodeID, a.NewNumberLit(sp(), 2))
	outer := a.NewVarStatement(sp(), 0, declOuter)
	a.NewSourceFile(sp(), block, outer)

	res := Bind(a)
	if len(res.Duplicates) != 0 {
		t.Fatalf("var redeclaration must not be a duplicate, got %d", len(res.Duplicates))
	}
	sym, _, ok := res.Scopes.Lookup(res.FileScope, a.Strings.Intern("x"))
	if !ok {
		t.Fatalf("x should be hoisted to the file scope")
	}
	s := res.Symbols.Get(sym)
	if s.Flags&symbols.FlagFunctionScopedVariable == 0 {
		t.Fatalf("x should be function-scoped, flags %v", s.Flags)
	}
	if len(s.Decls) != 2 {
		t.Fatalf("both declarators should be recorded, got %d", len(s.Decls))
	}
}

func TestLetRedeclarationIsDuplicate(t *testing.T) {
	a := ast.NewArena(0, nil)
	d1 := a.NewVarDeclaration(sp(), a.NewIdent(sp(), "y"), ast.NoNodeID, ast.NoNodeID)
	s1 := a.NewVarStatement(sp(), ast.FlagLet, d1)
	d2 := a.NewVarDeclaration(sp(), a.NewIdent(sp(), "y"), ast.NoNodeID, ast.NoNodeID)
	s2 := a.NewVarStatement(sp(), ast.FlagLet, d2)
	a.NewSourceFile(sp(), s1, s2)

	res := Bind(a)
	if len(res.Duplicates) != 1 {
		t.Fatalf("let redeclaration must be a duplicate, got %d", len(res.Duplicates))
	}
}

func TestInterfaceMergeKeepsOneSymbol(t *testing.T) {
	a := ast.NewArena(0, nil)
	// interface L { next: L }  interface L { prev: L }
	mk := func(member string) ast.NodeID {
		prop := a.New(ast.KindPropertySignature, sp(),
			a.NewIdent(sp(), member),
			a.NewTypeRef(sp(), a.NewIdent(sp(), "L"), ast.NoNodeID),
			ast.NoNodeID)
		return a.New(ast.KindInterfaceDecl, sp(),
			a.NewIdent(sp(), "L"), ast.NoNodeID, ast.NoNodeID, a.NewList(sp(), prop))
	}
	a.NewSourceFile(sp(), mk("next"), mk("prev"))

	res := Bind(a)
	if len(res.Duplicates) != 0 {
		t.Fatalf("interface+interface must merge, got %d duplicates", len(res.Duplicates))
	}
	sym, _, _ := res.Scopes.Lookup(res.FileScope, a.Strings.Intern("L"))
	s := res.Symbols.Get(sym)
	if len(s.Decls) != 2 {
		t.Fatalf("merged symbol should list both declarations, got %d", len(s.Decls))
	}
	if s.Members.Len() != 2 {
		t.Fatalf("merged members should contain next and prev, got %d", s.Members.Len())
	}
}

func TestIfBuildsConditionFlows(t *testing.T) {
	a := ast.NewArena(0, nil)
	// if (x) { x; } else { x; }
	cond := a.NewIdent(sp(), "x")
	thenUse := a.NewIdent(sp(), "x")
	elseUse := a.NewIdent(sp(), "x")
	thenBlock := a.New(ast.KindBlock, sp(), a.New(ast.KindExpressionStmt, sp(), thenUse))
	elseBlock := a.New(ast.KindBlock, sp(), a.New(ast.KindExpressionStmt, sp(), elseUse))
	ifStmt := a.New(ast.KindIf, sp(), cond, thenBlock, elseBlock)
	a.NewSourceFile(sp(), ifStmt)

	res := Bind(a)
	tf := res.Flow.Get(res.Flow.UseOf(thenUse))
	if tf == nil || tf.Kind != flow.KindTrueCondition || tf.Node != cond {
		t.Fatalf("then-branch use should sit under a true condition, got %+v", tf)
	}
	ff := res.Flow.Get(res.Flow.UseOf(elseUse))
	if ff == nil || ff.Kind != flow.KindFalseCondition || ff.Node != cond {
		t.Fatalf("else-branch use should sit under a false condition, got %+v", ff)
	}
}

func TestReturnMakesFlowUnreachable(t *testing.T) {
	a := ast.NewArena(0, nil)
	ret := a.New(ast.KindReturn, sp(), ast.NoNodeID)
	after := a.NewIdent(sp(), "x")
	body := a.New(ast.KindBlock, sp(), ret, a.New(ast.KindExpressionStmt, sp(), after))
	fn := a.NewFunctionLike(ast.KindFunctionDecl, sp(),
		a.NewIdent(sp(), "f"), ast.NoNodeID, a.NewList(sp()), ast.NoNodeID, body)
	a.NewSourceFile(sp(), fn)

	res := Bind(a)
	useFlow := res.Flow.UseOf(after)
	if useFlow != res.Flow.Unreachable {
		t.Fatalf("statement after return should be unreachable, got %v", res.Flow.Get(useFlow).Kind)
	}
}

func TestExportEqualsRecorded(t *testing.T) {
	a := ast.NewArena(0, nil)
	target := a.NewIdent(sp(), "api")
	exp := a.New(ast.KindExportAssignment, sp(), target)
	a.SetFlags(exp, ast.FlagExportEquals)
	decl := a.NewVarDeclaration(sp(), a.NewIdent(sp(), "api"), ast.NoNodeID, a.NewNumberLit(sp(), 1))
	a.NewSourceFile(sp(), a.NewVarStatement(sp(), ast.FlagConst, decl), exp)

	res := Bind(a)
	if !res.Features.ExportEquals || !res.ExportEqualsNode.IsValid() {
		t.Fatalf("export= should be recorded in features")
	}
	if _, _, ok := res.Scopes.Lookup(res.FileScope, a.Strings.Intern(ExportEqualsKey)); !ok {
		t.Fatalf("export= should bind the sentinel key")
	}
}

func TestModuleExportsCopied(t *testing.T) {
	a := ast.NewArena(0, nil)
	// namespace N { export const v = 1; }
	decl := a.NewVarDeclaration(sp(), a.NewIdent(sp(), "v"), ast.NoNodeID, a.NewNumberLit(sp(), 1))
	vs := a.NewVarStatement(sp(), ast.FlagConst|ast.FlagExport, decl)
	a.SetFlags(vs, ast.FlagExport)
	block := a.New(ast.KindModuleBlock, sp(), vs)
	mod := a.New(ast.KindModuleDecl, sp(), a.NewIdent(sp(), "N"), block)
	a.NewSourceFile(sp(), mod)

	res := Bind(a)
	sym, _, ok := res.Scopes.Lookup(res.FileScope, a.Strings.Intern("N"))
	if !ok {
		t.Fatalf("namespace N should bind in the file scope")
	}
	s := res.Symbols.Get(sym)
	if s.Flags&symbols.FlagNamespaceModule == 0 {
		t.Fatalf("namespace with values should be instantiated")
	}
	if _, ok := s.Exports.Get(a.Strings.Intern("v")); !ok {
		t.Fatalf("exported const should be copied into the namespace exports")
	}
}

package checker

import (
	"strings"
	"testing"

	"tyco/internal/ast"
	"tyco/internal/binder"
	"tyco/internal/diag"
	"tyco/internal/project"
	"tyco/internal/solver"
	"tyco/internal/source"
	"tyco/internal/types"
)

func sp() source.Span { return source.Span{} }

type harness struct {
	a   *ast.Arena
	in  *types.Interner
	bag *diag.Bag
	res *Result
}

func runCheck(t *testing.T, build func(a *ast.Arena) []ast.NodeID) *harness {
	t.Helper()
	strs := source.NewInterner()
	a := ast.NewArena(0, strs)
	stmts := build(a)
	a.NewSourceFile(sp(), stmts...)
	bind := binder.Bind(a)
	in := types.NewInterner(strs)
	bag := diag.NewBag(100)
	res := Check(a, bind, in, project.DefaultOptions(), solver.NewCache(), bag)
	return &harness{a: a, in: in, bag: bag, res: res}
}

func (h *harness) expectClean(t *testing.T) {
	t.Helper()
	for _, d := range h.bag.Items() {
		t.Errorf("unexpected diagnostic %s: %s", d.Code, d.Message)
	}
}

func (h *harness) expectCode(t *testing.T, code diag.Code) {
	t.Helper()
	for _, d := range h.bag.Items() {
		if d.Code == code {
			return
		}
	}
	t.Errorf("expected %s, got %d diagnostics", code, h.bag.Len())
	for _, d := range h.bag.Items() {
		t.Logf("  %s: %s", d.Code, d.Message)
	}
}

func keyword(a *ast.Arena, op ast.Op) ast.NodeID {
	return a.NewKeywordType(sp(), op)
}

// S1 — narrowing by typeof.
func TestScenarioTypeofNarrowing(t *testing.T) {
	var thenUse, elseUse ast.NodeID
	h := runCheck(t, func(a *ast.Arena) []ast.NodeID {
		// function f(x: string | number) {
		//   if (typeof x === "string") { return x.length; }
		//   return x + 1;
		// }
		paramType := a.New(ast.KindUnionType, sp(),
			keyword(a, ast.OpStringKeyword), keyword(a, ast.OpNumberKeyword))
		param := a.NewParameter(sp(), a.NewIdent(sp(), "x"), paramType, ast.NoNodeID)

		condX := a.NewIdent(sp(), "x")
		cond := a.NewBinary(sp(), ast.OpStrictEq,
			a.New(ast.KindTypeOfExpr, sp(), condX),
			a.NewStringLit(sp(), "string"))

		thenUse = a.NewIdent(sp(), "x")
		lengthAccess := a.New(ast.KindPropertyAccess, sp(), thenUse, a.NewIdent(sp(), "length"))
		thenBlock := a.New(ast.KindBlock, sp(), a.New(ast.KindReturn, sp(), lengthAccess))

		elseUse = a.NewIdent(sp(), "x")
		plus := a.NewBinary(sp(), ast.OpPlus, elseUse, a.NewNumberLit(sp(), 1))
		afterIf := a.New(ast.KindReturn, sp(), plus)

		ifStmt := a.New(ast.KindIf, sp(), cond, thenBlock, ast.NoNodeID)
		body := a.New(ast.KindBlock, sp(), ifStmt, afterIf)
		fn := a.NewFunctionLike(ast.KindFunctionDecl, sp(),
			a.NewIdent(sp(), "f"), ast.NoNodeID, a.NewList(sp(), param), ast.NoNodeID, body)
		return []ast.NodeID{fn}
	})
	h.expectClean(t)
	b := h.in.Builtins()
	if got := h.res.ExprTypes[thenUse]; got != b.String {
		t.Errorf("x inside the if should narrow to string, got %s", h.in.Format(got))
	}
	if got := h.res.ExprTypes[elseUse]; got != b.Number {
		t.Errorf("x after the early return should narrow to number, got %s", h.in.Format(got))
	}
}

// S2 — discriminated union narrowing.
func TestScenarioDiscriminatedUnion(t *testing.T) {
	h := runCheck(t, func(a *ast.Arena) []ast.NodeID {
		// type T = {k: "a", v: number} | {k: "b", v: string};
		member := func(tag string, vKw ast.Op) ast.NodeID {
			kProp := a.New(ast.KindPropertySignature, sp(),
				a.NewIdent(sp(), "k"),
				a.New(ast.KindLiteralType, sp(), a.NewStringLit(sp(), tag)),
				ast.NoNodeID)
			vProp := a.New(ast.KindPropertySignature, sp(),
				a.NewIdent(sp(), "v"), keyword(a, vKw), ast.NoNodeID)
			return a.New(ast.KindTypeLiteral, sp(), kProp, vProp)
		}
		union := a.New(ast.KindUnionType, sp(),
			member("a", ast.OpNumberKeyword), member("b", ast.OpStringKeyword))
		alias := a.New(ast.KindTypeAliasDecl, sp(),
			a.NewIdent(sp(), "T"), ast.NoNodeID, union)

		// function g(t: T) { if (t.k === "a") { const n: number = t.v; }
		//                    else { const s: string = t.v; } }
		param := a.NewParameter(sp(),
			a.NewIdent(sp(), "t"),
			a.NewTypeRef(sp(), a.NewIdent(sp(), "T"), ast.NoNodeID),
			ast.NoNodeID)

		cond := a.NewBinary(sp(), ast.OpStrictEq,
			a.New(ast.KindPropertyAccess, sp(), a.NewIdent(sp(), "t"), a.NewIdent(sp(), "k")),
			a.NewStringLit(sp(), "a"))

		thenAccess := a.New(ast.KindPropertyAccess, sp(), a.NewIdent(sp(), "t"), a.NewIdent(sp(), "v"))
		thenDecl := a.NewVarDeclaration(sp(), a.NewIdent(sp(), "n"), keyword(a, ast.OpNumberKeyword), thenAccess)
		thenBlock := a.New(ast.KindBlock, sp(), a.NewVarStatement(sp(), ast.FlagConst, thenDecl))

		elseAccess := a.New(ast.KindPropertyAccess, sp(), a.NewIdent(sp(), "t"), a.NewIdent(sp(), "v"))
		elseDecl := a.NewVarDeclaration(sp(), a.NewIdent(sp(), "s"), keyword(a, ast.OpStringKeyword), elseAccess)
		elseBlock := a.New(ast.KindBlock, sp(), a.NewVarStatement(sp(), ast.FlagConst, elseDecl))

		ifStmt := a.New(ast.KindIf, sp(), cond, thenBlock, elseBlock)
		body := a.New(ast.KindBlock, sp(), ifStmt)
		fn := a.NewFunctionLike(ast.KindFunctionDecl, sp(),
			a.NewIdent(sp(), "g"), ast.NoNodeID, a.NewList(sp(), param), ast.NoNodeID, body)
		return []ast.NodeID{alias, fn}
	})
	h.expectClean(t)
}

// S3 — excess property checking on fresh literals.
func TestScenarioExcessProperty(t *testing.T) {
	mkLit := func(a *ast.Arena) ast.NodeID {
		return a.New(ast.KindObjectLit, sp(),
			a.New(ast.KindPropertyAssignment, sp(), a.NewIdent(sp(), "x"), a.NewNumberLit(sp(), 1)),
			a.New(ast.KindPropertyAssignment, sp(), a.NewIdent(sp(), "y"), a.NewNumberLit(sp(), 2)))
	}
	mkAliasP := func(a *ast.Arena) ast.NodeID {
		xProp := a.New(ast.KindPropertySignature, sp(),
			a.NewIdent(sp(), "x"), keyword(a, ast.OpNumberKeyword), ast.NoNodeID)
		return a.New(ast.KindTypeAliasDecl, sp(),
			a.NewIdent(sp(), "P"), ast.NoNodeID, a.New(ast.KindTypeLiteral, sp(), xProp))
	}

	// const p: P = {x: 1, y: 2};  → excess property diagnostic at the literal.
	h := runCheck(t, func(a *ast.Arena) []ast.NodeID {
		alias := mkAliasP(a)
		decl := a.NewVarDeclaration(sp(), a.NewIdent(sp(), "p"),
			a.NewTypeRef(sp(), a.NewIdent(sp(), "P"), ast.NoNodeID), mkLit(a))
		return []ast.NodeID{alias, a.NewVarStatement(sp(), ast.FlagConst, decl)}
	})
	h.expectCode(t, diag.ExcessProperty)

	// const o = {x: 1, y: 2}; const p: P = o;  → freshness gone, no error.
	h2 := runCheck(t, func(a *ast.Arena) []ast.NodeID {
		alias := mkAliasP(a)
		oDecl := a.NewVarDeclaration(sp(), a.NewIdent(sp(), "o"), ast.NoNodeID, mkLit(a))
		pDecl := a.NewVarDeclaration(sp(), a.NewIdent(sp(), "p"),
			a.NewTypeRef(sp(), a.NewIdent(sp(), "P"), ast.NoNodeID), a.NewIdent(sp(), "o"))
		return []ast.NodeID{
			alias,
			a.NewVarStatement(sp(), ast.FlagConst, oDecl),
			a.NewVarStatement(sp(), ast.FlagConst, pDecl),
		}
	})
	h2.expectClean(t)
}

// S4 — recursive interface merge.
func TestScenarioRecursiveInterfaceMerge(t *testing.T) {
	h := runCheck(t, func(a *ast.Arena) []ast.NodeID {
		mkIface := func(member string) ast.NodeID {
			prop := a.New(ast.KindPropertySignature, sp(),
				a.NewIdent(sp(), member),
				a.NewTypeRef(sp(), a.NewIdent(sp(), "L"), ast.NoNodeID),
				ast.NoNodeID)
			return a.New(ast.KindInterfaceDecl, sp(),
				a.NewIdent(sp(), "L"), ast.NoNodeID, ast.NoNodeID, a.NewList(sp(), prop))
		}
		// const x: L = {next: null as any, prev: null as any}
		anyCast := func() ast.NodeID {
			return a.New(ast.KindAsExpr, sp(), a.New(ast.KindNullLit, sp()), keyword(a, ast.OpAnyKeyword))
		}
		lit := a.New(ast.KindObjectLit, sp(),
			a.New(ast.KindPropertyAssignment, sp(), a.NewIdent(sp(), "next"), anyCast()),
			a.New(ast.KindPropertyAssignment, sp(), a.NewIdent(sp(), "prev"), anyCast()))
		decl := a.NewVarDeclaration(sp(), a.NewIdent(sp(), "x"),
			a.NewTypeRef(sp(), a.NewIdent(sp(), "L"), ast.NoNodeID), lit)
		return []ast.NodeID{mkIface("next"), mkIface("prev"), a.NewVarStatement(sp(), ast.FlagConst, decl)}
	})
	h.expectClean(t)
}

// S5 — overload selection in declaration order.
func TestScenarioOverloadSelection(t *testing.T) {
	h := runCheck(t, func(a *ast.Arena) []ast.NodeID {
		overload := func(paramKw, retKw ast.Op) ast.NodeID {
			param := a.NewParameter(sp(), a.NewIdent(sp(), "x"), keyword(a, paramKw), ast.NoNodeID)
			return a.NewFunctionLike(ast.KindFunctionDecl, sp(),
				a.NewIdent(sp(), "h"), ast.NoNodeID, a.NewList(sp(), param),
				keyword(a, retKw), ast.NoNodeID)
		}
		implParamType := a.New(ast.KindUnionType, sp(),
			keyword(a, ast.OpStringKeyword), keyword(a, ast.OpNumberKeyword))
		implParam := a.NewParameter(sp(), a.NewIdent(sp(), "x"), implParamType, ast.NoNodeID)
		implRet := a.New(ast.KindUnionType, sp(),
			keyword(a, ast.OpStringKeyword), keyword(a, ast.OpNumberKeyword))
		cast := a.New(ast.KindAsExpr, sp(), a.NewIdent(sp(), "x"), keyword(a, ast.OpAnyKeyword))
		implBody := a.New(ast.KindBlock, sp(), a.New(ast.KindReturn, sp(), cast))
		impl := a.NewFunctionLike(ast.KindFunctionDecl, sp(),
			a.NewIdent(sp(), "h"), ast.NoNodeID, a.NewList(sp(), implParam), implRet, implBody)

		callH := func(arg ast.NodeID) ast.NodeID {
			return a.NewCall(sp(), a.NewIdent(sp(), "h"), ast.NoNodeID, a.NewList(sp(), arg))
		}
		aDecl := a.NewVarDeclaration(sp(), a.NewIdent(sp(), "a"),
			keyword(a, ast.OpNumberKeyword), callH(a.NewStringLit(sp(), "s")))
		bDecl := a.NewVarDeclaration(sp(), a.NewIdent(sp(), "b"),
			keyword(a, ast.OpStringKeyword), callH(a.NewNumberLit(sp(), 1)))

		return []ast.NodeID{
			overload(ast.OpStringKeyword, ast.OpNumberKeyword),
			overload(ast.OpNumberKeyword, ast.OpStringKeyword),
			impl,
			a.NewVarStatement(sp(), ast.FlagConst, aDecl),
			a.NewVarStatement(sp(), ast.FlagConst, bDecl),
		}
	})
	h.expectClean(t)
}

func TestCannotFindName(t *testing.T) {
	h := runCheck(t, func(a *ast.Arena) []ast.NodeID {
		return []ast.NodeID{a.New(ast.KindExpressionStmt, sp(), a.NewIdent(sp(), "missing"))}
	})
	h.expectCode(t, diag.CannotFindName)
}

func TestPropertyNotFoundSuggestion(t *testing.T) {
	h := runCheck(t, func(a *ast.Arena) []ast.NodeID {
		// const o = { value: 1 }; o.valeu;
		lit := a.New(ast.KindObjectLit, sp(),
			a.New(ast.KindPropertyAssignment, sp(), a.NewIdent(sp(), "value"), a.NewNumberLit(sp(), 1)))
		decl := a.NewVarDeclaration(sp(), a.NewIdent(sp(), "o"), ast.NoNodeID, lit)
		access := a.New(ast.KindPropertyAccess, sp(), a.NewIdent(sp(), "o"), a.NewIdent(sp(), "valeu"))
		return []ast.NodeID{
			a.NewVarStatement(sp(), ast.FlagConst, decl),
			a.New(ast.KindExpressionStmt, sp(), access),
		}
	})
	h.expectCode(t, diag.PropertyNotFoundDidYouMean)
	for _, d := range h.bag.Items() {
		if d.Code == diag.PropertyNotFoundDidYouMean && !strings.Contains(d.Message, "'value'") {
			t.Errorf("suggestion should name the near-miss, got %q", d.Message)
		}
	}
}

func TestNotAssignableDiagnostic(t *testing.T) {
	h := runCheck(t, func(a *ast.Arena) []ast.NodeID {
		decl := a.NewVarDeclaration(sp(), a.NewIdent(sp(), "n"),
			keyword(a, ast.OpNumberKeyword), a.NewStringLit(sp(), "oops"))
		return []ast.NodeID{a.NewVarStatement(sp(), ast.FlagConst, decl)}
	})
	h.expectCode(t, diag.NotAssignable)
}

func TestEnumMemberTypesAndOpenness(t *testing.T) {
	h := runCheck(t, func(a *ast.Arena) []ast.NodeID {
		// enum E { A, B } const n: number = E.A;
		members := a.NewList(sp(),
			a.New(ast.KindEnumMember, sp(), a.NewIdent(sp(), "A"), ast.NoNodeID),
			a.New(ast.KindEnumMember, sp(), a.NewIdent(sp(), "B"), ast.NoNodeID))
		enum := a.New(ast.KindEnumDecl, sp(), a.NewIdent(sp(), "E"), members)
		access := a.New(ast.KindPropertyAccess, sp(), a.NewIdent(sp(), "E"), a.NewIdent(sp(), "A"))
		decl := a.NewVarDeclaration(sp(), a.NewIdent(sp(), "n"), keyword(a, ast.OpNumberKeyword), access)
		return []ast.NodeID{enum, a.NewVarStatement(sp(), ast.FlagConst, decl)}
	})
	h.expectClean(t)
}

func TestExportEqualsWithNamedExports(t *testing.T) {
	h := runCheck(t, func(a *ast.Arena) []ast.NodeID {
		vDecl := a.NewVarDeclaration(sp(), a.NewIdent(sp(), "v"), ast.NoNodeID, a.NewNumberLit(sp(), 1))
		vs := a.NewVarStatement(sp(), ast.FlagConst|ast.FlagExport, vDecl)
		a.SetFlags(vs, ast.FlagExport)
		spec := a.New(ast.KindExportSpecifier, sp(), ast.NoNodeID, a.NewIdent(sp(), "v"))
		named := a.New(ast.KindNamedExports, sp(), spec)
		exportDecl := a.New(ast.KindExportDecl, sp(), named, ast.NoNodeID)
		assign := a.New(ast.KindExportAssignment, sp(), a.NewIdent(sp(), "v"))
		a.SetFlags(assign, ast.FlagExportEquals)
		return []ast.NodeID{vs, exportDecl, assign}
	})
	h.expectCode(t, diag.ExportAssignmentWithExports)
}

func TestAssignmentNarrowing(t *testing.T) {
	var use ast.NodeID
	h := runCheck(t, func(a *ast.Arena) []ast.NodeID {
		// let x: string | number; x = "s"; x;
		declType := a.New(ast.KindUnionType, sp(),
			keyword(a, ast.OpStringKeyword), keyword(a, ast.OpNumberKeyword))
		decl := a.NewVarDeclaration(sp(), a.NewIdent(sp(), "x"), declType, ast.NoNodeID)
		assign := a.NewBinary(sp(), ast.OpAssign, a.NewIdent(sp(), "x"), a.NewStringLit(sp(), "s"))
		use = a.NewIdent(sp(), "x")
		return []ast.NodeID{
			a.NewVarStatement(sp(), ast.FlagLet, decl),
			a.New(ast.KindExpressionStmt, sp(), assign),
			a.New(ast.KindExpressionStmt, sp(), use),
		}
	})
	h.expectClean(t)
	got := h.res.ExprTypes[use]
	if h.in.KindOf(got) != types.KindLiteralString {
		t.Errorf("x after assignment should narrow to the literal, got %s", h.in.Format(got))
	}
}

func TestReadonlyAssignmentDiagnostic(t *testing.T) {
	h := runCheck(t, func(a *ast.Arena) []ast.NodeID {
		// interface R { readonly x: number }  function f(r: R) { r.x = 2; }
		prop := a.New(ast.KindPropertySignature, sp(),
			a.NewIdent(sp(), "x"), keyword(a, ast.OpNumberKeyword), ast.NoNodeID)
		a.SetFlags(prop, ast.FlagReadonly)
		iface := a.New(ast.KindInterfaceDecl, sp(),
			a.NewIdent(sp(), "R"), ast.NoNodeID, ast.NoNodeID, a.NewList(sp(), prop))
		param := a.NewParameter(sp(), a.NewIdent(sp(), "r"),
			a.NewTypeRef(sp(), a.NewIdent(sp(), "R"), ast.NoNodeID), ast.NoNodeID)
		assign := a.NewBinary(sp(), ast.OpAssign,
			a.New(ast.KindPropertyAccess, sp(), a.NewIdent(sp(), "r"), a.NewIdent(sp(), "x")),
			a.NewNumberLit(sp(), 2))
		body := a.New(ast.KindBlock, sp(), a.New(ast.KindExpressionStmt, sp(), assign))
		fn := a.NewFunctionLike(ast.KindFunctionDecl, sp(),
			a.NewIdent(sp(), "f"), ast.NoNodeID, a.NewList(sp(), param), ast.NoNodeID, body)
		return []ast.NodeID{iface, fn}
	})
	h.expectCode(t, diag.ReadonlyAssignment)
}

func TestUserDefinedTypeGuard(t *testing.T) {
	var use ast.NodeID
	h := runCheck(t, func(a *ast.Arena) []ast.NodeID {
		// function isStr(v: unknown): v is string { return typeof v === "string"; }
		// function f(u: string | number) { if (isStr(u)) { u; } }
		guardParam := a.NewParameter(sp(), a.NewIdent(sp(), "v"), keyword(a, ast.OpUnknownKeyword), ast.NoNodeID)
		predicate := a.New(ast.KindTypePredicate, sp(), a.NewIdent(sp(), "v"), keyword(a, ast.OpStringKeyword))
		guardCond := a.NewBinary(sp(), ast.OpStrictEq,
			a.New(ast.KindTypeOfExpr, sp(), a.NewIdent(sp(), "v")),
			a.NewStringLit(sp(), "string"))
		guardBody := a.New(ast.KindBlock, sp(), a.New(ast.KindReturn, sp(), guardCond))
		guard := a.NewFunctionLike(ast.KindFunctionDecl, sp(),
			a.NewIdent(sp(), "isStr"), ast.NoNodeID, a.NewList(sp(), guardParam), predicate, guardBody)

		fParamType := a.New(ast.KindUnionType, sp(),
			keyword(a, ast.OpStringKeyword), keyword(a, ast.OpNumberKeyword))
		fParam := a.NewParameter(sp(), a.NewIdent(sp(), "u"), fParamType, ast.NoNodeID)
		call := a.NewCall(sp(), a.NewIdent(sp(), "isStr"), ast.NoNodeID, a.NewList(sp(), a.NewIdent(sp(), "u")))
		use = a.NewIdent(sp(), "u")
		thenBlock := a.New(ast.KindBlock, sp(), a.New(ast.KindExpressionStmt, sp(), use))
		ifStmt := a.New(ast.KindIf, sp(), call, thenBlock, ast.NoNodeID)
		fBody := a.New(ast.KindBlock, sp(), ifStmt)
		fn := a.NewFunctionLike(ast.KindFunctionDecl, sp(),
			a.NewIdent(sp(), "f"), ast.NoNodeID, a.NewList(sp(), fParam), ast.NoNodeID, fBody)
		return []ast.NodeID{guard, fn}
	})
	h.expectClean(t)
	if got := h.res.ExprTypes[use]; got != h.in.Builtins().String {
		t.Errorf("u inside the guard should narrow to string, got %s", h.in.Format(got))
	}
}

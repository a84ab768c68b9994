package checker

import (
	"tyco/internal/ast"
	"tyco/internal/diag"
	"tyco/internal/types"
)

func (c *fileChecker) checkSourceFile(root ast.NodeID) {
	for _, s := range c.arena.Children(root) {
		c.checkStatement(s)
	}
}

func (c *fileChecker) checkStatement(node ast.NodeID) {
	if !node.IsValid() {
		return
	}
	switch c.arena.Kind(node) {
	case ast.KindVarStatement:
		c.checkVarStatement(node)
	case ast.KindExpressionStmt:
		c.checkExpr(c.arena.Child(node, 0), types.NoTypeID)
	case ast.KindBlock, ast.KindModuleBlock, ast.KindCaseClause, ast.KindDefaultClause:
		for _, s := range c.arena.Children(node) {
			c.checkStatement(s)
		}
	case ast.KindIf:
		c.checkExpr(c.arena.IfCond(node), types.NoTypeID)
		c.checkStatement(c.arena.IfThen(node))
		c.checkStatement(c.arena.IfElse(node))
	case ast.KindWhile, ast.KindDo:
		c.checkExpr(c.arena.Child(node, 0), types.NoTypeID)
		c.checkStatement(c.arena.Child(node, 1))
	case ast.KindFor:
		if init := c.arena.Child(node, 0); init.IsValid() {
			if c.arena.Kind(init) == ast.KindVarStatement {
				c.checkVarStatement(init)
			} else {
				c.checkExpr(init, types.NoTypeID)
			}
		}
		c.checkExpr(c.arena.Child(node, 1), types.NoTypeID)
		c.checkExpr(c.arena.Child(node, 2), types.NoTypeID)
		c.checkStatement(c.arena.Child(node, 3))
	case ast.KindForIn, ast.KindForOf:
		c.checkForInOf(node)
	case ast.KindReturn:
		c.checkReturn(node)
	case ast.KindThrow:
		c.checkExpr(c.arena.Child(node, 0), types.NoTypeID)
	case ast.KindSwitch:
		children := c.arena.Children(node)
		c.checkExpr(children[0], types.NoTypeID)
		for _, clause := range children[1:] {
			stmts := c.arena.Children(clause)
			if c.arena.Kind(clause) == ast.KindCaseClause && len(stmts) > 0 {
				c.checkExpr(stmts[0], types.NoTypeID)
				stmts = stmts[1:]
			}
			for _, s := range stmts {
				c.checkStatement(s)
			}
		}
	case ast.KindLabeled:
		c.checkStatement(c.arena.Child(node, 1))
	case ast.KindTry:
		c.checkStatement(c.arena.Child(node, 0))
		if catch := c.arena.Child(node, 1); catch.IsValid() {
			c.checkStatement(c.arena.Child(catch, 1))
		}
		c.checkStatement(c.arena.Child(node, 2))
	case ast.KindFunctionDecl:
		c.checkFunctionDecl(node)
	case ast.KindClassDecl:
		c.checkClassBody(node)
	case ast.KindInterfaceDecl, ast.KindTypeAliasDecl:
		// Realize eagerly so malformed bodies surface diagnostics here.
		if sym := c.bind.DeclSymbols[node]; sym.IsValid() {
			c.ResolveDef(c.defFor(sym))
		}
	case ast.KindEnumDecl:
		if sym := c.bind.DeclSymbols[node]; sym.IsValid() {
			c.ResolveDef(c.defFor(sym))
		}
	case ast.KindModuleDecl:
		c.checkStatement(c.arena.ModuleBody(node))
	case ast.KindExportDecl, ast.KindImportDecl, ast.KindDebugger, ast.KindEmptyStmt:
	case ast.KindExportAssignment:
		c.checkExpr(c.arena.Child(node, 0), types.NoTypeID)
	case ast.KindBreak, ast.KindContinue:
	default:
		for _, child := range c.arena.Children(node) {
			c.checkStatement(child)
		}
	}
}

func (c *fileChecker) checkVarStatement(node ast.NodeID) {
	for _, decl := range c.arena.Children(node) {
		c.checkVarDeclaration(decl)
	}
}

func (c *fileChecker) checkVarDeclaration(decl ast.NodeID) {
	annotation := c.arena.DeclType(decl)
	init := c.arena.DeclInit(decl)
	name := c.arena.DeclName(decl)

	var declared types.TypeID
	if annotation.IsValid() {
		declared = c.typeFromNode(annotation, nil)
	}
	if init.IsValid() {
		initType := c.checkExpr(init, declared)
		if declared.IsValid() {
			c.checkAssignable(initType, declared, init, diag.NotAssignable)
		} else {
			declared = initType
			if !c.isConstDecl(decl) {
				declared = c.widenLiteral(c.unfresh(declared))
			} else {
				declared = c.unfresh(declared)
			}
		}
	} else if !declared.IsValid() {
		if c.opts.NoImplicitAny && c.arena.Kind(name) == ast.KindIdent {
			// Unannotated, uninitialized declarations stay any; strict
			// configurations call that out.
			c.warnAt(diag.ImplicitAnyVariable, decl,
				"Variable '%s' implicitly has an 'any' type.", c.arena.Text(name))
		}
		declared = c.b().Any
	}
	if sym := c.bind.DeclSymbols[decl]; sym.IsValid() {
		if _, done := c.res.SymbolTypes[sym]; !done {
			c.res.SymbolTypes[sym] = declared
		}
	}
}

func (c *fileChecker) checkForInOf(node ast.NodeID) {
	init := c.arena.Child(node, 0)
	expr := c.arena.Child(node, 1)
	exprType := c.checkExpr(expr, types.NoTypeID)

	var elemType types.TypeID
	if c.arena.Kind(node) == ast.KindForIn {
		elemType = c.b().String
	} else {
		ev := c.sub.Evaluator().Evaluate(exprType)
		switch c.in.KindOf(ev) {
		case types.KindArray:
			elemType = c.in.MustLookup(ev).Elem
		case types.KindTuple:
			tup, _ := c.in.Tuple(ev)
			var parts []types.TypeID
			for _, e := range tup.Elems {
				parts = append(parts, e.Type)
			}
			elemType = c.in.MakeUnion(parts...)
		default:
			if ev == c.b().String || c.in.KindOf(ev) == types.KindLiteralString {
				elemType = c.b().String
			} else {
				elemType = c.b().Any
			}
		}
	}
	if c.arena.Kind(init) == ast.KindVarStatement {
		for _, decl := range c.arena.Children(init) {
			if sym := c.bind.DeclSymbols[decl]; sym.IsValid() {
				c.res.SymbolTypes[sym] = elemType
			}
		}
	} else {
		c.checkExpr(init, types.NoTypeID)
	}
	c.checkStatement(c.arena.Child(node, 2))
}

func (c *fileChecker) checkReturn(node ast.NodeID) {
	expr := c.arena.Child(node, 0)
	var want types.TypeID
	if len(c.enclosingReturn) > 0 {
		want = c.enclosingReturn[len(c.enclosingReturn)-1]
	}
	if !expr.IsValid() {
		return
	}
	t := c.checkExpr(expr, want)
	if want.IsValid() {
		c.checkAssignable(t, want, expr, diag.NotAssignable)
	}
	if len(c.returnTypes) > 0 {
		c.returnTypes[len(c.returnTypes)-1] = append(c.returnTypes[len(c.returnTypes)-1], c.unfresh(t))
	}
}

func (c *fileChecker) checkFunctionDecl(node ast.NodeID) {
	sig := c.signatureFromNode(node, nil)
	c.recordParamSymbols(node, sig)
	c.checkImplicitAnyParams(node)
	c.checkFunctionBody(node, sig)
}

// checkImplicitAnyParams reports TS7006 for unannotated parameters under
// noImplicitAny.
func (c *fileChecker) checkImplicitAnyParams(node ast.NodeID) {
	if !c.opts.NoImplicitAny {
		return
	}
	for _, p := range c.arena.ListItems(c.arena.FnParams(node)) {
		if c.arena.DeclType(p).IsValid() || c.arena.DeclInit(p).IsValid() {
			continue
		}
		nameNode := c.arena.DeclName(p)
		if c.arena.Kind(nameNode) != ast.KindIdent {
			continue
		}
		if c.hasContextualParam(p) {
			continue
		}
		c.errorAt(diag.ImplicitAnyParameter, p,
			"Parameter '%s' implicitly has an 'any' type.", c.arena.Text(nameNode))
	}
}

// hasContextualParam reports whether a parameter receives its type
// contextually (the param types recorded during expression checking).
func (c *fileChecker) hasContextualParam(p ast.NodeID) bool {
	sym := c.bind.DeclSymbols[p]
	if !sym.IsValid() {
		return false
	}
	t, ok := c.res.SymbolTypes[sym]
	return ok && t != c.b().Any
}

// recordParamSymbols assigns declared parameter types to their symbols.
func (c *fileChecker) recordParamSymbols(fn ast.NodeID, sigID types.SignatureID) {
	sig := c.in.Signature(sigID)
	params := c.arena.ListItems(c.arena.FnParams(fn))
	j := 0
	for _, p := range params {
		if c.arena.Flags(p).Has(ast.FlagThisParam) {
			j++
			continue
		}
		if sym := c.bind.DeclSymbols[p]; sym.IsValid() && j < len(sig.Params) {
			c.res.SymbolTypes[sym] = sig.Params[j].Type
		}
		j++
	}
}

// checkFunctionBody checks the body under the signature's return context
// and flags value-returning paths that fall through.
func (c *fileChecker) checkFunctionBody(node ast.NodeID, sigID types.SignatureID) types.TypeID {
	body := c.arena.FnBody(node)
	sig := c.in.Signature(sigID)
	annotated := types.NoTypeID
	if rt := c.arena.FnReturnType(node); rt.IsValid() && c.arena.Kind(rt) != ast.KindTypePredicate {
		annotated = sig.Return
	}
	if !body.IsValid() {
		return annotated
	}

	c.enclosingReturn = append(c.enclosingReturn, annotated)
	c.returnTypes = append(c.returnTypes, nil)

	var inferred types.TypeID
	if c.arena.Kind(body) == ast.KindBlock {
		for _, s := range c.arena.Children(body) {
			c.checkStatement(s)
		}
		returns := c.returnTypes[len(c.returnTypes)-1]
		if len(returns) == 0 {
			inferred = c.b().Void
		} else {
			inferred = c.in.MakeUnion(returns...)
		}
	} else {
		inferred = c.unfresh(c.checkExpr(body, annotated))
		if annotated.IsValid() {
			c.checkAssignable(inferred, annotated, body, diag.NotAssignable)
		}
	}

	c.returnTypes = c.returnTypes[:len(c.returnTypes)-1]
	c.enclosingReturn = c.enclosingReturn[:len(c.enclosingReturn)-1]

	if annotated.IsValid() {
		c.checkAllPathsReturn(node, annotated)
		return annotated
	}
	return inferred
}

// checkAllPathsReturn reports TS2366 when a value-returning function can
// fall off the end.
func (c *fileChecker) checkAllPathsReturn(node ast.NodeID, annotated types.TypeID) {
	b := c.b()
	if !annotated.IsValid() || annotated == b.Void || annotated == b.Any ||
		annotated == b.Undefined || annotated == b.Error || annotated == b.Unknown {
		return
	}
	if c.in.KindOf(annotated) == types.KindUnion {
		for _, m := range c.in.ListMembers(annotated) {
			if m == b.Undefined || m == b.Void {
				return
			}
		}
	}
	body := c.arena.FnBody(node)
	if c.arena.Kind(body) != ast.KindBlock {
		return
	}
	if !c.blockDefinitelyExits(body) {
		c.errorAt(diag.NotAllPathsReturn, node,
			"Function lacks ending return statement and return type does not include 'undefined'.")
	}
}

// blockDefinitelyExits is a syntactic approximation: the last statement of
// every path returns or throws.
func (c *fileChecker) blockDefinitelyExits(node ast.NodeID) bool {
	switch c.arena.Kind(node) {
	case ast.KindReturn, ast.KindThrow:
		return true
	case ast.KindBlock:
		stmts := c.arena.Children(node)
		if len(stmts) == 0 {
			return false
		}
		return c.blockDefinitelyExits(stmts[len(stmts)-1])
	case ast.KindIf:
		elseStmt := c.arena.IfElse(node)
		if !elseStmt.IsValid() {
			return false
		}
		return c.blockDefinitelyExits(c.arena.IfThen(node)) && c.blockDefinitelyExits(elseStmt)
	case ast.KindSwitch:
		children := c.arena.Children(node)
		if len(children) < 2 {
			return false
		}
		hasDefault := false
		for _, clause := range children[1:] {
			if c.arena.Kind(clause) == ast.KindDefaultClause {
				hasDefault = true
			}
			stmts := c.arena.Children(clause)
			if c.arena.Kind(clause) == ast.KindCaseClause && len(stmts) > 0 {
				stmts = stmts[1:]
			}
			if len(stmts) == 0 || !c.blockDefinitelyExits(stmts[len(stmts)-1]) {
				return false
			}
		}
		return hasDefault
	}
	return false
}

func (c *fileChecker) checkClassBody(node ast.NodeID) {
	sym := c.bind.DeclSymbols[node]
	if sym.IsValid() {
		// Realize both sides so member diagnostics surface.
		c.ResolveDef(c.defFor(sym))
		c.typeOfSymbol(sym)
	}
	for _, m := range c.arena.ListItems(c.arena.ClassMembers(node)) {
		switch c.arena.Kind(m) {
		case ast.KindPropertyDecl:
			if init := c.arena.DeclInit(m); init.IsValid() {
				declared := types.NoTypeID
				if tn := c.arena.DeclType(m); tn.IsValid() {
					declared = c.typeFromNode(tn, nil)
				}
				t := c.checkExpr(init, declared)
				if declared.IsValid() {
					c.checkAssignable(t, declared, init, diag.NotAssignable)
				}
			}
		case ast.KindMethodDecl, ast.KindConstructorDecl, ast.KindSetAccessor:
			sig := c.signatureFromNode(m, nil)
			c.recordParamSymbols(m, sig)
			c.checkFunctionBody(m, sig)
		case ast.KindGetAccessor:
			sig := c.signatureFromNode(m, nil)
			if rt := c.arena.FnReturnType(m); rt.IsValid() {
				if body := c.arena.FnBody(m); body.IsValid() && !c.blockDefinitelyExits(body) {
					c.errorAt(diag.GetterMustReturn, m, "A 'get' accessor must return a value.")
				}
			}
			c.checkFunctionBody(m, sig)
		case ast.KindStaticBlock:
			c.checkStatement(c.arena.Child(m, 0))
		}
	}
	// Heritage assignability: the class instance must satisfy implemented
	// interfaces.
	if sym.IsValid() {
		instance := c.in.MakeLazy(c.defFor(sym))
		for _, h := range c.arena.ListItems(c.arena.ClassHeritage(node)) {
			if c.arena.Op(h) != ast.OpImplements {
				continue
			}
			for _, e := range c.arena.Children(h) {
				want := c.typeFromHeritage(e, nil)
				c.checkAssignable(instance, want, e, diag.NotAssignable)
			}
		}
	}
}

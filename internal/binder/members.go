package binder

import (
	"tyco/internal/ast"
	"tyco/internal/flow"
	"tyco/internal/source"
	"tyco/internal/symbols"
)

// bindFunctionLike binds any node with the function child layout: its own
// scope, parameter symbols, and a fresh flow graph region for the body.
func (b *binder) bindFunctionLike(node ast.NodeID) symbols.SymbolID {
	f := b.arena.Flags(node)
	if f.Has(ast.FlagGenerator) {
		b.res.Features.Generators = true
	}
	if f.Has(ast.FlagAsync) {
		b.res.Features.Async = true
	}
	if len(b.arena.Decorators(node)) > 0 {
		b.res.Features.Decorators = true
	}

	var sym symbols.SymbolID
	if b.arena.Kind(node) == ast.KindFunctionDecl {
		// Hoisting already created the symbol; reuse it.
		sym = b.res.DeclSymbols[node]
		if !sym.IsValid() {
			sym = b.declare(b.atomOf(b.arena.FnName(node)), node, symbols.FlagFunction)
			b.markExported(sym, node)
		}
	}

	b.enterScope(symbols.ScopeFunction, node)
	b.bindTypeParams(b.arena.FnTypeParams(node))
	for _, p := range b.arena.ListItems(b.arena.FnParams(node)) {
		b.bindExpr(b.arena.DeclInit(p))
		if b.arena.Flags(p).Has(ast.FlagThisParam) {
			continue
		}
		b.declarePattern(b.arena.DeclName(p), p, symbols.FlagFunctionScopedVariable|symbols.FlagParameter, ast.NoNodeID)
	}

	body := b.arena.FnBody(node)
	if body.IsValid() {
		savedFlow := b.currentFlow
		savedBreaks, savedContinues := b.breakTargets, b.continueTargets
		b.breakTargets, b.continueTargets = nil, nil
		b.currentFlow = b.res.Flow.New(flow.KindStart, node)

		if b.arena.Kind(body) == ast.KindBlock {
			stmts := b.arena.Children(body)
			b.hoistContainer(stmts)
			for _, s := range stmts {
				b.bindStatement(s)
			}
		} else {
			// Expression-bodied arrow.
			b.bindExpr(body)
		}

		b.currentFlow = savedFlow
		b.breakTargets, b.continueTargets = savedBreaks, savedContinues
	}
	b.leaveScope()
	return sym
}

func (b *binder) bindTypeParams(list ast.NodeID) {
	for _, tp := range b.arena.ListItems(list) {
		b.declare(b.atomOf(b.arena.Child(tp, 0)), tp, symbols.FlagTypeParameter)
	}
}

func (b *binder) bindClass(node ast.NodeID) {
	if len(b.arena.Decorators(node)) > 0 {
		b.res.Features.Decorators = true
	}
	var sym symbols.SymbolID
	if name := b.atomOf(b.arena.ClassName(node)); name.IsValid() {
		sym = b.declare(name, node, symbols.FlagClass)
		b.markExported(sym, node)
	} else {
		sym = b.res.Symbols.New(b.arena.Strings.Intern("(anonymous class)"), symbols.FlagClass)
		b.res.DeclSymbols[node] = sym
	}
	cs := b.res.Symbols.Get(sym)
	if cs.Members == nil {
		cs.Members = symbols.NewTable()
	}
	if cs.Exports == nil {
		cs.Exports = symbols.NewTable()
	}

	b.enterScope(symbols.ScopeClass, node)
	b.res.Scopes.Get(b.scope).Container = sym
	b.bindTypeParams(b.arena.ClassTypeParams(node))
	for _, h := range b.arena.ListItems(b.arena.ClassHeritage(node)) {
		for _, e := range b.arena.Children(h) {
			b.bindExpr(b.arena.Child(e, 0))
		}
	}
	for _, m := range b.arena.ListItems(b.arena.ClassMembers(node)) {
		b.bindClassMember(sym, m)
	}
	b.leaveScope()
}

func (b *binder) bindClassMember(class symbols.SymbolID, m ast.NodeID) {
	if len(b.arena.Decorators(m)) > 0 {
		b.res.Features.Decorators = true
	}
	mf := b.arena.Flags(m)
	static := mf.Has(ast.FlagStatic)
	var flags symbols.Flags
	switch b.arena.Kind(m) {
	case ast.KindPropertyDecl:
		flags = symbols.FlagProperty
		if b.arena.DeclInit(m).IsValid() {
			b.res.Features.ClassFields = true
		}
	case ast.KindMethodDecl:
		flags = symbols.FlagMethod
	case ast.KindConstructorDecl:
		flags = symbols.FlagMethod
	case ast.KindGetAccessor, ast.KindSetAccessor:
		flags = symbols.FlagAccessor
	case ast.KindStaticBlock:
		b.res.Features.ClassFields = true
		b.bindStatement(b.arena.Child(m, 0))
		return
	case ast.KindIndexSignature:
		return
	default:
		return
	}
	if static {
		flags |= symbols.FlagStatic
	}

	name := b.memberName(m)
	table := b.memberTable(class, static)
	b.declareMember(table, name, m, flags)

	switch b.arena.Kind(m) {
	case ast.KindPropertyDecl:
		b.bindExpr(b.arena.DeclInit(m))
	default:
		b.bindFunctionLike(m)
	}
}

func (b *binder) memberName(m ast.NodeID) source.Atom {
	name := b.arena.Child(m, 0)
	if b.arena.Kind(m) == ast.KindConstructorDecl {
		return b.arena.Strings.Intern("constructor")
	}
	return b.atomOf(name)
}

func (b *binder) memberTable(container symbols.SymbolID, static bool) *symbols.Table {
	cs := b.res.Symbols.Get(container)
	if static {
		if cs.Exports == nil {
			cs.Exports = symbols.NewTable()
		}
		return cs.Exports
	}
	if cs.Members == nil {
		cs.Members = symbols.NewTable()
	}
	return cs.Members
}

// declareMember mirrors declare for member tables: static and instance
// members live in different tables, so a shared name across them never
// collides here.
func (b *binder) declareMember(table *symbols.Table, name source.Atom, node ast.NodeID, flags symbols.Flags) symbols.SymbolID {
	if !name.IsValid() {
		return symbols.NoSymbolID
	}
	if existing, ok := table.Get(name); ok {
		sym := b.res.Symbols.Get(existing)
		if !symbols.CanMerge(sym.Flags, flags) {
			b.res.Duplicates = append(b.res.Duplicates, Duplicate{Node: node, Existing: existing, Name: name})
		}
		b.res.Symbols.AddDeclaration(existing, node, flags)
		b.res.DeclSymbols[node] = existing
		return existing
	}
	id := b.res.Symbols.New(name, 0)
	b.res.Symbols.AddDeclaration(id, node, flags)
	table.Set(name, id)
	b.res.DeclSymbols[node] = id
	return id
}

func (b *binder) bindInterface(node ast.NodeID) {
	name := b.atomOf(b.arena.ClassName(node))
	sym := b.declare(name, node, symbols.FlagInterface)
	b.markExported(sym, node)
	cs := b.res.Symbols.Get(sym)
	if cs.Members == nil {
		cs.Members = symbols.NewTable()
	}

	b.enterScope(symbols.ScopeInterface, node)
	b.res.Scopes.Get(b.scope).Container = sym
	b.bindTypeParams(b.arena.ClassTypeParams(node))
	for _, m := range b.arena.ListItems(b.arena.ClassMembers(node)) {
		var flags symbols.Flags
		switch b.arena.Kind(m) {
		case ast.KindPropertySignature:
			flags = symbols.FlagProperty
		case ast.KindMethodSignature:
			flags = symbols.FlagMethod
		case ast.KindCallSignature, ast.KindConstructSignature, ast.KindIndexSignature:
			continue
		default:
			continue
		}
		b.declareMember(cs.Members, b.atomOf(b.arena.Child(m, 0)), m, flags)
	}
	b.leaveScope()
}

func (b *binder) bindEnum(node ast.NodeID) {
	flags := symbols.FlagEnum
	if b.arena.Flags(node).Has(ast.FlagConst) {
		flags |= symbols.FlagConstEnum
	}
	name := b.atomOf(b.arena.Child(node, 0))
	sym := b.declare(name, node, flags)
	b.markExported(sym, node)
	cs := b.res.Symbols.Get(sym)
	if cs.Exports == nil {
		cs.Exports = symbols.NewTable()
	}
	for _, m := range b.arena.ListItems(b.arena.Child(node, 1)) {
		member := b.declareMember(cs.Exports, b.atomOf(b.arena.Child(m, 0)), m, symbols.FlagEnumMember)
		if member.IsValid() {
			b.res.Symbols.Get(member).Parent = sym
		}
		b.bindExpr(b.arena.Child(m, 1))
	}
}

func (b *binder) bindModule(node ast.NodeID) {
	name := b.atomOf(b.arena.ModuleName(node))
	// A namespace whose body contains value declarations is instantiated.
	flags := symbols.FlagModule
	if moduleHasValues(b.arena, b.arena.ModuleBody(node)) {
		flags |= symbols.FlagNamespaceModule
	}
	sym := b.declare(name, node, flags)
	b.markExported(sym, node)

	b.enterScope(symbols.ScopeModule, node)
	b.res.Scopes.Get(b.scope).Container = sym
	body := b.arena.ModuleBody(node)
	switch b.arena.Kind(body) {
	case ast.KindModuleBlock:
		stmts := b.arena.Children(body)
		b.hoistContainer(stmts)
		for _, s := range stmts {
			b.bindStatement(s)
		}
	case ast.KindModuleDecl:
		// Dotted name: namespace A.B {} binds B inside A.
		b.bindModule(body)
	}
	b.copyExports(b.scope, sym)
	b.leaveScope()
}

func moduleHasValues(a *ast.Arena, body ast.NodeID) bool {
	found := false
	a.Walk(body, func(n ast.NodeID) bool {
		switch a.Kind(n) {
		case ast.KindVarStatement, ast.KindFunctionDecl, ast.KindClassDecl, ast.KindEnumDecl:
			found = true
			return false
		}
		return !found
	})
	return found
}

func (b *binder) bindImport(node ast.NodeID) {
	clause := b.arena.Child(node, 0)
	if !clause.IsValid() {
		return
	}
	if def := b.arena.Child(clause, 0); def.IsValid() {
		b.declare(b.arena.Atom(def), def, symbols.FlagAlias)
	}
	bindings := b.arena.Child(clause, 1)
	switch b.arena.Kind(bindings) {
	case ast.KindNamespaceImport:
		b.declare(b.atomOf(b.arena.Child(bindings, 0)), bindings, symbols.FlagAlias)
	case ast.KindNamedImports:
		for _, spec := range b.arena.Children(bindings) {
			b.declare(b.atomOf(b.arena.Child(spec, 1)), spec, symbols.FlagAlias)
		}
	}
}

func (b *binder) bindExportDecl(node ast.NodeID) {
	b.res.NamedExportNodes = append(b.res.NamedExportNodes, node)
	b.res.Features.HasExports = true
	clause := b.arena.Child(node, 0)
	if b.arena.Kind(clause) != ast.KindNamedExports {
		return
	}
	for _, spec := range b.arena.Children(clause) {
		local := b.arena.Child(spec, 0)
		if !local.IsValid() {
			local = b.arena.Child(spec, 1)
		}
		if sym, _, ok := b.res.Scopes.Lookup(b.scope, b.atomOf(local)); ok {
			b.res.Symbols.Get(sym).IsExported = true
		}
		b.res.Flow.RecordUse(local, b.currentFlow)
		b.res.UseScopes[local] = b.scope
	}
}

func (b *binder) bindExportAssignment(node ast.NodeID) {
	expr := b.arena.Child(node, 0)
	b.bindExpr(expr)
	if !b.arena.Flags(node).Has(ast.FlagExportEquals) {
		// export default <expr>
		b.res.Features.HasExports = true
		b.res.NamedExportNodes = append(b.res.NamedExportNodes, node)
		return
	}
	b.res.Features.ExportEquals = true
	b.res.ExportEqualsNode = node
	// Bind the target under the sentinel key so later resolution finds it;
	// if the target has its own exports the checker re-exports them.
	key := b.arena.Strings.Intern(ExportEqualsKey)
	sym := b.declare(key, node, symbols.FlagAlias|symbols.FlagExportValue)
	if sym.IsValid() {
		b.res.Symbols.Get(sym).IsExported = true
	}
}

// Package binder performs the single bind pass: it walks a parsed file once,
// building scopes, hoisting declarations, merging mergeable symbols and
// threading the control-flow graph the checker narrows against.
package binder

import (
	"tyco/internal/ast"
	"tyco/internal/flow"
	"tyco/internal/source"
	"tyco/internal/symbols"
)

// Features records file-level syntax usage the transform pipeline keys on.
type Features struct {
	Decorators    bool
	Generators    bool
	Async         bool
	ClassFields   bool
	Destructuring bool
	Using         bool
	ExportEquals  bool
	HasExports    bool
}

// Duplicate records a disallowed redeclaration for the checker to report.
type Duplicate struct {
	Node     ast.NodeID
	Existing symbols.SymbolID
	Name     source.Atom
}

// Result stores everything the bind pass produced for one file.
type Result struct {
	Symbols   *symbols.Arena
	Scopes    *symbols.Scopes
	FileScope symbols.ScopeID
	Flow      *flow.Graph
	Features  Features
	// DeclSymbols maps declaration sites to their symbols.
	DeclSymbols map[ast.NodeID]symbols.SymbolID
	// UseScopes maps identifier uses to the scope active at bind time.
	UseScopes map[ast.NodeID]symbols.ScopeID
	// Duplicates lists disallowed redeclarations in source order.
	Duplicates []Duplicate
	// ExportEqualsNode is the `export =` assignment, when present.
	ExportEqualsNode ast.NodeID
	// NamedExportNodes lists export declarations other than `export =`.
	NamedExportNodes []ast.NodeID
}

// ExportEqualsKey is the sentinel name under which `export =` binds its
// target in the file locals.
const ExportEqualsKey = "export="

type binder struct {
	arena *ast.Arena
	res   *Result

	scope       symbols.ScopeID
	currentFlow flow.FlowID
	strict      bool

	// breakTargets / continueTargets form the label stacks for loops and
	// switches. Entries with name == NoAtom match unlabeled break/continue.
	breakTargets    []jumpTarget
	continueTargets []jumpTarget
}

type jumpTarget struct {
	label flow.FlowID
	name  source.Atom
}

// Bind runs the bind pass over a file's arena.
func Bind(arena *ast.Arena) *Result {
	res := &Result{
		Symbols:     symbols.NewArena(0),
		Scopes:      symbols.NewScopes(0),
		Flow:        flow.NewGraph(0),
		DeclSymbols: make(map[ast.NodeID]symbols.SymbolID),
		UseScopes:   make(map[ast.NodeID]symbols.ScopeID),
	}
	b := &binder{arena: arena, res: res}
	root := arena.Root()
	b.strict = arena.Flags(root).Has(ast.FlagStrictMode)
	res.FileScope = res.Scopes.New(symbols.ScopeSourceFile, symbols.NoScopeID, root)
	b.scope = res.FileScope
	b.currentFlow = res.Flow.Start

	stmts := arena.Children(root)
	b.hoistContainer(stmts)
	for _, s := range stmts {
		b.bindStatement(s)
	}
	b.copyExports(res.FileScope, symbols.NoSymbolID)
	return res
}

// enterScope pushes a fresh scope of the given kind.
func (b *binder) enterScope(kind symbols.ScopeKind, owner ast.NodeID) symbols.ScopeID {
	id := b.res.Scopes.New(kind, b.scope, owner)
	b.scope = id
	return id
}

// leaveScope pops back to the parent scope.
func (b *binder) leaveScope() {
	b.scope = b.res.Scopes.Get(b.scope).Parent
}

// declare binds name in the current scope, applying the merge policy. When
// the merge table disallows the pair the declaration is still recorded on
// the existing symbol so references keep resolving; the checker emits the
// duplicate-identifier diagnostic from res.Duplicates.
func (b *binder) declare(name source.Atom, node ast.NodeID, flags symbols.Flags) symbols.SymbolID {
	return b.declareIn(b.scope, name, node, flags)
}

func (b *binder) declareIn(scope symbols.ScopeID, name source.Atom, node ast.NodeID, flags symbols.Flags) symbols.SymbolID {
	if !name.IsValid() {
		return symbols.NoSymbolID
	}
	sc := b.res.Scopes.Get(scope)
	if existing, ok := sc.Locals.Get(name); ok {
		sym := b.res.Symbols.Get(existing)
		allowed := symbols.CanMerge(sym.Flags, flags)
		// Hoisted vars may redeclare freely; function overloads likewise
		// reach here with identical flags handled by CanMerge.
		if !allowed && flags&symbols.FlagFunctionScopedVariable != 0 &&
			sym.Flags&symbols.FlagFunctionScopedVariable != 0 {
			allowed = true
		}
		if !allowed {
			b.res.Duplicates = append(b.res.Duplicates, Duplicate{Node: node, Existing: existing, Name: name})
		}
		b.res.Symbols.AddDeclaration(existing, node, flags)
		if node.IsValid() {
			b.res.DeclSymbols[node] = existing
		}
		return existing
	}
	id := b.res.Symbols.New(name, 0)
	b.res.Symbols.AddDeclaration(id, node, flags)
	sc.Locals.Set(name, id)
	if node.IsValid() {
		b.res.DeclSymbols[node] = id
	}
	return id
}

// markExported flags the symbol when its declaration carries an export
// modifier or sits in an ambient module context.
func (b *binder) markExported(sym symbols.SymbolID, node ast.NodeID) {
	if !sym.IsValid() {
		return
	}
	f := b.arena.Flags(node)
	if f.Has(ast.FlagExport) || (f.Has(ast.FlagDeclare) && b.inModuleScope()) {
		b.res.Symbols.Get(sym).IsExported = true
		if f.Has(ast.FlagExport) {
			b.res.Features.HasExports = true
		}
	}
}

func (b *binder) inModuleScope() bool {
	return b.res.Scopes.Get(b.scope).Kind == symbols.ScopeModule
}

// copyExports copies exported locals of a closing container scope into the
// container symbol's export table. For the file scope container is invalid
// and the exports stay reachable through the scope itself.
func (b *binder) copyExports(scope symbols.ScopeID, container symbols.SymbolID) {
	sc := b.res.Scopes.Get(scope)
	var exports *symbols.Table
	if container.IsValid() {
		cs := b.res.Symbols.Get(container)
		if cs.Exports == nil {
			cs.Exports = symbols.NewTable()
		}
		exports = cs.Exports
	}
	sc.Locals.ForEach(func(name source.Atom, id symbols.SymbolID) {
		if b.res.Symbols.Get(id).IsExported && exports != nil {
			exports.Set(name, id)
		}
	})
}

// atomOf interns the declared name of a name-bearing node.
func (b *binder) atomOf(node ast.NodeID) source.Atom {
	switch b.arena.Kind(node) {
	case ast.KindIdent, ast.KindPrivateIdent, ast.KindStringLit:
		return b.arena.Atom(node)
	}
	return source.NoAtom
}

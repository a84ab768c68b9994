// Package checker drives typing across the AST: it computes a type per
// expression, applies contextual typing and flow narrowing, resolves
// overloads, and emits diagnostics. The solver does the structural work;
// this is the policy layer on top.
package checker

import (
	"fmt"

	"tyco/internal/ast"
	"tyco/internal/binder"
	"tyco/internal/diag"
	"tyco/internal/project"
	"tyco/internal/solver"
	"tyco/internal/source"
	"tyco/internal/symbols"
	"tyco/internal/types"
)

// Result stores the check artifacts for one file.
type Result struct {
	// ExprTypes maps expression nodes to their computed types.
	ExprTypes map[ast.NodeID]types.TypeID
	// SymbolTypes maps symbols to their declared-or-inferred types.
	SymbolTypes map[symbols.SymbolID]types.TypeID
	// UseSymbols maps identifier uses to the symbols they resolved to.
	UseSymbols map[ast.NodeID]symbols.SymbolID
}

// Check runs the checker over one bound file. Diagnostics land in bag.
func Check(arena *ast.Arena, bind *binder.Result, in *types.Interner, opts project.Options, cache *solver.Cache, bag *diag.Bag) *Result {
	c := &fileChecker{
		arena: arena,
		bind:  bind,
		in:    in,
		opts:  opts,
		bag:   bag,
		res: &Result{
			ExprTypes:   make(map[ast.NodeID]types.TypeID),
			SymbolTypes: make(map[symbols.SymbolID]types.TypeID),
			UseSymbols:  make(map[ast.NodeID]symbols.SymbolID),
		},
		defs:       map[symbols.SymbolID]types.DefID{},
		defSymbols: []symbols.SymbolID{0},
		defCache:   map[types.DefID]types.TypeID{},
		defParams:  map[types.DefID][]types.TypeID{},
		paramTypes: map[symbols.SymbolID]types.TypeID{},
	}
	sopts := solver.Options{
		StrictFunctionTypes:        opts.StrictFunctionTypes,
		StrictNullChecks:           opts.StrictNullChecks,
		ExactOptionalPropertyTypes: opts.ExactOptionalPropertyTypes,
		NoUncheckedIndexedAccess:   opts.NoUncheckedIndexedAccess,
		AllowVoidReturn:            true,
		AnyPropagation:             solver.AnyAll,
	}
	c.sub = solver.NewSubtypeCheckerWith(in, c, sopts)
	c.sub.Cache = cache

	c.checkSourceFile(arena.Root())
	c.reportDuplicates()
	c.reportExportEquals()
	return c.res
}

type fileChecker struct {
	arena *ast.Arena
	bind  *binder.Result
	in    *types.Interner
	opts  project.Options
	bag   *diag.Bag
	res   *Result
	sub   *solver.SubtypeChecker

	// Definition identity for nominal types and lazy references.
	defs       map[symbols.SymbolID]types.DefID
	defSymbols []symbols.SymbolID
	defCache   map[types.DefID]types.TypeID
	defParams  map[types.DefID][]types.TypeID
	// paramTypes interns one KindTypeParameter per type-parameter symbol.
	paramTypes map[symbols.SymbolID]types.TypeID

	// enclosingReturn tracks the annotated return type while checking a
	// function body; returnTypes collects the observed return expression
	// types for inference.
	enclosingReturn []types.TypeID
	returnTypes     [][]types.TypeID
}

func (c *fileChecker) b() types.Builtins { return c.in.Builtins() }

func (c *fileChecker) errorAt(code diag.Code, node ast.NodeID, format string, args ...any) {
	d := diag.NewError(code, c.arena.Span(node), fmt.Sprintf(format, args...))
	c.bag.Add(&d)
}

func (c *fileChecker) warnAt(code diag.Code, node ast.NodeID, format string, args ...any) {
	d := diag.New(diag.SevWarning, code, c.arena.Span(node), fmt.Sprintf(format, args...))
	c.bag.Add(&d)
}

// defFor allocates (or returns) the DefID backing a type declaration symbol.
func (c *fileChecker) defFor(sym symbols.SymbolID) types.DefID {
	if def, ok := c.defs[sym]; ok {
		return def
	}
	def := types.DefID(len(c.defSymbols))
	c.defSymbols = append(c.defSymbols, sym)
	c.defs[sym] = def
	return def
}

func (c *fileChecker) symbolForDef(def types.DefID) symbols.SymbolID {
	if int(def) >= len(c.defSymbols) {
		return symbols.NoSymbolID
	}
	return c.defSymbols[def]
}

// reportDuplicates turns the binder's disallowed redeclarations into
// duplicate-identifier diagnostics.
func (c *fileChecker) reportDuplicates() {
	for _, d := range c.bind.Duplicates {
		name, _ := c.arena.Strings.Lookup(d.Name)
		code := diag.DuplicateIdentifier
		existing := c.bind.Symbols.Get(d.Existing)
		if existing != nil && existing.Flags&symbols.FlagBlockScopedVariable != 0 {
			code = diag.CannotRedeclareBlockScoped
			c.errorAt(code, d.Node, "Cannot redeclare block-scoped variable '%s'.", name)
			continue
		}
		c.errorAt(code, d.Node, "Duplicate identifier '%s'.", name)
	}
}

// reportExportEquals reproduces the reference diagnostic for `export =`
// mixed with named export declarations.
func (c *fileChecker) reportExportEquals() {
	if !c.bind.ExportEqualsNode.IsValid() || len(c.bind.NamedExportNodes) == 0 {
		return
	}
	c.errorAt(diag.ExportAssignmentWithExports, c.bind.ExportEqualsNode,
		"An export assignment cannot be used in a module with other exported elements.")
}

// resolveName looks a name up from a use site's recorded scope.
func (c *fileChecker) resolveName(use ast.NodeID, name source.Atom) (symbols.SymbolID, bool) {
	scope, ok := c.bind.UseScopes[use]
	if !ok {
		scope = c.bind.FileScope
	}
	sym, _, found := c.bind.Scopes.Lookup(scope, name)
	return sym, found
}

// --- solver.TypeResolver ----------------------------------------------------

// ResolveDef realizes the structural type of a definition, merging every
// declaration that contributed to the symbol (interface + interface, etc.).
func (c *fileChecker) ResolveDef(def types.DefID) types.TypeID {
	if t, ok := c.defCache[def]; ok {
		return t
	}
	sym := c.symbolForDef(def)
	if !sym.IsValid() {
		return types.NoTypeID
	}
	// Pre-seed with error to break resolution cycles; the real value
	// overwrites it below.
	c.defCache[def] = c.b().Error
	t := c.realizeSymbolType(sym, def)
	c.defCache[def] = t
	return t
}

// DefTypeParams lists a definition's declared type parameters.
func (c *fileChecker) DefTypeParams(def types.DefID) []types.TypeID {
	if ps, ok := c.defParams[def]; ok {
		return ps
	}
	sym := c.symbolForDef(def)
	if !sym.IsValid() {
		return nil
	}
	s := c.bind.Symbols.Get(sym)
	var out []types.TypeID
	for _, decl := range s.Decls {
		list := c.typeParamListOf(decl)
		for _, tp := range c.arena.ListItems(list) {
			out = append(out, c.typeParamType(tp))
		}
		if len(out) > 0 {
			break
		}
	}
	c.defParams[def] = out
	return out
}

func (c *fileChecker) typeParamListOf(decl ast.NodeID) ast.NodeID {
	switch c.arena.Kind(decl) {
	case ast.KindInterfaceDecl, ast.KindClassDecl, ast.KindClassExpr:
		return c.arena.ClassTypeParams(decl)
	case ast.KindTypeAliasDecl:
		return c.arena.Child(decl, 1)
	default:
		if c.arena.Kind(decl).IsFunctionLike() {
			return c.arena.FnTypeParams(decl)
		}
	}
	return ast.NoNodeID
}

// DefVariance returns the variance signature from the declared annotations;
// parameters without an annotation are invariant. Variance is not inferred
// from how a parameter is used in the definition's members.
func (c *fileChecker) DefVariance(def types.DefID) []types.Variance {
	params := c.DefTypeParams(def)
	out := make([]types.Variance, len(params))
	for i, p := range params {
		if info, ok := c.in.Param(p); ok && info.Variance != types.VarianceInvariant {
			out[i] = info.Variance
		}
	}
	return out
}

// IsNumericEnum reports whether a definition is an enum with only numeric
// members.
func (c *fileChecker) IsNumericEnum(def types.DefID) bool {
	sym := c.symbolForDef(def)
	if !sym.IsValid() {
		return false
	}
	s := c.bind.Symbols.Get(sym)
	if s.Flags&symbols.FlagEnum == 0 {
		return false
	}
	numeric := true
	s.Exports.ForEach(func(_ source.Atom, member symbols.SymbolID) {
		mt := c.res.SymbolTypes[member]
		if c.in.KindOf(mt) == types.KindLiteralString {
			numeric = false
		}
	})
	return numeric
}

// IsClassSymbol reports whether a symbol handle names a class.
func (c *fileChecker) IsClassSymbol(sym uint32) bool {
	s := c.bind.Symbols.Get(symbols.SymbolID(sym))
	return s != nil && s.Flags&symbols.FlagClass != 0
}

// TypeOfSymbol resolves `typeof x` references.
func (c *fileChecker) TypeOfSymbol(sym uint32) types.TypeID {
	return c.typeOfSymbol(symbols.SymbolID(sym))
}

// SymbolOfDef exposes def-to-symbol identity for the solver's cycle guard.
func (c *fileChecker) SymbolOfDef(def types.DefID) uint32 {
	return uint32(c.symbolForDef(def))
}

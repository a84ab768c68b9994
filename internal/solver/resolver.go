package solver

import "tyco/internal/types"

// TypeResolver supplies the declaration-side facts the solver cannot know on
// its own: what a DefID expands to, generic parameters and variance, enum
// nature, and the global interface roots. The checker implements it over the
// symbol table.
type TypeResolver interface {
	// ResolveDef returns the structural realization of a definition. For a
	// generic definition the result still contains the declared type
	// parameters; callers substitute arguments afterwards.
	ResolveDef(def types.DefID) types.TypeID
	// DefTypeParams lists the declared type parameters of a definition.
	DefTypeParams(def types.DefID) []types.TypeID
	// DefVariance gives the variance signature of a definition's parameters.
	DefVariance(def types.DefID) []types.Variance
	// IsNumericEnum reports whether the definition is a numeric enum
	// (numeric enums are open: interchangeable with number).
	IsNumericEnum(def types.DefID) bool
	// IsClassSymbol reports whether a symbol handle names a class.
	IsClassSymbol(sym uint32) bool
	// TypeOfSymbol resolves `typeof x` references.
	TypeOfSymbol(sym uint32) types.TypeID
	// SymbolOfDef maps a definition to its backing symbol, for symbol-pair
	// cycle detection after DefID identity is lost.
	SymbolOfDef(def types.DefID) uint32
}

// NoopResolver answers every query with absence. Subtype checks that never
// touch Lazy/Enum/TypeQuery types work fully with it.
type NoopResolver struct{}

func (NoopResolver) ResolveDef(types.DefID) types.TypeID         { return types.NoTypeID }
func (NoopResolver) DefTypeParams(types.DefID) []types.TypeID    { return nil }
func (NoopResolver) DefVariance(types.DefID) []types.Variance    { return nil }
func (NoopResolver) IsNumericEnum(types.DefID) bool              { return false }
func (NoopResolver) IsClassSymbol(uint32) bool                   { return false }
func (NoopResolver) TypeOfSymbol(uint32) types.TypeID            { return types.NoTypeID }
func (NoopResolver) SymbolOfDef(types.DefID) uint32              { return 0 }

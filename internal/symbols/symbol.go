package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"tyco/internal/ast"
	"tyco/internal/source"
)

// Flags classify a symbol. A symbol accumulates flags as mergeable
// declarations pile onto the same name.
type Flags uint32

const (
	// FlagBlockScopedVariable marks let/const/using bindings.
	FlagBlockScopedVariable Flags = 1 << iota
	// FlagFunctionScopedVariable marks hoisted var bindings and parameters.
	FlagFunctionScopedVariable
	// FlagFunction marks function declarations (overloads merge here).
	FlagFunction
	// FlagClass marks class declarations.
	FlagClass
	// FlagInterface marks interface declarations.
	FlagInterface
	// FlagTypeAlias marks type alias declarations.
	FlagTypeAlias
	// FlagEnum marks enum declarations.
	FlagEnum
	// FlagConstEnum refines FlagEnum.
	FlagConstEnum
	// FlagEnumMember marks enum members.
	FlagEnumMember
	// FlagModule marks namespace/module declarations with statement bodies.
	FlagModule
	// FlagNamespaceModule marks instantiated namespaces (carry values).
	FlagNamespaceModule
	// FlagMethod marks class/interface methods (overloads merge).
	FlagMethod
	// FlagProperty marks class/interface/object properties.
	FlagProperty
	// FlagAccessor marks get/set accessors.
	FlagAccessor
	// FlagAlias marks import bindings.
	FlagAlias
	// FlagTypeParameter marks type parameters.
	FlagTypeParameter
	// FlagStatic marks static members.
	FlagStatic
	// FlagExportValue marks `export =` targets.
	FlagExportValue
	// FlagParameter refines FlagFunctionScopedVariable for parameters.
	FlagParameter
	// FlagSignature marks call/construct/index signature pseudo-symbols.
	FlagSignature
)

// FlagsValue selects symbols that occupy the value namespace.
const FlagsValue = FlagBlockScopedVariable | FlagFunctionScopedVariable |
	FlagFunction | FlagClass | FlagEnum | FlagEnumMember | FlagNamespaceModule |
	FlagMethod | FlagProperty | FlagAccessor

// FlagsType selects symbols that occupy the type namespace.
const FlagsType = FlagClass | FlagInterface | FlagTypeAlias | FlagEnum |
	FlagTypeParameter

// FlagsVariable selects any variable-like binding.
const FlagsVariable = FlagBlockScopedVariable | FlagFunctionScopedVariable

// IsValue reports whether the symbol occupies the value namespace.
func (f Flags) IsValue() bool { return f&FlagsValue != 0 }

// IsType reports whether the symbol occupies the type namespace.
func (f Flags) IsType() bool { return f&FlagsType != 0 }

// Symbol is a named program entity: its flags, the declaration sites that
// produced it, and member tables for containers.
type Symbol struct {
	Name  source.Atom
	Flags Flags
	// Decls lists every declaration site, in declaration-source order.
	Decls []ast.NodeID
	// ValueDecl is the primary value declaration (the first value-providing
	// site by source order).
	ValueDecl ast.NodeID
	// IsExported marks symbols copied into their container's export table.
	IsExported bool
	// Exports holds the exported members of modules and namespaces.
	Exports *Table
	// Members holds instance members of classes and interfaces.
	Members *Table
	// Parent is the container symbol, when any.
	Parent SymbolID
}

// Arena stores symbols in a compact slice, index 0 reserved.
type Arena struct {
	data []Symbol
}

// NewArena creates a symbol arena with a capacity hint.
func NewArena(capacity uint32) *Arena {
	if capacity == 0 {
		capacity = 64
	}
	return &Arena{data: make([]Symbol, 1, capacity+1)}
}

// New allocates a symbol and returns its ID.
func (a *Arena) New(name source.Atom, flags Flags) SymbolID {
	lenData, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("symbol arena overflow: %w", err))
	}
	id := SymbolID(lenData)
	a.data = append(a.data, Symbol{Name: name, Flags: flags})
	return id
}

// Get returns the symbol pointer or nil if the ID is invalid.
func (a *Arena) Get(id SymbolID) *Symbol {
	if !id.IsValid() || int(id) >= len(a.data) {
		return nil
	}
	return &a.data[id]
}

// Len reports the number of symbols excluding the sentinel.
func (a *Arena) Len() int { return len(a.data) - 1 }

// AddDeclaration appends a declaration site and updates the value
// declaration if this is the first value-providing site.
func (a *Arena) AddDeclaration(id SymbolID, node ast.NodeID, flags Flags) {
	s := a.Get(id)
	if s == nil {
		return
	}
	s.Flags |= flags
	s.Decls = append(s.Decls, node)
	if !s.ValueDecl.IsValid() && flags.IsValue() {
		s.ValueDecl = node
	}
}

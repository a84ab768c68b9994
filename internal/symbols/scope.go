package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"tyco/internal/ast"
	"tyco/internal/source"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	// ScopeInvalid represents an uninitialized or erroneous scope.
	ScopeInvalid ScopeKind = iota
	// ScopeSourceFile is the root scope of one file.
	ScopeSourceFile
	// ScopeModule covers namespace/module bodies.
	ScopeModule
	// ScopeFunction covers function-like bodies (vars hoist to here).
	ScopeFunction
	// ScopeClass covers class bodies (type parameters, members).
	ScopeClass
	// ScopeInterface covers interface bodies.
	ScopeInterface
	// ScopeBlock covers plain blocks, switch case blocks and loop bodies.
	ScopeBlock
	// ScopeCatch covers catch clauses.
	ScopeCatch
	// ScopeFor covers for/for-in/for-of headers plus bodies.
	ScopeFor
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeSourceFile:
		return "source-file"
	case ScopeModule:
		return "module"
	case ScopeFunction:
		return "function"
	case ScopeClass:
		return "class"
	case ScopeInterface:
		return "interface"
	case ScopeBlock:
		return "block"
	case ScopeCatch:
		return "catch"
	case ScopeFor:
		return "for"
	default:
		return "invalid"
	}
}

// HoistTarget reports whether var declarations hoist to this scope.
func (k ScopeKind) HoistTarget() bool {
	switch k {
	case ScopeSourceFile, ScopeModule, ScopeFunction:
		return true
	}
	return false
}

// Scope models a lexical scope with a parent pointer; lookups walk the chain.
type Scope struct {
	Kind    ScopeKind
	Parent  ScopeID
	Owner   ast.NodeID
	Locals  *Table
	// Container is the symbol whose exports/members this scope feeds
	// (modules, classes, interfaces); NoSymbolID otherwise.
	Container SymbolID
}

// Scopes stores all allocated scopes in a compact slice-based arena.
type Scopes struct {
	data []Scope
}

// NewScopes creates an arena with a capacity hint.
func NewScopes(capacity uint32) *Scopes {
	if capacity == 0 {
		capacity = 32
	}
	return &Scopes{data: make([]Scope, 1, capacity+1)}
}

// New allocates a scope and returns its ID.
func (s *Scopes) New(kind ScopeKind, parent ScopeID, owner ast.NodeID) ScopeID {
	lenData, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("scope arena overflow: %w", err))
	}
	id := ScopeID(lenData)
	s.data = append(s.data, Scope{
		Kind:   kind,
		Parent: parent,
		Owner:  owner,
		Locals: NewTable(),
	})
	return id
}

// Get returns the scope pointer or nil if the ID is invalid.
func (s *Scopes) Get(id ScopeID) *Scope {
	if !id.IsValid() || int(id) >= len(s.data) {
		return nil
	}
	return &s.data[id]
}

// Len reports the number of scopes excluding the sentinel.
func (s *Scopes) Len() int { return len(s.data) - 1 }

// Lookup resolves name starting at scope id and walking the parent chain.
func (s *Scopes) Lookup(id ScopeID, name source.Atom) (SymbolID, ScopeID, bool) {
	for cur := id; cur.IsValid(); {
		sc := s.Get(cur)
		if sc == nil {
			break
		}
		if sym, ok := sc.Locals.Get(name); ok {
			return sym, cur, true
		}
		cur = sc.Parent
	}
	return NoSymbolID, NoScopeID, false
}

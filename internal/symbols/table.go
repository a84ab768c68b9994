package symbols

import "tyco/internal/source"

// Table maps names to symbols while preserving insertion order, so export
// copying and member iteration stay deterministic.
type Table struct {
	byName map[source.Atom]SymbolID
	order  []source.Atom
}

// NewTable creates an empty symbol table.
func NewTable() *Table {
	return &Table{byName: make(map[source.Atom]SymbolID)}
}

// Get returns the symbol bound to name.
func (t *Table) Get(name source.Atom) (SymbolID, bool) {
	if t == nil {
		return NoSymbolID, false
	}
	id, ok := t.byName[name]
	return id, ok
}

// Set binds name to id, keeping first-insertion order.
func (t *Table) Set(name source.Atom, id SymbolID) {
	if _, exists := t.byName[name]; !exists {
		t.order = append(t.order, name)
	}
	t.byName[name] = id
}

// Len reports the number of bindings.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byName)
}

// ForEach visits bindings in insertion order.
func (t *Table) ForEach(fn func(name source.Atom, id SymbolID)) {
	if t == nil {
		return
	}
	for _, name := range t.order {
		fn(name, t.byName[name])
	}
}

package ast

import (
	"fmt"

	"fortio.org/safecast"

	"tyco/internal/source"
)

// Arena stores every node of a compilation as structure-of-arrays columns
// indexed by NodeID. Index 0 is reserved for NoNodeID.
type Arena struct {
	kinds    []Kind
	flags    []Flags
	ops      []Op
	spans    []source.Span
	parents  []NodeID
	atoms    []source.Atom
	children [][]NodeID

	// Sparse payloads.
	numbers    map[NodeID]float64
	decorators map[NodeID][]NodeID

	// Strings is the atom interner shared by every file in the compilation.
	Strings *source.Interner

	root NodeID
}

// NewArena creates an arena with a capacity hint and a shared interner.
// If strings is nil a fresh interner is created.
func NewArena(capacity uint, strings *source.Interner) *Arena {
	if capacity == 0 {
		capacity = 1 << 9
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	a := &Arena{
		kinds:    make([]Kind, 1, capacity+1),
		flags:    make([]Flags, 1, capacity+1),
		ops:      make([]Op, 1, capacity+1),
		spans:    make([]source.Span, 1, capacity+1),
		parents:  make([]NodeID, 1, capacity+1),
		atoms:    make([]source.Atom, 1, capacity+1),
		children: make([][]NodeID, 1, capacity+1),
		numbers:    make(map[NodeID]float64),
		decorators: make(map[NodeID][]NodeID),
		Strings:    strings,
	}
	return a
}

// New allocates a node and wires the children's parent pointers to it.
func (a *Arena) New(kind Kind, span source.Span, children ...NodeID) NodeID {
	lenNodes, err := safecast.Conv[uint32](len(a.kinds))
	if err != nil {
		panic(fmt.Errorf("node arena overflow: %w", err))
	}
	id := NodeID(lenNodes)
	a.kinds = append(a.kinds, kind)
	a.flags = append(a.flags, 0)
	a.ops = append(a.ops, OpNone)
	a.spans = append(a.spans, span)
	a.parents = append(a.parents, NoNodeID)
	a.atoms = append(a.atoms, source.NoAtom)
	a.children = append(a.children, children)
	for _, c := range children {
		if c.IsValid() {
			a.parents[c] = id
		}
	}
	return id
}

// Len reports the number of nodes excluding the sentinel.
func (a *Arena) Len() int { return len(a.kinds) - 1 }

// Kind returns the node's kind, or KindInvalid for NoNodeID.
func (a *Arena) Kind(id NodeID) Kind {
	if !id.IsValid() || int(id) >= len(a.kinds) {
		return KindInvalid
	}
	return a.kinds[id]
}

// Span returns the node's source span.
func (a *Arena) Span(id NodeID) source.Span {
	if !id.IsValid() || int(id) >= len(a.spans) {
		return source.Span{}
	}
	return a.spans[id]
}

// Flags returns the node's flags.
func (a *Arena) Flags(id NodeID) Flags {
	if !id.IsValid() || int(id) >= len(a.flags) {
		return 0
	}
	return a.flags[id]
}

// SetFlags ORs extra flags onto the node.
func (a *Arena) SetFlags(id NodeID, f Flags) {
	if id.IsValid() && int(id) < len(a.flags) {
		a.flags[id] |= f
	}
}

// ClearFlags removes flags from the node. Used by transforms that strip
// syntax they have lowered away.
func (a *Arena) ClearFlags(id NodeID, f Flags) {
	if id.IsValid() && int(id) < len(a.flags) {
		a.flags[id] &^= f
	}
}

// Op returns the node's operator column.
func (a *Arena) Op(id NodeID) Op {
	if !id.IsValid() || int(id) >= len(a.ops) {
		return OpNone
	}
	return a.ops[id]
}

// SetOp assigns the node's operator column.
func (a *Arena) SetOp(id NodeID, op Op) {
	if id.IsValid() && int(id) < len(a.ops) {
		a.ops[id] = op
	}
}

// Parent returns the node's parent, or NoNodeID for roots.
func (a *Arena) Parent(id NodeID) NodeID {
	if !id.IsValid() || int(id) >= len(a.parents) {
		return NoNodeID
	}
	return a.parents[id]
}

// Atom returns the node's interned text (identifier names, literal text,
// module specifiers).
func (a *Arena) Atom(id NodeID) source.Atom {
	if !id.IsValid() || int(id) >= len(a.atoms) {
		return source.NoAtom
	}
	return a.atoms[id]
}

// SetAtom assigns the node's interned text.
func (a *Arena) SetAtom(id NodeID, atom source.Atom) {
	if id.IsValid() && int(id) < len(a.atoms) {
		a.atoms[id] = atom
	}
}

// Text resolves the node's atom through the interner.
func (a *Arena) Text(id NodeID) string {
	atom := a.Atom(id)
	if !atom.IsValid() {
		return ""
	}
	s, _ := a.Strings.Lookup(atom)
	return s
}

// Children returns the node's ordered children. The slice is owned by the
// arena; callers must not modify it.
func (a *Arena) Children(id NodeID) []NodeID {
	if !id.IsValid() || int(id) >= len(a.children) {
		return nil
	}
	return a.children[id]
}

// Child returns the i-th child, or NoNodeID when absent.
func (a *Arena) Child(id NodeID, i int) NodeID {
	cs := a.Children(id)
	if i < 0 || i >= len(cs) {
		return NoNodeID
	}
	return cs[i]
}

// SetChildren replaces the node's children and reparents them. Used by the
// downleveling transforms.
func (a *Arena) SetChildren(id NodeID, children []NodeID) {
	if !id.IsValid() || int(id) >= len(a.children) {
		return
	}
	a.children[id] = children
	for _, c := range children {
		if c.IsValid() {
			a.parents[c] = id
		}
	}
}

// Number returns a numeric literal's value.
func (a *Arena) Number(id NodeID) float64 {
	return a.numbers[id]
}

// SetNumber records a numeric literal's value.
func (a *Arena) SetNumber(id NodeID, v float64) {
	a.numbers[id] = v
}

// Decorators returns the decorator nodes attached to a declaration.
func (a *Arena) Decorators(id NodeID) []NodeID {
	return a.decorators[id]
}

// SetDecorators attaches decorator nodes to a declaration.
func (a *Arena) SetDecorators(id NodeID, decs []NodeID) {
	if len(decs) == 0 {
		return
	}
	a.decorators[id] = decs
	for _, d := range decs {
		if d.IsValid() {
			a.parents[d] = id
		}
	}
}

// Root returns the source-file root node.
func (a *Arena) Root() NodeID { return a.root }

// SetRoot marks the source-file root node.
func (a *Arena) SetRoot(id NodeID) { a.root = id }

// ForEachChild invokes fn for every valid child of id, in order.
func (a *Arena) ForEachChild(id NodeID, fn func(child NodeID)) {
	for _, c := range a.Children(id) {
		if c.IsValid() {
			fn(c)
		}
	}
}

// Walk visits id and its subtree in depth-first pre-order.
func (a *Arena) Walk(id NodeID, fn func(NodeID) bool) {
	if !id.IsValid() {
		return
	}
	if !fn(id) {
		return
	}
	for _, c := range a.Children(id) {
		a.Walk(c, fn)
	}
}

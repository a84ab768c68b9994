package source

import "sync"

// Atom identifies an interned string. Names, property keys and module
// specifiers all go through the interner so equality is a u32 compare.
type Atom uint32

// NoAtom marks the absence of an interned string.
const NoAtom Atom = 0

// IsValid reports whether the atom refers to an interned string.
func (a Atom) IsValid() bool { return a != NoAtom }

// Interner deduplicates strings and hands out stable Atom handles.
// Atom 0 is reserved for the empty string / NoAtom.
type Interner struct {
	mu    sync.RWMutex
	byID  []string
	index map[string]Atom
}

// NewInterner creates an interner with the NoAtom sentinel pre-seeded.
func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]Atom{"": 0},
	}
}

// Intern returns the atom for s, allocating one if necessary.
// Safe for concurrent use.
func (i *Interner) Intern(s string) Atom {
	i.mu.RLock()
	if id, ok := i.index[s]; ok {
		i.mu.RUnlock()
		return id
	}
	i.mu.RUnlock()

	// Own copy so the atom does not pin the caller's backing buffer.
	cpy := string([]byte(s))

	i.mu.Lock()
	// Double-check: another goroutine may have interned between locks.
	if id, ok := i.index[cpy]; ok {
		i.mu.Unlock()
		return id
	}
	id := Atom(len(i.byID))
	i.byID = append(i.byID, cpy)
	i.index[cpy] = id
	i.mu.Unlock()
	return id
}

// InternBytes interns b as a string.
func (i *Interner) InternBytes(b []byte) Atom {
	return i.Intern(string(b))
}

// Lookup returns the string for an atom, or ("", false) if invalid.
// Safe for concurrent use.
func (i *Interner) Lookup(id Atom) (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if int(id) >= len(i.byID) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup returns the string for an atom and panics if it is invalid.
func (i *Interner) MustLookup(id Atom) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic("source: invalid atom")
	}
	return s
}

// Len returns the number of interned strings, including the sentinel.
func (i *Interner) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.byID)
}

package diag

import (
	"fmt"
	"sort"

	"fortio.org/safecast"
)

// Bag holds a collection of diagnostics with a capacity limit.
type Bag struct {
	items   []*Diagnostic
	maximum uint16
}

// NewBag creates a Bag with a capacity limit.
func NewBag(maximum int) *Bag {
	result, err := safecast.Conv[uint16](maximum)
	if err != nil {
		panic(fmt.Errorf("bag maximum overflow: %w", err))
	}
	return &Bag{
		items:   make([]*Diagnostic, 0, result),
		maximum: result,
	}
}

// Add appends a diagnostic, honoring the limit. Returns false when dropped.
func (b *Bag) Add(d *Diagnostic) bool {
	if d == nil {
		return false
	}
	if len(b.items) >= int(b.maximum) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// HasErrors reports whether any diagnostic has error severity.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// Len returns the number of diagnostics in the bag.
func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns a read-only view of the diagnostics.
// Callers must not modify the returned slice.
func (b *Bag) Items() []*Diagnostic {
	return b.items
}

// Merge appends diagnostics from another bag, growing the limit if needed.
func (b *Bag) Merge(other *Bag) {
	newTotal := len(b.items) + len(other.items)
	newTotalUint16, err := safecast.Conv[uint16](newTotal)
	if err != nil {
		panic(fmt.Errorf("bag merge overflow: %w", err))
	}
	if newTotalUint16 > b.maximum {
		b.maximum = newTotalUint16
	}
	b.items = append(b.items, other.items...)
}

// Sort orders diagnostics by (file, start, end, severity desc, code) so
// output is deterministic regardless of check order.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// Dedup removes diagnostics that repeat an earlier (code, span) pair.
func (b *Bag) Dedup() {
	type key struct {
		code Code
		span string
	}
	seen := make(map[key]bool, len(b.items))
	newitems := make([]*Diagnostic, 0, len(b.items))
	for _, d := range b.items {
		k := key{d.Code, d.Primary.String()}
		if seen[k] {
			continue
		}
		seen[k] = true
		newitems = append(newitems, d)
	}
	b.items = newitems
}

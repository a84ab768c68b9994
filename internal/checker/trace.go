package checker

import (
	"tyco/internal/solver"
	"tyco/internal/source"
	"tyco/internal/types"
)

// solverTracerAdapter collects solver mismatches for diagnostic rendering.
type solverTracerAdapter struct {
	events []solver.Mismatch
}

func (t *solverTracerAdapter) OnMismatch(m solver.Mismatch) {
	t.events = append(t.events, m)
}

// excess returns the first excess-property event, if any.
func (t *solverTracerAdapter) excess() (types.TypeID, source.Atom, bool) {
	for _, m := range t.events {
		if m.Kind == solver.MismatchExcessProperty {
			return m.Source, m.Property, true
		}
	}
	return types.NoTypeID, source.NoAtom, false
}

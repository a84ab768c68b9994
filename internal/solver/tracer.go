package solver

import (
	"tyco/internal/source"
	"tyco/internal/types"
)

// MismatchKind classifies a failure reason reported to a tracer.
type MismatchKind uint8

const (
	MismatchType MismatchKind = iota
	MismatchPropertyNotFound
	MismatchPropertyType
	MismatchIndexSignature
	MismatchArity
	MismatchLiteral
	MismatchNoUnionMember
	MismatchExcessProperty
	MismatchParamCount
)

// Mismatch is one failure event. Diagnostics re-run a failed check with a
// tracer installed to recover the precise error path.
type Mismatch struct {
	Kind     MismatchKind
	Source   types.TypeID
	Target   types.TypeID
	Property source.Atom
}

// Tracer observes subtype failures. Implementations must be cheap; the
// engine skips all tracer work when none is installed.
type Tracer interface {
	OnMismatch(m Mismatch)
}

// CollectTracer accumulates every mismatch in order.
type CollectTracer struct {
	Events []Mismatch
}

// OnMismatch implements Tracer.
func (t *CollectTracer) OnMismatch(m Mismatch) {
	t.Events = append(t.Events, m)
}

func (c *SubtypeChecker) trace(m Mismatch) {
	if c.Tracer != nil {
		c.Tracer.OnMismatch(m)
	}
}

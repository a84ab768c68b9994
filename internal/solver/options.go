package solver

// AnyPropagationMode controls how `any` behaves during subtype checks.
type AnyPropagationMode uint8

const (
	// AnyAll treats any as top and bottom everywhere (legacy behavior).
	AnyAll AnyPropagationMode = iota
	// AnyTopLevelOnly restricts the any short-circuit to depth zero.
	AnyTopLevelOnly
)

// Options modulate one subtype check. They propagate down the recursion and
// participate in the decision-cache key.
type Options struct {
	// StrictFunctionTypes checks function parameters contravariantly.
	StrictFunctionTypes bool
	// StrictNullChecks treats null/undefined as distinct types.
	StrictNullChecks bool
	// ExactOptionalPropertyTypes keeps implicit undefined out of optional
	// property checks.
	ExactOptionalPropertyTypes bool
	// NoUncheckedIndexedAccess adds undefined to indexed-access reads.
	NoUncheckedIndexedAccess bool
	// DisableMethodBivariance checks method properties contravariantly.
	DisableMethodBivariance bool
	// AllowVoidReturn lets a void-returning target accept any source return.
	AllowVoidReturn bool
	// AllowBivariantRest relaxes rest parameters of any/unknown type.
	AllowBivariantRest bool
	// AllowBivariantParamCount permits a source signature that requires more
	// parameters than the target supplies; it applies to every signature.
	AllowBivariantParamCount bool
	// AnyPropagation selects the any short-circuit mode.
	AnyPropagation AnyPropagationMode
}

// DefaultOptions mirror strict-mode checking.
func DefaultOptions() Options {
	return Options{
		StrictFunctionTypes: true,
		StrictNullChecks:    true,
		AllowVoidReturn:     true,
		AnyPropagation:      AnyAll,
	}
}

// Packed folds the options into a cache-key bitmask.
func (o Options) Packed() uint16 {
	var p uint16
	set := func(bit int, b bool) {
		if b {
			p |= 1 << bit
		}
	}
	set(0, o.StrictFunctionTypes)
	set(1, o.StrictNullChecks)
	set(2, o.ExactOptionalPropertyTypes)
	set(3, o.NoUncheckedIndexedAccess)
	set(4, o.DisableMethodBivariance)
	set(5, o.AllowVoidReturn)
	set(6, o.AllowBivariantRest)
	set(7, o.AllowBivariantParamCount)
	set(8, o.AnyPropagation == AnyTopLevelOnly)
	return p
}

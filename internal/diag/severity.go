package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevSuggestion is for optional improvements the emitter may surface.
	SevSuggestion Severity = iota
	// SevWarning is for warning diagnostics.
	SevWarning
	// SevError is for diagnostics that make the program ill-formed.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevSuggestion:
		return "SUGGESTION"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

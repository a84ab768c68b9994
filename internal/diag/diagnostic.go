package diag

import "tyco/internal/source"

// Note provides auxiliary context for a diagnostic message. Rendered
// indented under the primary message as "related information".
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic captures a single issue along with optional notes.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

// New constructs a diagnostic.
func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

// NewError constructs an error-severity diagnostic.
func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

// WithNote returns a copy with an extra note attached.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

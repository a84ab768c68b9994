package diag

import "tyco/internal/source"

// Reporter is the minimal contract through which phases hand over
// diagnostics. Implementations: BagReporter, NopReporter.
type Reporter interface {
	Report(code Code, sev Severity, primary source.Span, msg string, notes []Note)
}

// BagReporter stores every reported diagnostic into a Bag.
type BagReporter struct {
	Bag *Bag
}

// Report implements Reporter.
func (r *BagReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r == nil || r.Bag == nil {
		return
	}
	d := New(sev, code, primary, msg)
	d.Notes = notes
	r.Bag.Add(&d)
}

// NopReporter drops every diagnostic.
type NopReporter struct{}

// Report implements Reporter.
func (NopReporter) Report(Code, Severity, source.Span, string, []Note) {}

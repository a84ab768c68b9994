package diagfmt

import (
	"encoding/json"
	"io"

	"tyco/internal/diag"
	"tyco/internal/source"
)

// jsonDiagnostic is the machine-readable wire form.
type jsonDiagnostic struct {
	Code     string     `json:"code"`
	Severity string     `json:"severity"`
	Message  string     `json:"message"`
	File     string     `json:"file"`
	Line     uint32     `json:"line"`
	Col      uint32     `json:"col"`
	EndLine  uint32     `json:"endLine"`
	EndCol   uint32     `json:"endCol"`
	Notes    []jsonNote `json:"notes,omitempty"`
}

type jsonNote struct {
	Message string `json:"message"`
	File    string `json:"file"`
	Line    uint32 `json:"line"`
	Col     uint32 `json:"col"`
}

// JSON renders the bag as a JSON array, one object per diagnostic.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet) error {
	out := make([]jsonDiagnostic, 0, bag.Len())
	for _, d := range bag.Items() {
		start, end := fs.Resolve(d.Primary)
		jd := jsonDiagnostic{
			Code:     d.Code.String(),
			Severity: d.Severity.String(),
			Message:  d.Message,
			File:     fs.Get(d.Primary.File).Path,
			Line:     start.Line,
			Col:      start.Col,
			EndLine:  end.Line,
			EndCol:   end.Col,
		}
		for _, n := range d.Notes {
			ns, _ := fs.Resolve(n.Span)
			jd.Notes = append(jd.Notes, jsonNote{
				Message: n.Msg,
				File:    fs.Get(n.Span.File).Path,
				Line:    ns.Line,
				Col:     ns.Col,
			})
		}
		out = append(out, jd)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

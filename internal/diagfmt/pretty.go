// Package diagfmt renders diagnostics for humans (colored, with source
// context and carets) and for tools (JSON).
package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"tyco/internal/diag"
	"tyco/internal/source"
)

// PrettyOpts tune the human-readable renderer.
type PrettyOpts struct {
	// Color toggles ANSI colors.
	Color bool
	// TabWidth is used when measuring caret alignment. Defaults to 4.
	TabWidth int
}

// visualWidthUpTo measures the rendered width of a line prefix up to a
// 1-based byte column, accounting for tabs and wide runes.
func visualWidthUpTo(s string, byteCol uint32, tabWidth int) int {
	if byteCol <= 1 {
		return 0
	}
	bytePos := 0
	visualPos := 0
	for _, r := range s {
		if bytePos >= int(byteCol-1) {
			break
		}
		if r == '\t' {
			visualPos = (visualPos + tabWidth) / tabWidth * tabWidth
		} else {
			visualPos += runewidth.RuneWidth(r)
		}
		bytePos += len(string(r))
	}
	return visualPos
}

// Pretty formats a sorted bag for terminals. Per diagnostic:
//
//	path:line:col - ERROR TS2322: message
//	  12 | const n: number = "no";
//	     |                   ^~~~~
//	related notes indent under the primary message.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	var (
		errorColor   = color.New(color.FgRed, color.Bold)
		warningColor = color.New(color.FgYellow, color.Bold)
		suggestColor = color.New(color.FgCyan, color.Bold)
		pathColor    = color.New(color.FgWhite, color.Bold)
		codeColor    = color.New(color.FgMagenta)
		lineNumColor = color.New(color.FgBlue)
		caretColor   = color.New(color.FgRed, color.Bold)
	)
	prev := color.NoColor
	defer func() { color.NoColor = prev }()
	color.NoColor = !opts.Color

	tabWidth := opts.TabWidth
	if tabWidth == 0 {
		tabWidth = 4
	}

	for idx, d := range bag.Items() {
		if idx > 0 {
			fmt.Fprintln(w)
		}
		start, end := fs.Resolve(d.Primary)
		f := fs.Get(d.Primary.File)

		sev := d.Severity.String()
		var sevColored string
		switch d.Severity {
		case diag.SevError:
			sevColored = errorColor.Sprint(sev)
		case diag.SevWarning:
			sevColored = warningColor.Sprint(sev)
		default:
			sevColored = suggestColor.Sprint(sev)
		}
		fmt.Fprintf(w, "%s:%d:%d - %s %s: %s\n",
			pathColor.Sprint(f.Path), start.Line, start.Col,
			sevColored, codeColor.Sprint(d.Code.String()), d.Message)

		printContext(w, f, start, end, tabWidth, lineNumColor, caretColor)

		for _, note := range d.Notes {
			ns, _ := fs.Resolve(note.Span)
			nf := fs.Get(note.Span.File)
			fmt.Fprintf(w, "    %s:%d:%d - %s\n", nf.Path, ns.Line, ns.Col, note.Msg)
		}
	}
}

func printContext(w io.Writer, f *source.File, start, end source.LineCol, tabWidth int, lineNumColor, caretColor *color.Color) {
	line := f.GetLine(start.Line)
	if line == "" {
		return
	}
	gutter := fmt.Sprintf("%4d", start.Line)
	fmt.Fprintf(w, "%s | %s\n", lineNumColor.Sprint(gutter), strings.ReplaceAll(line, "\t", strings.Repeat(" ", tabWidth)))

	pad := visualWidthUpTo(line, start.Col, tabWidth)
	width := 1
	if end.Line == start.Line && end.Col > start.Col {
		width = visualWidthUpTo(line, end.Col, tabWidth) - pad
	}
	if width < 1 {
		width = 1
	}
	caret := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(w, "     | %s%s\n", strings.Repeat(" ", pad), caretColor.Sprint(caret))
}

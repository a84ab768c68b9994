package diagfmt

import (
	"strings"
	"testing"

	"tyco/internal/diag"
	"tyco/internal/source"
)

func TestPrettyRendersHeaderAndCaret(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("bad.ts", []byte("const n: number = \"no\";\n"))
	bag := diag.NewBag(10)
	d := diag.NewError(diag.NotAssignable, source.Span{File: id, Start: 18, End: 22},
		`Type '"no"' is not assignable to type 'number'.`)
	bag.Add(&d)

	var sb strings.Builder
	Pretty(&sb, bag, fs, PrettyOpts{Color: false})
	out := sb.String()
	if !strings.Contains(out, "bad.ts:1:19 - ERROR TS2322:") {
		t.Fatalf("header missing:\n%s", out)
	}
	if !strings.Contains(out, "^~~~") {
		t.Fatalf("caret underline missing:\n%s", out)
	}
}

func TestJSONShape(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.ts", []byte("let x;\n"))
	bag := diag.NewBag(10)
	d := diag.NewError(diag.CannotFindName, source.Span{File: id, Start: 0, End: 3}, "Cannot find name 'x'.")
	bag.Add(&d)

	var sb strings.Builder
	if err := JSON(&sb, bag, fs); err != nil {
		t.Fatalf("json: %v", err)
	}
	for _, want := range []string{`"code": "TS2304"`, `"severity": "ERROR"`, `"file": "a.ts"`} {
		if !strings.Contains(sb.String(), want) {
			t.Fatalf("json output missing %s:\n%s", want, sb.String())
		}
	}
}

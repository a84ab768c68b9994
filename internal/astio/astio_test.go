package astio

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vmihailenco/msgpack/v5"

	"tyco/internal/ast"
	"tyco/internal/source"
)

// shape projects an arena into a comparable tree for round-trip diffs.
type shape struct {
	Kind     ast.Kind
	Flags    ast.Flags
	Op       ast.Op
	Text     string
	Number   float64
	Children []shape
}

func shapeOf(a *ast.Arena, id ast.NodeID) shape {
	s := shape{
		Kind:   a.Kind(id),
		Flags:  a.Flags(id),
		Op:     a.Op(id),
		Text:   a.Text(id),
		Number: a.Number(id),
	}
	for _, c := range a.Children(id) {
		if c.IsValid() {
			s.Children = append(s.Children, shapeOf(a, c))
		} else {
			s.Children = append(s.Children, shape{})
		}
	}
	return s
}

func TestEncodeDecodePreservesStructure(t *testing.T) {
	a := ast.NewArena(0, nil)
	sp := source.Span{Start: 0, End: 12}
	decl := a.NewVarDeclaration(sp, a.NewIdent(sp, "x"), ast.NoNodeID, a.NewNumberLit(sp, 42))
	vs := a.NewVarStatement(sp, ast.FlagConst, decl)
	a.SetFlags(vs, ast.FlagExport)
	a.NewSourceFile(sp, vs)

	data, err := Encode(a, "a.ts", "export const x = 42;")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	f, err := Decode(data, nil, 3)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := f.Arena
	if b.Len() != a.Len() {
		t.Fatalf("node count changed: %d vs %d", b.Len(), a.Len())
	}
	root := b.Root()
	if b.Kind(root) != ast.KindSourceFile {
		t.Fatalf("root kind = %v", b.Kind(root))
	}
	stmt := b.Child(root, 0)
	if !b.Flags(stmt).Has(ast.FlagConst | ast.FlagExport) {
		t.Fatalf("statement flags lost: %v", b.Flags(stmt))
	}
	d := b.Child(stmt, 0)
	if got := b.Text(b.DeclName(d)); got != "x" {
		t.Fatalf("binding name = %q", got)
	}
	if got := b.Number(b.DeclInit(d)); got != 42 {
		t.Fatalf("number payload = %v", got)
	}
	if b.Span(d).File != 3 {
		t.Fatalf("decoded spans must adopt the assigned file id")
	}
	if diff := cmp.Diff(shapeOf(a, a.Root()), shapeOf(b, b.Root())); diff != "" {
		t.Fatalf("round-trip changed the tree (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsWrongSchema(t *testing.T) {
	a := ast.NewArena(0, nil)
	a.NewSourceFile(source.Span{})
	data, err := Encode(a, "a.ts", "")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	f, err := Decode(data, nil, 0)
	if err != nil || f == nil {
		t.Fatalf("baseline decode failed: %v", err)
	}
	// Corrupt the schema by re-encoding the payload with another version.
	var p filePayload
	if err := msgpack.Unmarshal(data, &p); err != nil {
		t.Fatalf("re-read payload: %v", err)
	}
	p.Schema = SchemaVersion + 1
	bad, err := msgpack.Marshal(&p)
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if _, err := Decode(bad, nil, 0); !errors.Is(err, ErrSchema) {
		t.Fatalf("wrong schema must be rejected with ErrSchema, got %v", err)
	}
	if _, err := Decode([]byte{0xc1}, nil, 0); err == nil {
		t.Fatalf("garbage payload must not decode")
	}
}

func TestDecodeRejectsOutOfRangeReference(t *testing.T) {
	a := ast.NewArena(0, nil)
	sp := source.Span{}
	a.NewSourceFile(sp, a.NewIdent(sp, "ok"))
	data, err := Encode(a, "a.ts", "")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// A hand-corrupted child index must be caught, not crash.
	var p filePayload
	if err := msgpack.Unmarshal(data, &p); err != nil {
		t.Fatalf("re-read payload: %v", err)
	}
	p.Children[p.Root] = []uint32{uint32(len(p.Kinds))}
	bad, err := msgpack.Marshal(&p)
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if _, err := Decode(bad, nil, 0); err == nil {
		t.Fatalf("out-of-range child reference must not decode")
	}
	corrupted := make([]byte, len(data))
	copy(corrupted, data)
	// Flipping bytes blindly may or may not hit a child slot; accept either
	// a clean error or a successful decode, never a panic.
	for i := range corrupted {
		corrupted[i] ^= 0x01
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("decode panicked on corrupted input: %v", r)
				}
			}()
			_, _ = Decode(corrupted, nil, 0)
		}()
		corrupted[i] ^= 0x01
	}
}

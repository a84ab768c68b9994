// Package astio defines the msgpack interchange format through which
// external parsers feed parsed files into the core. One payload carries a
// file's atom table plus the arena columns; decoding rebuilds the arena
// against the compilation's shared interner.
package astio

import (
	"errors"
	"fmt"
	"os"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"tyco/internal/ast"
	"tyco/internal/source"
)

// SchemaVersion increments whenever the payload layout changes.
const SchemaVersion uint16 = 1

// ErrSchema reports a payload produced by an incompatible writer.
var ErrSchema = errors.New("astio: unsupported schema version")

// filePayload is the wire form of one parsed file.
type filePayload struct {
	Schema uint16   `msgpack:"schema"`
	Path   string   `msgpack:"path"`
	Text   string   `msgpack:"text"`
	Atoms  []string `msgpack:"atoms"`

	Kinds    []uint8       `msgpack:"kinds"`
	Flags    []uint32      `msgpack:"flags"`
	Ops      []uint8       `msgpack:"ops"`
	Starts   []uint32      `msgpack:"starts"`
	Ends     []uint32      `msgpack:"ends"`
	Atom     []uint32      `msgpack:"atom"`
	Children [][]uint32    `msgpack:"children"`
	Numbers  map[uint32]float64 `msgpack:"numbers"`
	Decor    map[uint32][]uint32 `msgpack:"decorators"`
	Root     uint32        `msgpack:"root"`
}

// File couples a decoded arena with its source registration.
type File struct {
	Arena *ast.Arena
	Path  string
	Text  string
}

// Encode serializes a file's arena. The atom table is rebuilt locally so
// payloads stay self-contained regardless of what else the shared interner
// holds.
func Encode(a *ast.Arena, path, text string) ([]byte, error) {
	n := a.Len() + 1
	p := filePayload{
		Schema:   SchemaVersion,
		Path:     path,
		Text:     text,
		Kinds:    make([]uint8, n),
		Flags:    make([]uint32, n),
		Ops:      make([]uint8, n),
		Starts:   make([]uint32, n),
		Ends:     make([]uint32, n),
		Atom:     make([]uint32, n),
		Children: make([][]uint32, n),
		Numbers:  make(map[uint32]float64),
		Decor:    make(map[uint32][]uint32),
		Root:     uint32(a.Root()),
	}
	// Local atom table: remap every referenced atom to a dense index.
	remap := map[source.Atom]uint32{source.NoAtom: 0}
	p.Atoms = []string{""}
	atomOf := func(at source.Atom) uint32 {
		if idx, ok := remap[at]; ok {
			return idx
		}
		s, _ := a.Strings.Lookup(at)
		idx, err := safecast.Conv[uint32](len(p.Atoms))
		if err != nil {
			panic(fmt.Errorf("atom table overflow: %w", err))
		}
		p.Atoms = append(p.Atoms, s)
		remap[at] = idx
		return idx
	}
	for i := 1; i < n; i++ {
		id := ast.NodeID(uint32(i)) //nolint:gosec // bounded by arena length
		p.Kinds[i] = uint8(a.Kind(id))
		p.Flags[i] = uint32(a.Flags(id))
		p.Ops[i] = uint8(a.Op(id))
		sp := a.Span(id)
		p.Starts[i] = sp.Start
		p.Ends[i] = sp.End
		p.Atom[i] = atomOf(a.Atom(id))
		kids := a.Children(id)
		if len(kids) > 0 {
			out := make([]uint32, len(kids))
			for j, k := range kids {
				out[j] = uint32(k)
			}
			p.Children[i] = out
		}
		if a.Kind(id) == ast.KindNumberLit {
			p.Numbers[uint32(id)] = a.Number(id)
		}
		if decs := a.Decorators(id); len(decs) > 0 {
			out := make([]uint32, len(decs))
			for j, d := range decs {
				out[j] = uint32(d)
			}
			p.Decor[uint32(id)] = out
		}
	}
	return msgpack.Marshal(&p)
}

// Decode rebuilds an arena from a payload, interning atoms into strings
// (the compilation-wide interner; nil allocates a fresh one).
func Decode(data []byte, strings *source.Interner, fileID source.FileID) (*File, error) {
	var p filePayload
	if err := msgpack.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("astio: decode: %w", err)
	}
	if p.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchema, p.Schema, SchemaVersion)
	}
	n := len(p.Kinds)
	if n == 0 || len(p.Flags) != n || len(p.Ops) != n || len(p.Starts) != n ||
		len(p.Ends) != n || len(p.Atom) != n || len(p.Children) != n {
		return nil, errors.New("astio: column length mismatch")
	}

	lenN, err := safecast.Conv[uint](n)
	if err != nil {
		return nil, fmt.Errorf("astio: node count overflow: %w", err)
	}
	a := ast.NewArena(lenN, strings)
	atomMap := make([]source.Atom, len(p.Atoms))
	for i, s := range p.Atoms {
		atomMap[i] = a.Strings.Intern(s)
	}

	checkNode := func(raw uint32) (ast.NodeID, error) {
		if int(raw) >= n {
			return ast.NoNodeID, fmt.Errorf("astio: node reference %d out of range", raw)
		}
		return ast.NodeID(raw), nil
	}

	for i := 1; i < n; i++ {
		kids := make([]ast.NodeID, len(p.Children[i]))
		for j, raw := range p.Children[i] {
			id, err := checkNode(raw)
			if err != nil {
				return nil, err
			}
			kids[j] = id
		}
		span := source.Span{File: fileID, Start: p.Starts[i], End: p.Ends[i]}
		id := a.New(ast.Kind(p.Kinds[i]), span, kids...)
		a.SetFlags(id, ast.Flags(p.Flags[i]))
		a.SetOp(id, ast.Op(p.Ops[i]))
		if int(p.Atom[i]) < len(atomMap) {
			a.SetAtom(id, atomMap[p.Atom[i]])
		}
	}
	for raw, v := range p.Numbers {
		id, err := checkNode(raw)
		if err != nil {
			return nil, err
		}
		a.SetNumber(id, v)
	}
	for raw, decs := range p.Decor {
		id, err := checkNode(raw)
		if err != nil {
			return nil, err
		}
		out := make([]ast.NodeID, len(decs))
		for j, d := range decs {
			did, err := checkNode(d)
			if err != nil {
				return nil, err
			}
			out[j] = did
		}
		a.SetDecorators(id, out)
	}
	root, err := checkNode(p.Root)
	if err != nil {
		return nil, err
	}
	a.SetRoot(root)
	return &File{Arena: a, Path: p.Path, Text: p.Text}, nil
}

// Load reads and decodes a .tyast payload from disk.
func Load(path string, strings *source.Interner, fileID source.FileID) (*File, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, strings, fileID)
}

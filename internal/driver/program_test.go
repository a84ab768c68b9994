package driver

import (
	"context"
	"strings"
	"testing"

	"tyco/internal/ast"
	"tyco/internal/diag"
	"tyco/internal/project"
	"tyco/internal/source"
)

func mkExportBar(strs *source.Interner) *ast.Arena {
	a := ast.NewArena(0, strs)
	sp := source.Span{}
	decl := a.NewVarDeclaration(sp, a.NewIdent(sp, "bar"), ast.NoNodeID, a.NewNumberLit(sp, 42))
	vs := a.NewVarStatement(sp, ast.FlagConst, decl)
	a.SetFlags(vs, ast.FlagExport)
	a.NewSourceFile(sp, vs)
	return a
}

func mkBadAssignment(strs *source.Interner) *ast.Arena {
	a := ast.NewArena(0, strs)
	sp := source.Span{}
	numType := a.NewKeywordType(sp, ast.OpNumberKeyword)
	decl := a.NewVarDeclaration(sp, a.NewIdent(sp, "n"), numType, a.NewStringLit(sp, "no"))
	a.NewSourceFile(sp, a.NewVarStatement(sp, ast.FlagConst, decl))
	return a
}

func TestProgramCheckAndEmit(t *testing.T) {
	p := NewProgram(project.DefaultOptions())
	p.AddFile("bar.ts", "export const bar = 42;", mkExportBar(p.Strings))
	p.AddFile("bad.ts", `const n: number = "no";`, mkBadAssignment(p.Strings))

	results, err := p.Check(context.Background())
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected two results, got %d", len(results))
	}
	if results[0].Bag.HasErrors() {
		t.Fatalf("bar.ts should be clean")
	}
	found := false
	for _, d := range results[1].Bag.Items() {
		if d.Code == diag.NotAssignable {
			found = true
		}
	}
	if !found {
		t.Fatalf("bad.ts should report TS2322")
	}

	p.Emit(results)
	if !strings.Contains(results[0].Output, `exports.bar = bar;`) {
		t.Fatalf("emit should produce the CommonJS shape:\n%s", results[0].Output)
	}
	// Errors do not block emit unless NoEmitOnError is set.
	if results[1].Output == "" {
		t.Fatalf("emit should proceed for files with errors by default")
	}
}

func TestProgramParallelismIsDeterministic(t *testing.T) {
	run := func(jobs int) []string {
		p := NewProgram(project.DefaultOptions())
		p.Jobs = jobs
		for range 6 {
			p.AddFile("bad.ts", `const n: number = "no";`, mkBadAssignment(p.Strings))
		}
		results, err := p.Check(context.Background())
		if err != nil {
			t.Fatalf("check: %v", err)
		}
		var msgs []string
		for _, r := range results {
			for _, d := range r.Bag.Items() {
				msgs = append(msgs, d.Code.String()+" "+d.Message)
			}
		}
		return msgs
	}
	serial := run(1)
	parallel := run(4)
	if len(serial) != len(parallel) {
		t.Fatalf("diagnostic counts diverge: %d vs %d", len(serial), len(parallel))
	}
	for i := range serial {
		if serial[i] != parallel[i] {
			t.Fatalf("diagnostic order diverges at %d: %q vs %q", i, serial[i], parallel[i])
		}
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := [32]byte{1, 2, 3}
	entry := &CacheEntry{
		OptionsHash: "opts",
		Output:      "var x = 1;\n",
		Diagnostics: []CachedDiagnostic{{Code: 2322, Severity: 2, Message: "nope", Start: 4, End: 9}},
	}
	if err := cache.Put(key, entry); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok := cache.Get(key)
	if !ok {
		t.Fatalf("entry should round-trip")
	}
	if got.Output != entry.Output || len(got.Diagnostics) != 1 || got.Diagnostics[0].Code != 2322 {
		t.Fatalf("entry mismatch: %+v", got)
	}
	if _, ok := cache.Get([32]byte{9}); ok {
		t.Fatalf("missing key should miss")
	}
}

func TestProgramUsesDiskCache(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	run := func() FileResult {
		p := NewProgram(project.DefaultOptions())
		p.Cache = cache
		p.AddFile("bar.ts", "export const bar = 42;", mkExportBar(p.Strings))
		results, err := p.Check(context.Background())
		if err != nil {
			t.Fatalf("check: %v", err)
		}
		p.Emit(results)
		return results[0]
	}
	first := run()
	if first.FromCache {
		t.Fatalf("first run must not hit the cache")
	}
	second := run()
	if !second.FromCache {
		t.Fatalf("second run with identical content should hit the cache")
	}
	if second.Output != first.Output {
		t.Fatalf("cached output must match")
	}
}

// Package driver orchestrates the per-file pipeline: bind → check →
// transform → print. Files fan out across workers; each file is processed
// single-threaded end to end, and diagnostics are post-sorted so output is
// deterministic regardless of scheduling.
package driver

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"tyco/internal/ast"
	"tyco/internal/astio"
	"tyco/internal/binder"
	"tyco/internal/checker"
	"tyco/internal/diag"
	"tyco/internal/printer"
	"tyco/internal/project"
	"tyco/internal/solver"
	"tyco/internal/source"
	"tyco/internal/transform"
	"tyco/internal/types"
)

// FileResult carries everything produced for one file.
type FileResult struct {
	Path     string
	FileID   source.FileID
	Arena    *ast.Arena
	Bind     *binder.Result
	Check    *checker.Result
	Bag      *diag.Bag
	Output   string
	FromCache bool
}

// Program is one compilation: a file set, shared interners and options.
type Program struct {
	FileSet *source.FileSet
	Strings *source.Interner
	Opts    project.Options

	// Jobs caps worker parallelism; 0 means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps the per-file bag.
	MaxDiagnostics int
	// Cache is the optional disk cache for unchanged-file skipping.
	Cache *DiskCache

	files []programFile
}

type programFile struct {
	path  string
	arena *ast.Arena
	id    source.FileID
}

// NewProgram creates an empty program.
func NewProgram(opts project.Options) *Program {
	strings := source.NewInterner()
	return &Program{
		FileSet:        source.NewFileSet(),
		Strings:        strings,
		Opts:           opts,
		MaxDiagnostics: 100,
	}
}

// AddFile registers a parsed arena under a path. The text is registered
// with the file set so diagnostics resolve to line/column positions.
func (p *Program) AddFile(path, text string, arena *ast.Arena) source.FileID {
	id := p.FileSet.Add(path, []byte(text), source.FileVirtual)
	p.files = append(p.files, programFile{path: path, arena: arena, id: id})
	return id
}

// LoadSerialized reads a .tyast payload produced by an external parser.
func (p *Program) LoadSerialized(path string) (source.FileID, error) {
	f, err := astio.Load(path, p.Strings, 0)
	if err != nil {
		return 0, err
	}
	id := p.FileSet.Add(f.Path, []byte(f.Text), 0)
	// Re-decode spans against the real file id.
	data, err := astio.Encode(f.Arena, f.Path, f.Text)
	if err != nil {
		return 0, err
	}
	f, err = astio.Decode(data, p.Strings, id)
	if err != nil {
		return 0, err
	}
	p.files = append(p.files, programFile{path: f.Path, arena: f.Arena, id: id})
	return id, nil
}

// Check runs the pipeline over every file, fanning out across workers. Symbol
// and type interners are per file, per the single-threaded-per-unit rule, and
// so is the solver decision cache: each file gets a fresh one, and decisions
// are not shared between files.
func (p *Program) Check(ctx context.Context) ([]FileResult, error) {
	jobs := p.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]FileResult, len(p.files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(p.files), 1)))
	for i, f := range p.files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = p.checkOne(f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i := range results {
		results[i].Bag.Sort()
	}
	return results, nil
}

func (p *Program) checkOne(f programFile) FileResult {
	res := FileResult{Path: f.path, FileID: f.id, Arena: f.arena}
	res.Bag = diag.NewBag(p.MaxDiagnostics)

	// Unchanged files short-circuit through the disk cache.
	file := p.FileSet.Get(f.id)
	if p.Cache != nil {
		if entry, ok := p.Cache.Get(file.Hash); ok && entry.OptionsHash == p.optionsHash() {
			res.FromCache = true
			for _, d := range entry.Diagnostics {
				restored := d.toDiagnostic(f.id)
				res.Bag.Add(&restored)
			}
			res.Output = entry.Output
			return res
		}
	}

	res.Bind = binder.Bind(f.arena)
	in := types.NewInterner(p.Strings)
	res.Check = checker.Check(f.arena, res.Bind, in, p.Opts, solver.NewCache(), res.Bag)
	return res
}

// Emit runs transforms and the printer for every checked file. Files with
// error diagnostics skip emit when NoEmitOnError is set.
func (p *Program) Emit(results []FileResult) {
	for i := range results {
		r := &results[i]
		if r.FromCache && r.Output != "" {
			continue
		}
		if p.Opts.NoEmitOnError && r.Bag.HasErrors() {
			continue
		}
		if r.Bind == nil {
			continue
		}
		transform.Apply(&transform.Context{Arena: r.Arena, Bind: r.Bind, Opts: p.Opts})
		r.Output = printer.Print(r.Arena, printer.Options{})
		if p.Cache != nil {
			file := p.FileSet.Get(r.FileID)
			entry := CacheEntry{
				Schema:      cacheSchemaVersion,
				OptionsHash: p.optionsHash(),
				Output:      r.Output,
			}
			for _, d := range r.Bag.Items() {
				entry.Diagnostics = append(entry.Diagnostics, fromDiagnostic(d))
			}
			_ = p.Cache.Put(file.Hash, &entry)
		}
	}
}

// optionsHash folds the semantics-affecting options into the cache key.
func (p *Program) optionsHash() string {
	o := p.Opts
	return fmt.Sprintf("%v|%v|%v|%v|%v|%d|%d|%v|%v",
		o.StrictNullChecks, o.StrictFunctionTypes, o.NoImplicitAny,
		o.ExactOptionalPropertyTypes, o.NoUncheckedIndexedAccess,
		o.Target, o.Module, o.ExperimentalDecorators, o.EmitDecoratorMetadata)
}

package project

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
)

// Manifest is the tyco.toml layout:
//
//	[project]
//	name = "app"
//	inputs = ["src/main.tyast"]
//
//	[compiler]
//	strict_null_checks = true
//	target = "es2020"
//	module = "commonjs"
type Manifest struct {
	Project  ProjectSection `toml:"project"`
	Compiler Options        `toml:"compiler"`
}

// ProjectSection names the project and lists its serialized-AST inputs.
type ProjectSection struct {
	Name   string   `toml:"name"`
	Inputs []string `toml:"inputs"`
}

// ErrProjectSectionMissing indicates [project] is absent from the manifest.
var ErrProjectSectionMissing = errors.New("missing [project]")

// Load parses a tyco.toml manifest. Compiler options default to the strict
// configuration; only keys present in the file override.
func Load(path string) (Manifest, error) {
	m := Manifest{Compiler: DefaultOptions()}
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("project") {
		return Manifest{}, fmt.Errorf("%s: %w", path, ErrProjectSectionMissing)
	}
	m.Compiler.Normalize()
	return m, nil
}

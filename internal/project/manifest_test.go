package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tyco.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, `
[project]
name = "demo"
inputs = ["src/main.tyast"]

[compiler]
strict_null_checks = false
target = "es5"
module = "commonjs"
`)
	m, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Project.Name != "demo" || len(m.Project.Inputs) != 1 {
		t.Fatalf("project section mismatch: %+v", m.Project)
	}
	if m.Compiler.StrictNullChecks {
		t.Fatalf("explicit false must override the default")
	}
	if m.Compiler.Target != ES5 || m.Compiler.Module != ModuleCommonJS {
		t.Fatalf("target/module not normalized: %+v", m.Compiler)
	}
	// Untouched options keep strict defaults.
	if !m.Compiler.StrictFunctionTypes {
		t.Fatalf("unset options must keep defaults")
	}
}

func TestLoadManifestRequiresProject(t *testing.T) {
	path := writeManifest(t, `[compiler]`+"\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("manifest without [project] must fail")
	}
}

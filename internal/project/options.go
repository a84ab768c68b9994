// Package project loads the tyco.toml manifest: the compiler options record
// and the project file list the driver feeds into the pipeline.
package project

// ScriptTarget selects the emitted ECMAScript edition.
type ScriptTarget uint8

const (
	ES3 ScriptTarget = iota
	ES5
	ES2015
	ES2016
	ES2017
	ES2018
	ES2019
	ES2020
	ES2021
	ES2022
	ESNext
)

var targetNames = map[string]ScriptTarget{
	"es3": ES3, "es5": ES5, "es2015": ES2015, "es6": ES2015,
	"es2016": ES2016, "es2017": ES2017, "es2018": ES2018, "es2019": ES2019,
	"es2020": ES2020, "es2021": ES2021, "es2022": ES2022, "esnext": ESNext,
}

func (t ScriptTarget) String() string {
	for name, v := range targetNames {
		if v == t && name != "es6" {
			return name
		}
	}
	return "esnext"
}

// ModuleKind selects the emitted module system.
type ModuleKind uint8

const (
	ModuleNone ModuleKind = iota
	ModuleCommonJS
	ModuleES
	ModuleAMD
	ModuleUMD
	ModuleSystem
)

var moduleNames = map[string]ModuleKind{
	"none": ModuleNone, "commonjs": ModuleCommonJS, "es": ModuleES,
	"esnext": ModuleES, "amd": ModuleAMD, "umd": ModuleUMD, "system": ModuleSystem,
}

// Options is the compiler-options record consumed by the checker and the
// transform pipeline.
type Options struct {
	StrictNullChecks           bool `toml:"strict_null_checks"`
	StrictFunctionTypes        bool `toml:"strict_function_types"`
	NoImplicitAny              bool `toml:"no_implicit_any"`
	ExactOptionalPropertyTypes bool `toml:"exact_optional_property_types"`
	NoUncheckedIndexedAccess   bool `toml:"no_unchecked_indexed_access"`
	ExperimentalDecorators     bool `toml:"experimental_decorators"`
	EmitDecoratorMetadata      bool `toml:"emit_decorator_metadata"`
	NoEmitOnError              bool `toml:"no_emit_on_error"`

	Target ScriptTarget `toml:"-"`
	Module ModuleKind   `toml:"-"`

	// Lib lists library-declaration identifiers resolved by the driver.
	Lib []string `toml:"lib"`

	// TargetName / ModuleName carry the raw manifest strings.
	TargetName string `toml:"target"`
	ModuleName string `toml:"module"`
}

// DefaultOptions mirror a strict modern configuration.
func DefaultOptions() Options {
	return Options{
		StrictNullChecks:    true,
		StrictFunctionTypes: true,
		NoImplicitAny:       true,
		Target:              ES2020,
		Module:              ModuleCommonJS,
	}
}

// Normalize resolves the raw target/module strings.
func (o *Options) Normalize() {
	if o.TargetName != "" {
		if t, ok := targetNames[o.TargetName]; ok {
			o.Target = t
		}
	}
	if o.ModuleName != "" {
		if m, ok := moduleNames[o.ModuleName]; ok {
			o.Module = m
		}
	}
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tyco/internal/diag"
	"tyco/internal/diagfmt"
	"tyco/internal/driver"
	"tyco/internal/project"
)

var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Bind and type-check serialized ASTs",
	Long: `Check loads .tyast payloads (listed on the command line or in the
project manifest), runs the binder and checker over each, and prints the
collected diagnostics. Exit status 1 when any error-severity diagnostic
was reported.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		prog, _, err := buildProgram(cmd, args)
		if err != nil {
			return err
		}
		results, err := prog.Check(context.Background())
		if err != nil {
			return err
		}
		merged := diag.NewBag(prog.MaxDiagnostics * max(len(results), 1))
		for _, r := range results {
			merged.Merge(r.Bag)
		}
		merged.Sort()

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			if err := diagfmt.JSON(os.Stdout, merged, prog.FileSet); err != nil {
				return err
			}
		} else {
			diagfmt.Pretty(os.Stdout, merged, prog.FileSet, diagfmt.PrettyOpts{Color: useColor(cmd)})
		}
		if merged.HasErrors() {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().Bool("json", false, "emit diagnostics as JSON")
}

// buildProgram assembles a Program from explicit inputs or the manifest.
func buildProgram(cmd *cobra.Command, args []string) (*driver.Program, project.Manifest, error) {
	manifestPath, _ := cmd.Flags().GetString("project")
	var manifest project.Manifest
	inputs := args
	opts := project.DefaultOptions()
	if m, err := project.Load(manifestPath); err == nil {
		manifest = m
		opts = m.Compiler
		if len(inputs) == 0 {
			inputs = m.Project.Inputs
		}
	} else if len(args) == 0 {
		return nil, manifest, fmt.Errorf("no inputs: %w", err)
	}

	prog := driver.NewProgram(opts)
	if jobs, _ := cmd.Flags().GetInt("jobs"); jobs > 0 {
		prog.Jobs = jobs
	}
	if maxDiags, _ := cmd.Flags().GetInt("max-diagnostics"); maxDiags > 0 {
		prog.MaxDiagnostics = maxDiags
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); !noCache {
		if cache, err := driver.OpenDiskCache("tyco"); err == nil {
			prog.Cache = cache
		}
	}
	for _, input := range inputs {
		if _, err := prog.LoadSerialized(input); err != nil {
			return nil, manifest, fmt.Errorf("%s: %w", input, err)
		}
	}
	return prog, manifest, nil
}

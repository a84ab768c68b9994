package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tyco/internal/diagfmt"
)

var emitCmd = &cobra.Command{
	Use:   "emit [files...]",
	Short: "Check, transform and print JavaScript output",
	RunE: func(cmd *cobra.Command, args []string) error {
		prog, _, err := buildProgram(cmd, args)
		if err != nil {
			return err
		}
		results, err := prog.Check(context.Background())
		if err != nil {
			return err
		}
		prog.Emit(results)

		outDir, _ := cmd.Flags().GetString("out-dir")
		hadErrors := false
		for _, r := range results {
			if r.Bag.HasErrors() {
				hadErrors = true
				diagfmt.Pretty(os.Stderr, r.Bag, prog.FileSet, diagfmt.PrettyOpts{Color: useColor(cmd)})
			}
			if r.Output == "" {
				continue
			}
			if outDir == "" {
				fmt.Print(r.Output)
				continue
			}
			name := strings.TrimSuffix(filepath.Base(r.Path), filepath.Ext(r.Path)) + ".js"
			target := filepath.Join(outDir, name)
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(target, []byte(r.Output), 0o644); err != nil {
				return err
			}
		}
		if hadErrors {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	emitCmd.Flags().String("out-dir", "", "write output files here instead of stdout")
}

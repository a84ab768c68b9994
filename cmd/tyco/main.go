package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tyco/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "tyco",
	Short: "TypeScript semantic engine",
	Long:  "tyco binds, type-checks and downlevels parsed TypeScript files (.tyast payloads produced by an external parser)",
}

func main() {
	rootCmd.Version = version.VersionString()
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(emitCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().Int("jobs", 0, "worker parallelism (0 = GOMAXPROCS)")
	rootCmd.PersistentFlags().String("project", "tyco.toml", "path to the project manifest")
	rootCmd.PersistentFlags().Bool("no-cache", false, "disable the on-disk result cache")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// useColor resolves the --color tri-state against TTY detection.
func useColor(cmd *cobra.Command) bool {
	mode, _ := cmd.Flags().GetString("color")
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return term.IsTerminal(int(os.Stdout.Fd()))
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tyco/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the toolchain version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("tyco", version.VersionString())
	},
}

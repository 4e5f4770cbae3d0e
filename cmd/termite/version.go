package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/caffeineduck/termite/packages"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of termite and its interpreter",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "termite %s (go.starlark.net %s)\n", version(), packages.InterpreterVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func version() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

package main

import (
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		bold := color.New(color.Bold)

		bold.Fprint(out, "quotegen ")
		color.New(color.FgGreen).Fprintln(out, Version)
		color.New(color.Faint).Fprintf(out, "commit %s, built %s, %s\n", Commit, BuildTime, runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

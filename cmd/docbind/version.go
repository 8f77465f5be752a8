package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.gitRelease=...".
var (
	gitRelease    = "dev"
	gitCommit     = "unknown"
	gitCommitDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "docbind %s\n", gitRelease)
		fmt.Fprintf(out, "  Go:     %s\n", runtime.Version())
		fmt.Fprintf(out, "  Commit: %s\n", gitCommit)
		fmt.Fprintf(out, "  Date:   %s\n", gitCommitDate)
	},
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the treediff command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "treediff",
		Short: "Report the differences between two directory trees",
		Long: `treediff compares two directory trees and lists the files that were
removed, modified or added between them. File contents are compared byte
for byte, or by BLAKE3 digest with --comparison hash.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	AddGlobalFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(NewCompareCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

package cli

import (
	"fmt"

	"github.com/sdejongh/dupnorris/pkg/models"
	"github.com/spf13/cobra"
)

// NewRootCommand creates the dupnorris command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dupnorris",
		Short: "Duplicate file finder",
		Long: `dupnorris finds duplicate files across directory trees and reports
which directories share them. Files can be matched by name, by content,
or both.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	AddGlobalFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(NewFindCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// NormalizeArgs moves mode tokens behind "--" so that "-name" and "-data"
// reach the find command as arguments instead of being parsed as flags.
// Tokens keep their relative order and stay ahead of any arguments that
// already followed "--".
func NormalizeArgs(args []string) []string {
	var head, tokens, tail []string
	for i, arg := range args {
		if arg == "--" {
			tail = args[i+1:]
			break
		}
		if models.IsModeToken(arg) {
			tokens = append(tokens, arg)
			continue
		}
		head = append(head, arg)
	}

	if len(tokens) == 0 {
		return args
	}

	out := make([]string, 0, len(args)+1)
	out = append(out, head...)
	out = append(out, "--")
	out = append(out, tokens...)
	return append(out, tail...)
}

package cli

import (
	"github.com/spf13/cobra"
)

// sslModes contains valid PostgreSQL SSL modes for shell completion.
var sslModes = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}

// completeSSLModes provides shell completion for --sslmode.
func completeSSLModes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return sslModes, cobra.ShellCompDirectiveNoFileComp
}

// completeInputFile completes GIO documents by extension.
func completeInputFile(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"xml", "gml"}, cobra.ShellCompDirectiveFilterFileExt
}

// registerConnectionCompletions wires completion functions for connection flags.
func registerConnectionCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("sslmode", completeSSLModes)
}

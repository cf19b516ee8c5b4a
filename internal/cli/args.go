package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RequireInputFile validates that exactly one input_file argument is provided.
// Returns a helpful error message with usage and examples if missing or too many.
func RequireInputFile(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <input_file>

Usage: %s

Example:
  %s ./windturbines.gml --name "Windturbines" --regeling-expression /akn/nl/act/gm0363/2024/omgevingsplan/nld@2024-03-01;1`,
			cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d", len(args))
	}
	return nil
}

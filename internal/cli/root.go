package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gioimport",
	Short: "Import GIO documents into a PostGIS database",
	Long: `gioimport reads a geographic information object (GIO) XML document and
writes its geometries, locations, the group location that bundles them and
one informatieobjectversie row into the target database.

Geometries and locations already present (matched on their source id) are
reused, so importing the same document twice creates no duplicate geometries.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or missing input file
  11 - Database connection failed
  13 - A database statement failed
  20 - Malformed GIO document
  21 - Referenced row not found (regulation version, authority, ...)
  22 - Unsupported geometry type
  23 - Unparseable optional field (accuracy, currency date)`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout, os.Stderr)
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for gioimport")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

// clearEnv blanks every variable the CLI reads so tests see only what they set.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PGHOST", "PGPORT", "PGUSER", "PGPASSWORD", "PGDATABASE", "PGSSLMODE",
		"DATABASE_URL", "GIOIMPORT_CONNECTION",
		"AZURE_TENANT_ID", "AZURE_CLIENT_ID", "AZURE_CLIENT_SECRET", "AWS_REGION",
		"GIOIMPORT_NAME", "GIOIMPORT_REGELING_EXPRESSION", "GIOIMPORT_SCHEMA",
		"GIOIMPORT_CODE_SCHEMA", "GIOIMPORT_SINGLE_TRANSACTION",
		"GIOIMPORT_METRICS_TEXTFILE", "GIOIMPORT_TIMEOUT",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("USER", "tester")
}

// newTestImportCmd returns a fresh import command bound to reset importFlags,
// reading gioimport.yaml from dir.
func newTestImportCmd(t *testing.T, dir string) *cobra.Command {
	t.Helper()
	importFlags = importFlagValues{}
	cmd := &cobra.Command{Use: "import", RunE: runImport}
	registerImportFlags(cmd, &importFlags)
	cmd.Flags().BoolP("verbose", "v", false, "")
	if err := cmd.Flags().Set("config-dir", dir); err != nil {
		t.Fatal(err)
	}
	return cmd
}

func writeYAML(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "gioimport.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func mustSet(t *testing.T, cmd *cobra.Command, name, value string) {
	t.Helper()
	if err := cmd.Flags().Set(name, value); err != nil {
		t.Fatalf("set --%s: %v", name, err)
	}
}

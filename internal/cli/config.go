package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vvka-141/gioimport/internal/config"
	"github.com/vvka-141/gioimport/internal/db"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as gioimport.yaml",
	Long: `Config resolves flags, environment variables, .env and gioimport.yaml the
same way import does and prints the result in gioimport.yaml format.
Passwords and client secrets are never printed.

Examples:
  # Inspect what an import would connect to
  gioimport config

  # Start a gioimport.yaml from the current environment
  gioimport config --sslmode require > gioimport.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

type configFlagValues struct {
	conn      connectionFlags
	configDir string
}

var configFlags configFlagValues

func init() {
	rootCmd.AddCommand(configCmd)
	registerConnectionFlags(configCmd, &configFlags.conn)
	configCmd.Flags().StringVar(&configFlags.configDir, "config-dir", ".",
		"Directory containing "+config.ConfigFileName)
}

func runConfig(cmd *cobra.Command, args []string) error {
	effective, err := effectiveConfig(configFlags)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(effective)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// effectiveConfig merges the loaded gioimport.yaml with resolved connection settings.
func effectiveConfig(flags configFlagValues) (*config.ProjectConfig, error) {
	projectCfg, err := loadProjectConfig(flags.configDir)
	if err != nil {
		return nil, err
	}
	if projectCfg == nil {
		projectCfg = &config.ProjectConfig{}
	}

	connConfig, err := resolveConnectionFromFlags(flags.conn, projectCfg)
	if err != nil {
		return nil, err
	}

	out := *projectCfg
	out.Connection = config.ConnectionConfig{
		Host:           connConfig.Host,
		Port:           connConfig.Port,
		Username:       connConfig.Username,
		Database:       connConfig.Database,
		SSLMode:        connConfig.SSLMode,
		SSLCert:        connConfig.SSLCert,
		SSLKey:         connConfig.SSLKey,
		SSLRootCert:    connConfig.SSLRootCert,
		AuthMethod:     db.FormatAuthMethod(connConfig.AuthMethod),
		AzureTenantID:  connConfig.AzureTenantID,
		AzureClientID:  connConfig.AzureClientID,
		AWSRegion:      connConfig.AWSRegion,
		GoogleInstance: connConfig.GoogleInstance,
	}
	return &out, nil
}

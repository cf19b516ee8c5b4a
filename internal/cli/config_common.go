package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/gioimport/internal/config"
	"github.com/vvka-141/gioimport/internal/db"
	"github.com/vvka-141/gioimport/pkg/gioimport"
)

// connectionFlags holds the common connection-related flag values.
type connectionFlags struct {
	connection     string
	host           string
	port           int
	username       string
	database       string
	sslMode        string
	azure          bool
	azureTenantID  string
	azureClientID  string
	aws            bool
	awsRegion      string
	google         bool
	googleInstance string
}

// registerConnectionFlags binds the PostgreSQL-style connection flags to f.
func registerConnectionFlags(cmd *cobra.Command, f *connectionFlags) {
	cmd.Flags().StringVar(&f.connection, "connection", "",
		"PostgreSQL connection string (URI or ADO.NET format).\n"+
			"Mutually exclusive with granular flags (--host, --port, --username).\n"+
			"Alternative: GIOIMPORT_CONNECTION or DATABASE_URL environment variable.\n"+
			"Example: postgresql://importer@localhost:5432/ruimtelijk")

	// Precedence: flag > environment variable > gioimport.yaml > default
	cmd.Flags().StringVarP(&f.host, "host", "h", "",
		"PostgreSQL server host\n"+
			"Precedence: --host > $PGHOST > gioimport.yaml > localhost")
	cmd.Flags().IntVarP(&f.port, "port", "p", 0,
		"PostgreSQL server port\n"+
			"Precedence: --port > $PGPORT > gioimport.yaml > 5432")
	cmd.Flags().StringVarP(&f.username, "username", "U", "",
		"PostgreSQL user (default: $PGUSER or current OS user)")
	cmd.Flags().StringVarP(&f.database, "database", "d", "",
		"Target database (overrides the database of a connection string, or $PGDATABASE)")
	cmd.Flags().StringVar(&f.sslMode, "sslmode", "",
		"SSL mode: disable|allow|prefer|require|verify-ca|verify-full\n"+
			"(default: prefer, or $PGSSLMODE)")

	cmd.Flags().BoolVar(&f.azure, "azure", false,
		"Enable Azure Entra ID authentication\n"+
			"Uses DefaultAzureCredential chain (Managed Identity, Azure CLI, etc.)")
	cmd.Flags().StringVar(&f.azureTenantID, "azure-tenant-id", "",
		"Azure AD tenant/directory ID (overrides $AZURE_TENANT_ID)")
	cmd.Flags().StringVar(&f.azureClientID, "azure-client-id", "",
		"Azure AD application/client ID (overrides $AZURE_CLIENT_ID)")

	cmd.Flags().BoolVar(&f.aws, "aws", false,
		"Enable AWS RDS IAM authentication (default AWS credential chain)")
	cmd.Flags().StringVar(&f.awsRegion, "aws-region", "",
		"AWS region of the RDS instance (overrides $AWS_REGION)")

	cmd.Flags().BoolVar(&f.google, "google", false,
		"Enable Google Cloud SQL IAM authentication")
	cmd.Flags().StringVar(&f.googleInstance, "google-instance", "",
		"Cloud SQL instance connection name (project:region:instance)")

	registerConnectionCompletions(cmd)
}

// resolveConnectionFromFlags resolves connection configuration from flags,
// the environment and the project config.
func resolveConnectionFromFlags(flags connectionFlags, projectCfg *config.ProjectConfig) (*gioimport.ConnectionConfig, error) {
	granularFlags := &db.GranularConnFlags{
		Host:     flags.host,
		Port:     flags.port,
		Username: flags.username,
		Database: flags.database,
		SSLMode:  flags.sslMode,
	}

	cloudFlags := &db.CloudFlags{
		Azure:          flags.azure,
		AzureTenantID:  flags.azureTenantID,
		AzureClientID:  flags.azureClientID,
		AWS:            flags.aws,
		AWSRegion:      flags.awsRegion,
		Google:         flags.google,
		GoogleInstance: flags.googleInstance,
	}

	return db.ResolveConnectionParams(flags.connection, granularFlags, cloudFlags, db.LoadFromEnvironment(), projectCfg)
}

// resolveEffectiveTimeout returns the effective timeout, preferring gioimport.yaml if the flag wasn't set.
func resolveEffectiveTimeout(
	cmd *cobra.Command,
	projectCfg *config.ProjectConfig,
	flagTimeout time.Duration,
) (time.Duration, error) {
	if cmd.Flags().Changed("timeout") {
		return flagTimeout, nil
	}
	if s := os.Getenv("GIOIMPORT_TIMEOUT"); s != "" {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid $GIOIMPORT_TIMEOUT %q: %w", s, gioimport.ErrInvalidConfig)
		}
		return parsed, nil
	}
	if projectCfg != nil && projectCfg.Timeout != "" {
		parsed, err := time.ParseDuration(projectCfg.Timeout)
		if err != nil {
			return 0, fmt.Errorf("invalid timeout in %s: %v: %w", config.ConfigFileName, err, gioimport.ErrInvalidConfig)
		}
		return parsed, nil
	}
	return flagTimeout, nil
}

// loadProjectConfig loads .env and the project configuration from dir.
// Returns nil config if gioimport.yaml does not exist (not an error).
func loadProjectConfig(dir string) (*config.ProjectConfig, error) {
	_ = godotenv.Load()

	projectCfg, err := config.Load(dir)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %v: %w", config.ConfigFileName, err, gioimport.ErrInvalidConfig)
	}
	return projectCfg, nil
}

// logConnectionVerbose logs connection details when verbose mode is enabled.
func logConnectionVerbose(logger gioimport.Logger, connConfig *gioimport.ConnectionConfig) {
	logger.Verbose("Connection resolved:")
	logger.Verbose("  Host: %s", connConfig.Host)
	logger.Verbose("  Port: %d", connConfig.Port)
	logger.Verbose("  User: %s", connConfig.Username)
	logger.Verbose("  Database: %s", connConfig.Database)
	logger.Verbose("  SSL Mode: %s", connConfig.SSLMode)
	if connConfig.SSLCert != "" {
		logger.Verbose("  SSL Cert: %s", connConfig.SSLCert)
	}
	if connConfig.SSLRootCert != "" {
		logger.Verbose("  SSL Root Cert: %s", connConfig.SSLRootCert)
	}
	logger.Verbose("  Auth Method: %s", connConfig.AuthMethod)
}

// stringSetting resolves one string setting: flag > environment > yaml.
func stringSetting(cmd *cobra.Command, flagName, flagValue, envName, yamlValue string) string {
	if cmd.Flags().Changed(flagName) {
		return flagValue
	}
	if v := os.Getenv(envName); v != "" {
		return v
	}
	if yamlValue != "" {
		return yamlValue
	}
	return flagValue
}

// boolSetting resolves one boolean setting: flag > environment > yaml.
func boolSetting(cmd *cobra.Command, flagName string, flagValue bool, envName string, yamlValue bool) (bool, error) {
	if cmd.Flags().Changed(flagName) {
		return flagValue, nil
	}
	if v := os.Getenv(envName); v != "" {
		switch v {
		case "1", "true", "TRUE", "True", "yes":
			return true, nil
		case "0", "false", "FALSE", "False", "no":
			return false, nil
		}
		return false, fmt.Errorf("invalid $%s %q: want true or false: %w", envName, v, gioimport.ErrInvalidConfig)
	}
	return yamlValue || flagValue, nil
}

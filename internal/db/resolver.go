package db

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vvka-141/gioimport/internal/config"
	"github.com/vvka-141/gioimport/pkg/gioimport"
)

// GranularConnFlags represents connection parameters from CLI flags.
// These follow PostgreSQL standard flag conventions (-h, -p, -U, -d).
//
// Password is not a flag. Use $PGPASSWORD, ~/.pgpass or a connection
// string with an embedded password.
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty returns true if no connection-related granular flags were provided.
// Database is excluded: -d may override the database of a connection string.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// CloudFlags selects and configures a cloud authentication method.
// At most one of Azure, AWS and Google may be set.
type CloudFlags struct {
	Azure         bool
	AzureTenantID string // Overrides AZURE_TENANT_ID
	AzureClientID string // Overrides AZURE_CLIENT_ID

	AWS       bool
	AWSRegion string // Overrides AWS_REGION

	Google         bool
	GoogleInstance string // project:region:instance
}

func (c *CloudFlags) selected() []gioimport.AuthMethod {
	var methods []gioimport.AuthMethod
	if c.Azure || c.AzureTenantID != "" || c.AzureClientID != "" {
		methods = append(methods, gioimport.AuthMethodAzureEntraID)
	}
	if c.AWS {
		methods = append(methods, gioimport.AuthMethodAWSIAM)
	}
	if c.Google || c.GoogleInstance != "" {
		methods = append(methods, gioimport.AuthMethodGoogleIAM)
	}
	return methods
}

// EnvVars represents PostgreSQL standard environment variables plus the
// cloud SDK variables the connectors read.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGHOST       string
	PGPORT       string
	PGUSER       string
	PGPASSWORD   string
	PGDATABASE   string
	PGSSLMODE    string
	DATABASE_URL string // Full connection string (Heroku/Rails convention)

	// GIOIMPORT_CONNECTION takes precedence over DATABASE_URL.
	GIOIMPORT_CONNECTION string

	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string

	AWS_REGION string
}

// LoadFromEnvironment loads PostgreSQL and cloud provider environment variables.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:               os.Getenv("PGHOST"),
		PGPORT:               os.Getenv("PGPORT"),
		PGUSER:               os.Getenv("PGUSER"),
		PGPASSWORD:           os.Getenv("PGPASSWORD"),
		PGDATABASE:           os.Getenv("PGDATABASE"),
		PGSSLMODE:            os.Getenv("PGSSLMODE"),
		DATABASE_URL:         os.Getenv("DATABASE_URL"),
		GIOIMPORT_CONNECTION: os.Getenv("GIOIMPORT_CONNECTION"),
		AZURE_TENANT_ID:      os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:      os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET:  os.Getenv("AZURE_CLIENT_SECRET"),
		AWS_REGION:           os.Getenv("AWS_REGION"),
	}
}

// HasAzureCredentials returns true if Azure Entra ID environment variables are set.
func (e *EnvVars) HasAzureCredentials() bool {
	return e.AZURE_TENANT_ID != "" || e.AZURE_CLIENT_ID != ""
}

// ResolveConnectionParams resolves connection parameters with PostgreSQL-standard precedence:
//
//  1. --connection flag
//  2. granular flags (-h, -p, -U, -d, --sslmode)
//  3. GIOIMPORT_CONNECTION, then DATABASE_URL, when no granular flag is set
//  4. PG* environment variables
//  5. the connection section of gioimport.yaml
//  6. defaults (localhost:5432, sslmode=prefer)
//
// The authentication method comes from the cloud flags, then the yaml
// auth_method, then the presence of Azure environment variables.
// Supplying both --connection and granular flags is an error.
func ResolveConnectionParams(
	connStringFlag string,
	granularFlags *GranularConnFlags,
	cloudFlags *CloudFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*gioimport.ConnectionConfig, error) {
	if granularFlags == nil {
		granularFlags = &GranularConnFlags{}
	}
	if cloudFlags == nil {
		cloudFlags = &CloudFlags{}
	}
	if envVars == nil {
		envVars = &EnvVars{}
	}

	if connStringFlag != "" && !granularFlags.IsEmpty() {
		return nil, fmt.Errorf(
			"cannot specify both --connection and granular flags (-h, -p, -U)\n"+
				"Choose one approach:\n"+
				"  1. Connection string: --connection \"postgresql://user@localhost:5432/ruimtelijk\"\n"+
				"  2. Granular flags: -h localhost -p 5432 -U myuser -d ruimtelijk\n"+
				"  3. Environment variables: export PGHOST=localhost PGPORT=5432 PGUSER=myuser: %w",
			gioimport.ErrInvalidConfig,
		)
	}

	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	var cfg *gioimport.ConnectionConfig
	var err error
	switch {
	case connStringFlag != "":
		cfg, err = resolveFromConnectionString(connStringFlag, envVars)
	case granularFlags.IsEmpty() && envVars.GIOIMPORT_CONNECTION != "":
		cfg, err = resolveFromConnectionString(envVars.GIOIMPORT_CONNECTION, envVars)
	case granularFlags.IsEmpty() && envVars.DATABASE_URL != "":
		cfg, err = resolveFromConnectionString(envVars.DATABASE_URL, envVars)
	default:
		cfg, err = resolveFromGranularParams(granularFlags, envVars, pc)
	}
	if err != nil {
		return nil, err
	}

	if granularFlags.Database != "" {
		cfg.Database = granularFlags.Database
	}
	if cfg.SSLCert != "" && cfg.SSLKey != "" {
		cfg.AuthMethod = gioimport.AuthMethodCertificate
	}

	if err := applyAuth(cfg, cloudFlags, envVars, pc); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseAuthMethod maps the auth_method values of gioimport.yaml.
func ParseAuthMethod(s string) (gioimport.AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return gioimport.AuthMethodStandard, nil
	case "certificate", "cert", "mtls":
		return gioimport.AuthMethodCertificate, nil
	case "aws", "aws-iam", "aws_iam":
		return gioimport.AuthMethodAWSIAM, nil
	case "google", "google-iam", "google_iam", "gcp":
		return gioimport.AuthMethodGoogleIAM, nil
	case "azure", "azure-entra-id", "entra", "azure_entra_id":
		return gioimport.AuthMethodAzureEntraID, nil
	}
	return gioimport.AuthMethodStandard, fmt.Errorf("unknown auth_method %q: %w", s, gioimport.ErrUnsupportedAuthMethod)
}

// FormatAuthMethod returns the auth_method value ParseAuthMethod maps back to m.
func FormatAuthMethod(m gioimport.AuthMethod) string {
	switch m {
	case gioimport.AuthMethodCertificate:
		return "certificate"
	case gioimport.AuthMethodAWSIAM:
		return "aws"
	case gioimport.AuthMethodGoogleIAM:
		return "google"
	case gioimport.AuthMethodAzureEntraID:
		return "azure"
	}
	return "standard"
}

func applyAuth(cfg *gioimport.ConnectionConfig, flags *CloudFlags, env *EnvVars, pc config.ConnectionConfig) error {
	method := cfg.AuthMethod

	selected := flags.selected()
	switch {
	case len(selected) > 1:
		return fmt.Errorf("choose one of --azure, --aws and --google: %w", gioimport.ErrInvalidConfig)
	case len(selected) == 1:
		method = selected[0]
	case pc.AuthMethod != "":
		m, err := ParseAuthMethod(pc.AuthMethod)
		if err != nil {
			return err
		}
		method = m
	case env.HasAzureCredentials():
		method = gioimport.AuthMethodAzureEntraID
	}
	cfg.AuthMethod = method

	switch method {
	case gioimport.AuthMethodAzureEntraID:
		cfg.AzureTenantID = firstNonEmpty(flags.AzureTenantID, env.AZURE_TENANT_ID, pc.AzureTenantID)
		cfg.AzureClientID = firstNonEmpty(flags.AzureClientID, env.AZURE_CLIENT_ID, pc.AzureClientID)
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	case gioimport.AuthMethodAWSIAM:
		cfg.AWSRegion = firstNonEmpty(flags.AWSRegion, env.AWS_REGION, pc.AWSRegion)
	case gioimport.AuthMethodGoogleIAM:
		cfg.GoogleInstance = firstNonEmpty(flags.GoogleInstance, pc.GoogleInstance)
	}
	return nil
}

// resolveFromConnectionString parses a connection string. PGSSLMODE fills
// in a missing sslmode, following libpq.
func resolveFromConnectionString(connStr string, envVars *EnvVars) (*gioimport.ConnectionConfig, error) {
	cfg, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %v: %w", err, gioimport.ErrInvalidConfig)
	}

	if cfg.SSLMode == "" {
		cfg.SSLMode = firstNonEmpty(envVars.PGSSLMODE, "prefer")
	}
	if cfg.Password == "" {
		cfg.Password = envVars.PGPASSWORD
	}
	return cfg, nil
}

// resolveFromGranularParams builds a ConnectionConfig parameter by parameter:
// flag > environment variable > gioimport.yaml > default.
func resolveFromGranularParams(
	flags *GranularConnFlags,
	envVars *EnvVars,
	pc config.ConnectionConfig,
) (*gioimport.ConnectionConfig, error) {
	cfg := &gioimport.ConnectionConfig{
		AuthMethod:       gioimport.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
		SSLCert:          pc.SSLCert,
		SSLKey:           pc.SSLKey,
		SSLRootCert:      pc.SSLRootCert,
	}

	cfg.Host = firstNonEmpty(flags.Host, envVars.PGHOST, pc.Host, "localhost")

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case envVars.PGPORT != "":
		port, err := strconv.Atoi(envVars.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid $PGPORT value '%s': must be an integer: %w", envVars.PGPORT, gioimport.ErrInvalidConfig)
		}
		cfg.Port = port
	case pc.Port != 0:
		cfg.Port = pc.Port
	default:
		cfg.Port = 5432
	}

	cfg.Username = firstNonEmpty(flags.Username, envVars.PGUSER, pc.Username, os.Getenv("USER"), os.Getenv("USERNAME"))
	cfg.Password = envVars.PGPASSWORD
	cfg.Database = firstNonEmpty(flags.Database, envVars.PGDATABASE, pc.Database, "postgres")
	cfg.SSLMode = firstNonEmpty(flags.SSLMode, envVars.PGSSLMODE, pc.SSLMode, "prefer")

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

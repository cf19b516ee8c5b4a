package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/gioimport/internal/retry"
	"github.com/vvka-141/gioimport/pkg/gioimport"
)

// Connection pool configuration constants. An import issues one statement
// at a time, so the pool stays small.
const (
	DefaultMaxConns        = 2
	DefaultMinConns        = 1
	DefaultMaxConnIdleTime = 30 * time.Minute
)

func configurePool(poolConfig *pgxpool.Config, logger gioimport.Logger) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Verbose("%s: %s", notice.Severity, notice.Message)
	}
}

// StandardConnector implements the Connector interface for password and
// client-certificate authentication with automatic retry on transient failures.
type StandardConnector struct {
	config        *gioimport.ConnectionConfig
	logger        gioimport.Logger
	retryExecutor *retry.Executor
}

// NewStandardConnector creates a new StandardConnector with the given configuration.
func NewStandardConnector(config *gioimport.ConnectionConfig, logger gioimport.Logger) *StandardConnector {
	return &StandardConnector{
		config:        config,
		logger:        logger,
		retryExecutor: retry.ForConnections(logger),
	}
}

// Connect establishes a connection pool using standard authentication with automatic retry.
func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	return connectWithRetry(ctx, c.retryExecutor, c.config, c.logger, func(context.Context) (*pgxpool.Config, error) {
		return parsePoolConfig(BuildConnectionString(c.config))
	})
}

func parsePoolConfig(dsn string) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}
	return poolConfig, nil
}

// connectWithRetry opens and pings a pool, rebuilding the pool
// configuration through build on every attempt.
func connectWithRetry(
	ctx context.Context,
	executor *retry.Executor,
	config *gioimport.ConnectionConfig,
	logger gioimport.Logger,
	build func(context.Context) (*pgxpool.Config, error),
) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	err := executor.Execute(ctx, func(ctx context.Context) error {
		poolConfig, err := build(ctx)
		if err != nil {
			return err
		}
		configurePool(poolConfig, logger)

		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return wrapConnectionError(err, config.Host, config.Port, config.Database)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return wrapConnectionError(err, config.Host, config.Port, config.Database)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// NewConnectorFactory returns a factory creating the Connector matching a
// ConnectionConfig's AuthMethod. logger receives retry warnings and server notices.
func NewConnectorFactory(logger gioimport.Logger) func(*gioimport.ConnectionConfig) (gioimport.Connector, error) {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return func(config *gioimport.ConnectionConfig) (gioimport.Connector, error) {
		switch config.AuthMethod {
		case gioimport.AuthMethodStandard, gioimport.AuthMethodCertificate:
			return NewStandardConnector(config, logger), nil
		case gioimport.AuthMethodAWSIAM:
			return newAWSConnector(config, logger)
		case gioimport.AuthMethodGoogleIAM:
			return newGoogleConnector(config, logger)
		case gioimport.AuthMethodAzureEntraID:
			return newAzureConnector(config, logger)
		default:
			return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, gioimport.ErrUnsupportedAuthMethod)
		}
	}
}

type connectionTarget struct {
	host     string
	port     int
	database string
}

func (t connectionTarget) addr() string {
	return fmt.Sprintf("%s:%d", t.host, t.port)
}

// connectionHints are tried in order; the first whose marker appears in the
// lowercased driver error explains the failure.
var connectionHints = []struct {
	markers []string
	explain func(connectionTarget) string
}{
	{[]string{"connection refused", "actively refused"}, func(t connectionTarget) string {
		return fmt.Sprintf("connection refused to %s\n\n"+
			"Is PostgreSQL running and listening there? Check with: pg_isready -h %s -p %d", t.addr(), t.host, t.port)
	}},
	{[]string{"no such host", "no host"}, func(t connectionTarget) string {
		return fmt.Sprintf(`cannot resolve host "%s"`+"\n\nCheck the spelling of --host and the DNS setup.", t.host)
	}},
	{[]string{"password authentication failed"}, func(t connectionTarget) string {
		return fmt.Sprintf(`password authentication failed for database "%s"`+"\n\n"+
			"Check the user (-U) and PGPASSWORD or ~/.pgpass; cloud logins need --aws, --azure or --google.", t.database)
	}},
	{[]string{"does not exist"}, func(t connectionTarget) string {
		return fmt.Sprintf(`database "%s" does not exist`+"\n\n"+
			"Import into a database that already holds the %s schema with PostGIS enabled.", t.database, gioimport.DefaultSchema)
	}},
	{[]string{"timeout", "timed out"}, func(t connectionTarget) string {
		return fmt.Sprintf("connection timed out to %s\n\n"+
			"The server may be overloaded, or a firewall may drop packets; raise --timeout for slow links.", t.addr())
	}},
	{[]string{"ssl", "tls"}, func(connectionTarget) string {
		return "SSL/TLS connection error\n\n" +
			"Check --sslmode; certificate auth also needs sslcert, sslkey and sslrootcert in the connection string."
	}},
}

// wrapConnectionError adds a hint for common connection failures. The result
// matches gioimport.ErrConnectionFailed and keeps err reachable.
func wrapConnectionError(err error, host string, port int, database string) error {
	msg := strings.ToLower(err.Error())
	target := connectionTarget{host: host, port: port, database: database}

	for _, h := range connectionHints {
		for _, marker := range h.markers {
			if strings.Contains(msg, marker) {
				return fmt.Errorf("%w: %s\n\nOriginal error: %w", gioimport.ErrConnectionFailed, h.explain(target), err)
			}
		}
	}
	return fmt.Errorf("%w: failed to connect to database: %w", gioimport.ErrConnectionFailed, err)
}

// newAWSConnector creates a token-based connector with the AWS IAM token provider.
func newAWSConnector(config *gioimport.ConnectionConfig, logger gioimport.Logger) (gioimport.Connector, error) {
	endpoint := fmt.Sprintf("%s:%d", config.Host, config.Port)

	tokenProvider, err := NewAWSIAMTokenProvider(endpoint, config.AWSRegion, config.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS IAM token provider: %w", err)
	}

	return NewTokenBasedConnector(config, tokenProvider, "AWS IAM", logger), nil
}

// newGoogleConnector creates a GoogleCloudSQLConnector for Google Cloud SQL IAM authentication.
func newGoogleConnector(config *gioimport.ConnectionConfig, logger gioimport.Logger) (gioimport.Connector, error) {
	if config.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires --google-instance (project:region:instance): %w", gioimport.ErrInvalidConfig)
	}
	if config.Username == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires username (-U): %w", gioimport.ErrInvalidConfig)
	}

	return NewGoogleCloudSQLConnector(config, config.GoogleInstance, logger), nil
}

// newAzureConnector creates a token-based connector with the Azure Entra ID token provider.
// Explicit credentials (tenant, client, secret) select Service Principal auth;
// otherwise the DefaultAzureCredential chain is used.
func newAzureConnector(config *gioimport.ConnectionConfig, logger gioimport.Logger) (gioimport.Connector, error) {
	if config.AzureTenantID == "" || config.AzureClientID == "" || config.AzureClientSecret == "" {
		provider, err := NewAzureDefaultCredentialProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure default credential provider: %w", err)
		}
		logger.Verbose("Azure: using the default credential chain")
		return NewTokenBasedConnector(config, provider, "Azure", logger), nil
	}

	provider, err := NewAzureServicePrincipalProvider(config.AzureTenantID, config.AzureClientID, config.AzureClientSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure service principal provider: %w", err)
	}
	logger.Verbose("Azure: using service principal %s", config.AzureClientID)
	return NewTokenBasedConnector(config, provider, "Azure", logger), nil
}

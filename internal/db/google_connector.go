package db

import (
	"context"
	"fmt"
	"net"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/gioimport/internal/retry"
	"github.com/vvka-141/gioimport/pkg/gioimport"
)

// GoogleCloudSQLConnector reaches a Cloud SQL instance through the Cloud SQL
// Go Connector, which handles IAM login and TLS. The dialer outlives Connect:
// call Close once the pool is closed.
type GoogleCloudSQLConnector struct {
	config        *gioimport.ConnectionConfig
	instance      string // project:region:instance
	logger        gioimport.Logger
	retryExecutor *retry.Executor
	dialer        *cloudsqlconn.Dialer
}

func NewGoogleCloudSQLConnector(config *gioimport.ConnectionConfig, instance string, logger gioimport.Logger) *GoogleCloudSQLConnector {
	return &GoogleCloudSQLConnector{
		config:        config,
		instance:      instance,
		logger:        logger,
		retryExecutor: retry.ForConnections(logger),
	}
}

func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Cloud SQL dialer: %w", gioimport.ErrConnectionFailed, err)
	}

	// The dialer ignores host; it is only reported in error hints.
	target := *c.config
	target.Host = c.instance

	pool, err := connectWithRetry(ctx, c.retryExecutor, &target, c.logger, func(context.Context) (*pgxpool.Config, error) {
		poolConfig, err := parsePoolConfig(fmt.Sprintf(
			"user=%s dbname=%s sslmode=disable application_name=%s",
			c.config.Username, c.config.Database, DefaultAppName,
		))
		if err != nil {
			return nil, err
		}
		poolConfig.ConnConfig.DialFunc = func(ctx context.Context, _, _ string) (net.Conn, error) {
			return dialer.Dial(ctx, c.instance)
		}
		return poolConfig, nil
	})
	if err != nil {
		dialer.Close()
		return nil, err
	}

	c.dialer = dialer
	c.logger.Verbose("Connected to Cloud SQL instance %s", c.instance)
	return pool, nil
}

// Close releases the Cloud SQL dialer. Safe to call more than once.
func (c *GoogleCloudSQLConnector) Close() error {
	if c.dialer != nil {
		c.dialer.Close()
		c.dialer = nil
	}
	return nil
}

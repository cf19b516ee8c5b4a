package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/gioimport/internal/retry"
	"github.com/vvka-141/gioimport/pkg/gioimport"
)

// tokenExpiryWarning is how close to expiry a fresh token triggers a warning.
const tokenExpiryWarning = 5 * time.Minute

// TokenBasedConnector implements the Connector interface for cloud providers
// that authenticate via short-lived tokens (AWS IAM, Azure Entra ID).
// The token is acquired from a TokenProvider and used as the PostgreSQL password.
type TokenBasedConnector struct {
	config        *gioimport.ConnectionConfig
	tokenProvider TokenProvider
	retryExecutor *retry.Executor
	providerName  string
	logger        gioimport.Logger
}

// NewTokenBasedConnector creates a connector that uses a TokenProvider for authentication.
// providerName is used in error/warning messages (e.g., "AWS IAM", "Azure").
func NewTokenBasedConnector(config *gioimport.ConnectionConfig, tokenProvider TokenProvider, providerName string, logger gioimport.Logger) *TokenBasedConnector {
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		retryExecutor: retry.ForConnections(logger),
		providerName:  providerName,
		logger:        logger,
	}
}

// Connect acquires a fresh token on every attempt and connects with it as password.
func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	return connectWithRetry(ctx, c.retryExecutor, c.config, c.logger, func(ctx context.Context) (*pgxpool.Config, error) {
		token, expiresOn, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire %s token: %w", c.providerName, err)
		}
		c.logger.Verbose("Acquired token from %s", c.tokenProvider)

		if remaining := time.Until(expiresOn); remaining < tokenExpiryWarning {
			c.logger.Warn("%s token expires in %v", c.providerName, remaining.Round(time.Second))
		}

		configWithToken := *c.config
		configWithToken.Password = token
		return parsePoolConfig(BuildConnectionString(&configWithToken))
	})
}

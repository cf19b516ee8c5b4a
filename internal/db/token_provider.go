package db

import (
	"context"
	"time"
)

// TokenProvider fetches the short-lived IAM token a managed PostgreSQL
// accepts in place of a password.
type TokenProvider interface {
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String names the provider in log lines; it never contains secrets.
	String() string
}

// AzurePostgreSQLScope is the Entra ID scope of Azure Database for PostgreSQL.
const AzurePostgreSQLScope = "https://ossrdbms-aad.database.windows.net/.default"

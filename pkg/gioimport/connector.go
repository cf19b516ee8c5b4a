package gioimport

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connector opens the pool an import run writes through, authenticating with
// one AuthMethod. The caller closes the pool; connectors that hold extra
// resources (a Cloud SQL dialer) also implement io.Closer.
type Connector interface {
	Connect(ctx context.Context) (*pgxpool.Pool, error)
}

package gioimport

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
)

// Store is the narrow data-store capability the import pipeline runs against.
// Both a connection pool and an open transaction satisfy it, so the caller
// decides whether statements autocommit or share one unit of work.
type Store interface {
	// QueryRow executes a query that is expected to return at most one row.
	// Inserts that need their generated key use INSERT ... RETURNING through QueryRow.
	// Errors are deferred until Row's Scan method is called.
	QueryRow(ctx context.Context, sql string, args ...any) Row

	// Exec executes a statement without returning any rows.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Row represents a single row returned by QueryRow.
type Row interface {
	// Scan reads the values from the row into dest values.
	// Returns pgx.ErrNoRows when the query matched nothing.
	Scan(dest ...any) error
}

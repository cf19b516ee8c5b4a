package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/gioimport/pkg/gioimport"
)

// pgxQuerier is the statement surface shared by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Store adapts a pgx pool, connection or transaction to gioimport.Store.
type Store struct {
	q pgxQuerier
}

var _ gioimport.Store = (*Store)(nil)

// NewStore wraps q. Statements issued through a pool autocommit individually.
func NewStore(q pgxQuerier) *Store {
	if q == nil {
		panic("querier cannot be nil")
	}
	return &Store{q: q}
}

func (s *Store) QueryRow(ctx context.Context, sql string, args ...any) gioimport.Row {
	return s.q.QueryRow(ctx, sql, args...)
}

func (s *Store) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return s.q.Exec(ctx, sql, args...)
}

// TxBeginner starts transactions; satisfied by *pgxpool.Pool and *pgx.Conn.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

var _ TxBeginner = (*pgxpool.Pool)(nil)

// RunInTx runs fn against a Store bound to one transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
func RunInTx(ctx context.Context, db TxBeginner, fn func(gioimport.Store) error) error {
	var fnErr error
	err := pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		fnErr = fn(NewStore(tx))
		return fnErr
	})
	if err == nil {
		return nil
	}
	if fnErr != nil {
		return fnErr
	}
	return gioimport.StorageError("transaction", fmt.Errorf("begin or commit: %w", err))
}

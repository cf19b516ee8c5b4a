package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/gioimport/pkg/gioimport"
)

type mockConnector struct {
	pool *pgxpool.Pool
	err  error
}

func (m *mockConnector) Connect(_ context.Context) (*pgxpool.Pool, error) {
	return m.pool, m.err
}

// emptyStore answers every query with no rows.
type emptyStore struct {
	queries int
}

func (s *emptyStore) QueryRow(_ context.Context, _ string, _ ...any) gioimport.Row {
	s.queries++
	return emptyRow{}
}

func (s *emptyStore) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, fmt.Errorf("unexpected write")
}

type emptyRow struct{}

func (emptyRow) Scan(...any) error { return pgx.ErrNoRows }

type mockLogger struct {
	mu       sync.Mutex
	messages []string
}

func (m *mockLogger) record(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, fmt.Sprintf(format, args...))
}

func (m *mockLogger) Verbose(format string, args ...any) { m.record(format, args...) }
func (m *mockLogger) Info(format string, args ...any)    { m.record(format, args...) }
func (m *mockLogger) Warn(format string, args ...any)    { m.record(format, args...) }
func (m *mockLogger) Error(format string, args ...any)   { m.record(format, args...) }

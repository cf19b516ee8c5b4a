package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPostgreSQLErrorClassifier_IsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection failure 08006", &pgconn.PgError{Code: "08006"}, true},
		{"connection exception class 08", &pgconn.PgError{Code: "08P01"}, true},
		{"too many connections 53300", &pgconn.PgError{Code: "53300"}, true},
		{"cannot connect now 57P03", &pgconn.PgError{Code: "57P03"}, true},
		{"statement conflicts are not connection failures", &pgconn.PgError{Code: "40001"}, false},
		{"lock not available", &pgconn.PgError{Code: "55P03"}, false},
		{"malformed sqlstate", &pgconn.PgError{Code: "0"}, false},
		{"invalid password 28P01", &pgconn.PgError{Code: "28P01"}, false},
		{"unknown database 3D000", &pgconn.PgError{Code: "3D000"}, false},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"wrapped pg error", fmt.Errorf("connect: %w", &pgconn.PgError{Code: "08001"}), true},
		{"connection refused op error", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, true},
		{"host unreachable op error", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.EHOSTUNREACH}, true},
		{"temporary dns error", &net.DNSError{Err: "server misbehaving", IsTemporary: true}, true},
		{"permanent dns error", &net.DNSError{Err: "server misbehaving"}, false},
		{"message connection refused", errors.New("dial tcp 127.0.0.1:5432: connection refused"), true},
		{"message unexpected EOF", errors.New("unexpected EOF"), true},
		{"server starting up", errors.New("FATAL: the database system is starting up"), true},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", fmt.Errorf("connect: %w", context.DeadlineExceeded), false},
		{"unrelated", errors.New("some unrelated error"), false},
	}

	c := NewPostgreSQLErrorClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsTransient(tt.err))
		})
	}
}

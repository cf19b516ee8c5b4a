package retry

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE classes worth another connection attempt: 08 connection
// exception, 53 insufficient resources, 57 operator intervention (a server
// that is starting up or shutting down). Everything else, including
// authentication (28) and unknown database (3D), will fail the same way again.
// See https://www.postgresql.org/docs/current/errcodes-appendix.html
var transientClasses = map[string]bool{"08": true, "53": true, "57": true}

// transientMessages match connection failures that reach us as plain text,
// typically from a dialer that wraps the socket error.
var transientMessages = []string{
	"connection refused",
	"connection reset",
	"connection timeout",
	"connection failure",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"broken pipe",
	"too many connections",
	"server closed the connection",
	"the database system is starting up",
	"unexpected eof",
}

var transientErrnos = []syscall.Errno{
	syscall.ECONNREFUSED,
	syscall.ECONNRESET,
	syscall.ENETUNREACH,
	syscall.EHOSTUNREACH,
}

// PostgreSQLErrorClassifier decides whether a failed connection attempt is
// worth repeating. Cancellation and deadlines never are.
type PostgreSQLErrorClassifier struct{}

func NewPostgreSQLErrorClassifier() *PostgreSQLErrorClassifier {
	return &PostgreSQLErrorClassifier{}
}

func (c *PostgreSQLErrorClassifier) IsTransient(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return len(pgErr.Code) >= 2 && transientClasses[pgErr.Code[:2]]
	}
	return isTransientNetError(err) || hasTransientMessage(err)
}

func isTransientNetError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() || dnsErr.Timeout()
	}

	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	if opErr.Timeout() {
		return true
	}
	for _, errno := range transientErrnos {
		if errors.Is(opErr.Err, errno) {
			return true
		}
	}
	return false
}

func hasTransientMessage(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, m := range transientMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

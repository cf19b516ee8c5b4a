// Package testinfra starts throwaway PostGIS servers for integration tests.
package testinfra

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	PostGISImage     = "postgis/postgis:16-3.4"
	PostgresUser     = "postgres"
	PostgresPassword = "postgres"
	PostgresDB       = "postgres"

	containerCertDir  = "/tmp/testcontainers-go/postgres"
	sslEntrypointPath = "/usr/local/bin/docker-entrypoint-ssl.bash"
	startupTimeout    = 90 * time.Second
)

// PostGISContainer is a running server plus a connection string for its
// superuser.
type PostGISContainer struct {
	*postgres.PostgresContainer
	ConnString string
}

// StartPostGIS starts a plain PostGIS server reachable without TLS.
func StartPostGIS(ctx context.Context) (*PostGISContainer, error) {
	return run(ctx, "sslmode=disable")
}

// StartMTLSPostGIS starts a PostGIS server that only accepts client
// certificates signed by the bundle's CA. The returned connection string
// carries sslmode=verify-ca but no client certificate; callers add their own.
func StartMTLSPostGIS(ctx context.Context, certPaths *CertPaths) (*PostGISContainer, error) {
	dir := filepath.Dir(certPaths.CACert)

	confPath, err := writeSSLConfig(dir)
	if err != nil {
		return nil, err
	}
	initScript, err := writeMTLSInitScript(dir)
	if err != nil {
		return nil, err
	}

	return run(ctx, "sslmode=verify-ca",
		postgres.WithSSLCert(certPaths.CACert, certPaths.ServerCert, certPaths.ServerKey),
		postgres.WithConfigFile(confPath),
		postgres.WithInitScripts(initScript),
		// WithSSLCert runs its entrypoint under sh; dash has no pipefail.
		testcontainers.WithEntrypoint("bash", sslEntrypointPath),
	)
}

func run(ctx context.Context, connArgs string, opts ...testcontainers.ContainerCustomizer) (*PostGISContainer, error) {
	base := []testcontainers.ContainerCustomizer{
		postgres.WithUsername(PostgresUser),
		postgres.WithPassword(PostgresPassword),
		postgres.WithDatabase(PostgresDB),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(startupTimeout),
		),
	}

	ctr, err := postgres.Run(ctx, PostGISImage, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("start postgis: %w", err)
	}

	connStr, err := ctr.ConnectionString(ctx, connArgs)
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get connection string: %w", err)
	}

	return &PostGISContainer{PostgresContainer: ctr, ConnString: connStr}, nil
}

func writeSSLConfig(dir string) (string, error) {
	conf := fmt.Sprintf(`listen_addresses = '*'
ssl = on
ssl_cert_file = '%[1]s/server.cert'
ssl_key_file = '%[1]s/server.key'
ssl_ca_file = '%[1]s/ca_cert.pem'
`, containerCertDir)

	path := filepath.Join(dir, "postgresql.conf")
	if err := os.WriteFile(path, []byte(conf), 0644); err != nil {
		return "", fmt.Errorf("write postgresql.conf: %w", err)
	}
	return path, nil
}

func writeMTLSInitScript(dir string) (string, error) {
	script := `#!/bin/bash
cat > "$PGDATA/pg_hba.conf" << 'PGEOF'
local   all all                trust
hostssl all all 0.0.0.0/0      cert clientcert=verify-full
hostssl all all ::/0           cert clientcert=verify-full
PGEOF
`
	path := filepath.Join(dir, "init-mtls.sh")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		return "", fmt.Errorf("write init script: %w", err)
	}
	return path, nil
}

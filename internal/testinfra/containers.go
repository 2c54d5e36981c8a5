// Package testinfra starts throwaway PostgreSQL servers for connection tests.
package testinfra

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	PostgresImage    = "postgres:17"
	PostgresUser     = "postgres"
	PostgresPassword = "postgres"
	PostgresDB       = "hellodb"

	// AppUser may only read greetings, like the service's real role.
	AppUser     = "hello_app"
	AppPassword = "hello_app_password"

	containerCertDir  = "/tmp/testcontainers-go/postgres"
	sslEntrypointPath = "/usr/local/bin/docker-entrypoint-ssl.bash"
)

// PostgresContainer is a running TLS-enabled server with an empty greetings table.
type PostgresContainer struct {
	*postgres.PostgresContainer
	Host      string
	Port      int
	SuperConn string
}

// StartPostgres starts PostgreSQL with TLS enabled using certPaths.
func StartPostgres(ctx context.Context, certPaths *CertPaths) (*PostgresContainer, error) {
	dir := filepath.Dir(certPaths.CACert)

	confPath, err := writeSSLConfig(dir)
	if err != nil {
		return nil, err
	}
	initScript, err := writeInitScript(dir)
	if err != nil {
		return nil, err
	}

	ctr, err := postgres.Run(ctx,
		PostgresImage,
		postgres.WithUsername(PostgresUser),
		postgres.WithPassword(PostgresPassword),
		postgres.WithDatabase(PostgresDB),
		postgres.WithSSLCert(certPaths.CACert, certPaths.ServerCert, certPaths.ServerKey),
		postgres.WithConfigFile(confPath),
		postgres.WithInitScripts(initScript),
		// WithSSLCert sets entrypoint to "sh" which fails on Debian (dash doesn't support pipefail).
		testcontainers.WithEntrypoint("bash", sslEntrypointPath),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres: %w", err)
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get host: %w", err)
	}
	mapped, err := ctr.MappedPort(ctx, "5432/tcp")
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}
	port, err := strconv.Atoi(mapped.Port())
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("parse mapped port %q: %w", mapped.Port(), err)
	}

	connStr, err := ctr.ConnectionString(ctx, "sslmode=require")
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get connection string: %w", err)
	}

	return &PostgresContainer{PostgresContainer: ctr, Host: host, Port: port, SuperConn: connStr}, nil
}

func writeSSLConfig(dir string) (string, error) {
	conf := fmt.Sprintf(`listen_addresses = '*'
ssl = on
ssl_cert_file = '%s/server.cert'
ssl_key_file = '%s/server.key'
ssl_ca_file = '%s/ca_cert.pem'
`, containerCertDir, containerCertDir, containerCertDir)

	path := filepath.Join(dir, "postgresql.conf")
	if err := os.WriteFile(path, []byte(conf), 0644); err != nil {
		return "", fmt.Errorf("write postgresql.conf: %w", err)
	}
	return path, nil
}

func writeInitScript(dir string) (string, error) {
	script := fmt.Sprintf(`CREATE TABLE greetings (
    id         serial PRIMARY KEY,
    message    text NOT NULL,
    created_at timestamptz NOT NULL DEFAULT now()
);
CREATE ROLE %s LOGIN PASSWORD '%s';
GRANT SELECT ON greetings TO %s;
`, AppUser, AppPassword, AppUser)

	path := filepath.Join(dir, "init-greetings.sql")
	if err := os.WriteFile(path, []byte(script), 0644); err != nil {
		return "", fmt.Errorf("write init script: %w", err)
	}
	return path, nil
}

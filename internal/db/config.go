package db

import (
	"fmt"
	"math"
	"net"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/hellodb/pkg/hellodb"
)

// SSL modes used for each TLS policy. Neither allows a plaintext fallback.
const (
	sslModeStrict     = "verify-full"
	sslModePermissive = "require"
)

// BuildConnectionString renders cfg as a PostgreSQL URI.
// Timeouts become connect_timeout, statement_timeout and
// idle_in_transaction_session_timeout.
func BuildConnectionString(cfg hellodb.ConnectionConfig) string {
	port := cfg.Port
	if port == 0 {
		port = hellodb.DefaultDatabasePort
	}

	u := &url.URL{
		Scheme: "postgresql",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		Path:   "/" + cfg.Database,
	}

	if cfg.Credentials.Username != "" {
		if cfg.Credentials.Password != "" {
			u.User = url.UserPassword(cfg.Credentials.Username, cfg.Credentials.Password)
		} else {
			u.User = url.User(cfg.Credentials.Username)
		}
	}

	query := url.Values{}
	query.Set("sslmode", sslMode(cfg.TLS))
	if cfg.AppName != "" {
		query.Set("application_name", cfg.AppName)
	}
	if cfg.ConnectTimeout > 0 {
		// connect_timeout is whole seconds; round up so sub-second values stay non-zero.
		query.Set("connect_timeout", strconv.Itoa(int(math.Ceil(cfg.ConnectTimeout.Seconds()))))
	}
	if cfg.QueryTimeout > 0 {
		query.Set("statement_timeout", strconv.FormatInt(cfg.QueryTimeout.Milliseconds(), 10))
	}
	if cfg.IdleTimeout > 0 {
		query.Set("idle_in_transaction_session_timeout", strconv.FormatInt(cfg.IdleTimeout.Milliseconds(), 10))
	}

	u.RawQuery = query.Encode()
	return u.String()
}

// BuildConnConfig parses cfg into a pgx connection config.
func BuildConnConfig(cfg hellodb.ConnectionConfig) (*pgx.ConnConfig, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("database host is required: %w", hellodb.ErrInvalidConfig)
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("database name is required: %w", hellodb.ErrInvalidConfig)
	}

	connCfg, err := pgx.ParseConfig(BuildConnectionString(cfg))
	if err != nil {
		// Parse errors can echo the DSN, which carries the password.
		return nil, fmt.Errorf("invalid connection settings for %s: %w", cfg.Endpoint(), hellodb.ErrInvalidConfig)
	}

	if cfg.ConnectTimeout > 0 {
		connCfg.ConnectTimeout = cfg.ConnectTimeout
	}
	return connCfg, nil
}

func sslMode(policy hellodb.TLSPolicy) string {
	if policy == hellodb.TLSStrict {
		return sslModeStrict
	}
	return sslModePermissive
}

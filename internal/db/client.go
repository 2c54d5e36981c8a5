package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

var errNotConnected = errors.New("not connected")

// Client is a single database connection with an explicit connect step.
// Close must be safe to call whether or not Connect succeeded.
type Client interface {
	Connect(ctx context.Context) error
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close(ctx context.Context) error
}

// ClientFactory creates an unconnected Client for a connection config.
type ClientFactory func(cfg *pgx.ConnConfig) Client

// pgxClient wraps *pgx.Conn. No pooling: one client, one connection.
type pgxClient struct {
	cfg  *pgx.ConnConfig
	conn *pgx.Conn
}

// NewPgxClient is the default ClientFactory.
func NewPgxClient(cfg *pgx.ConnConfig) Client {
	return &pgxClient{cfg: cfg}
}

func (c *pgxClient) Connect(ctx context.Context) error {
	conn, err := pgx.ConnectConfig(ctx, c.cfg)
	if err != nil {
		return err
	}
	c.conn = conn
	return nil
}

func (c *pgxClient) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if c.conn == nil {
		return errRow{err: errNotConnected}
	}
	return c.conn.QueryRow(ctx, sql, args...)
}

func (c *pgxClient) Close(ctx context.Context) error {
	if c.conn == nil {
		return nil
	}
	conn := c.conn
	c.conn = nil
	return conn.Close(ctx)
}

type errRow struct {
	err error
}

func (r errRow) Scan(...any) error { return r.err }

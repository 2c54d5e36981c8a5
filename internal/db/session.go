package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/vvka-141/hellodb/internal/logging"
	"github.com/vvka-141/hellodb/pkg/hellodb"
)

// Session implements hellodb.GreetingSource.
// It holds no connection state; every WithGreeting call is independent.
type Session struct {
	newClient    ClientFactory
	logger       hellodb.Logger
	closeTimeout time.Duration
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithClientFactory replaces the pgx-backed client, mainly for tests.
func WithClientFactory(f ClientFactory) SessionOption {
	return func(s *Session) {
		s.newClient = f
	}
}

// WithCloseTimeout bounds the disconnect step.
func WithCloseTimeout(d time.Duration) SessionOption {
	return func(s *Session) {
		s.closeTimeout = d
	}
}

// NewSession creates a Session. Panics if logger is nil.
func NewSession(logger hellodb.Logger, opts ...SessionOption) *Session {
	if logger == nil {
		panic("logger cannot be nil")
	}
	s := &Session{
		newClient:    NewPgxClient,
		logger:       logger,
		closeTimeout: hellodb.DefaultCloseTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithGreeting connects, reads the latest greeting and disconnects.
// The connection is closed exactly once whatever happens, including a failed
// connect. Failures come back as hellodb.Failure results.
func (s *Session) WithGreeting(ctx context.Context, cfg hellodb.ConnectionConfig) hellodb.GreetingResult {
	logger := logging.FromContext(ctx, s.logger)

	connCfg, err := BuildConnConfig(cfg)
	if err != nil {
		return fail(logger, "configure", err)
	}

	client := s.newClient(connCfg)
	guard := NewGuard("database connection", client.Close, logger, s.closeTimeout)
	defer guard.Release(ctx)

	logger.Info("Connecting to PostgreSQL: %s/%s as user %s (tls=%s)",
		cfg.Endpoint(), cfg.Database, cfg.Credentials.Username, cfg.TLS)
	if err := client.Connect(ctx); err != nil {
		return fail(logger, "connect", err)
	}
	logger.Info("Connected to PostgreSQL")

	queryCtx := ctx
	if cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, cfg.QueryTimeout)
		defer cancel()
	}

	logger.Verbose("Executing query: %s", hellodb.GreetingQuery)
	var message pgtype.Text
	err = client.QueryRow(queryCtx, hellodb.GreetingQuery).Scan(&message)
	if errors.Is(err, pgx.ErrNoRows) {
		logger.Info("No greetings found in database")
		return hellodb.Success(hellodb.NoGreetingMessage)
	}
	if err != nil {
		return fail(logger, "query", err)
	}

	logger.Info("Retrieved greeting from database")
	return hellodb.Success(message.String)
}

func fail(logger hellodb.Logger, stage string, err error) hellodb.GreetingResult {
	failure := Classify(err)
	logger.Error("Database %s failed: kind=%s error=%v", stage, failure.Kind, err)
	return failure.Result()
}

var _ hellodb.GreetingSource = (*Session)(nil)

// Package greeting orchestrates secret resolution and the database session
// into a single call that always yields a hellodb.GreetingResult.
package greeting

import (
	"context"
	"fmt"

	"github.com/vvka-141/hellodb/internal/db"
	"github.com/vvka-141/hellodb/internal/logging"
	"github.com/vvka-141/hellodb/pkg/hellodb"
)

// Stage is a step of one retrieval. Stages only move forward and every
// retrieval ends in StageClosed.
type Stage int

const (
	StageIdle Stage = iota
	StageResolvingSecrets
	StageConnecting
	StageClosed
)

// String returns a human-readable representation of the Stage.
func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "Idle"
	case StageResolvingSecrets:
		return "ResolvingSecrets"
	case StageConnecting:
		return "Connecting"
	case StageClosed:
		return "Closed"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// Flow implements hellodb.GreetingProvider.
// It holds only immutable configuration and is safe for concurrent use.
type Flow struct {
	cfg      hellodb.FlowConfig
	resolver hellodb.SecretResolver
	source   hellodb.GreetingSource
	tokens   db.TokenProvider
	logger   hellodb.Logger
	onStage  func(Stage)
}

// Option configures a Flow.
type Option func(*Flow)

// WithTokenProvider replaces the password secret lookup with generated
// tokens (RDS IAM authentication). The username is still resolved from the store.
func WithTokenProvider(p db.TokenProvider) Option {
	return func(f *Flow) {
		f.tokens = p
	}
}

// WithStageHook registers a callback invoked on every stage transition.
func WithStageHook(fn func(Stage)) Option {
	return func(f *Flow) {
		f.onStage = fn
	}
}

// NewFlow creates a Flow. Panics if resolver, source or logger is nil.
func NewFlow(cfg hellodb.FlowConfig, resolver hellodb.SecretResolver, source hellodb.GreetingSource, logger hellodb.Logger, opts ...Option) *Flow {
	if resolver == nil {
		panic("resolver cannot be nil")
	}
	if source == nil {
		panic("source cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	f := &Flow{
		cfg:      cfg,
		resolver: resolver,
		source:   source,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// GetGreeting resolves credentials, then delegates to the greeting source.
// It never panics and never returns an error: secret failures surface with
// the resolver's message, database failures with the source's message.
func (f *Flow) GetGreeting(ctx context.Context) (result hellodb.GreetingResult) {
	logger := logging.FromContext(ctx, f.logger)
	stage := StageIdle
	enter := func(s Stage) {
		stage = s
		f.enter(logger, s)
	}

	enter(StageIdle)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Greeting retrieval panicked during %s: %v", stage, r)
			result = panicResult(stage, r)
		}
		f.enter(logger, StageClosed)
	}()

	enter(StageResolvingSecrets)
	logger.Info("Fetching database credentials")
	creds, err := f.credentials(ctx, logger)
	if err != nil {
		return hellodb.Failure(err.Error())
	}

	enter(StageConnecting)
	return f.source.WithGreeting(ctx, f.cfg.ConnectionConfig(creds))
}

// credentials resolves the username first and the password second.
func (f *Flow) credentials(ctx context.Context, logger hellodb.Logger) (hellodb.DatabaseCredentials, error) {
	username, err := f.resolver.Resolve(ctx, hellodb.SecretReference{Name: f.cfg.UsernameSecret})
	if err != nil {
		return hellodb.DatabaseCredentials{}, err
	}

	if f.tokens != nil {
		token, expiresOn, err := f.tokens.GetToken(ctx, username)
		if err != nil {
			logger.Error("Failed to acquire database token from %s: %v", f.tokens, err)
			return hellodb.DatabaseCredentials{}, err
		}
		logger.Verbose("Acquired database token from %s, expires %s", f.tokens, expiresOn.UTC().Format("15:04:05"))
		return hellodb.DatabaseCredentials{Username: username, Password: token}, nil
	}

	password, err := f.resolver.Resolve(ctx, hellodb.SecretReference{Name: f.cfg.PasswordSecret, WithDecryption: true})
	if err != nil {
		return hellodb.DatabaseCredentials{}, err
	}
	return hellodb.DatabaseCredentials{Username: username, Password: password}, nil
}

// panicResult words a recovered panic after the stage it interrupted.
func panicResult(stage Stage, r any) hellodb.GreetingResult {
	if stage == StageResolvingSecrets {
		return hellodb.Failure(fmt.Sprintf("Failed to retrieve database credentials: %v", r))
	}
	return hellodb.Failure(fmt.Sprintf("Database error: %v", r))
}

func (f *Flow) enter(logger hellodb.Logger, s Stage) {
	logger.Verbose("Greeting stage: %s", s)
	if f.onStage != nil {
		f.onStage(s)
	}
}

var _ hellodb.GreetingProvider = (*Flow)(nil)

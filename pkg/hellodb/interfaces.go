package hellodb

import "context"

// SecretResolver turns a secret reference into its plaintext value.
// Errors returned are *SecretError.
type SecretResolver interface {
	Resolve(ctx context.Context, ref SecretReference) (string, error)
}

// GreetingSource runs one connect-query-disconnect cycle.
// It never returns an error; failures are encoded in the result.
type GreetingSource interface {
	WithGreeting(ctx context.Context, cfg ConnectionConfig) GreetingResult
}

// GreetingProvider is what callers (HTTP handlers, the CLI) consume.
type GreetingProvider interface {
	GetGreeting(ctx context.Context) GreetingResult
}

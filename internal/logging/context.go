package logging

import (
	"context"

	"github.com/vvka-141/hellodb/pkg/hellodb"
)

type loggerKey struct{}

// NewContext returns a copy of ctx that carries logger. Components that
// accept a context log through it instead of their own logger, so lines
// written while serving one request share that request's prefix.
func NewContext(ctx context.Context, logger hellodb.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored by NewContext, or fallback.
func FromContext(ctx context.Context, fallback hellodb.Logger) hellodb.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(hellodb.Logger); ok && l != nil {
			return l
		}
	}
	return fallback
}

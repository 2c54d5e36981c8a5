package logging

import "github.com/vvka-141/hellodb/pkg/hellodb"

type prefixLogger struct {
	inner  hellodb.Logger
	prefix string
}

// WithPrefix returns a Logger that prepends "[prefix] " to every message.
// An empty prefix returns inner unchanged.
func WithPrefix(inner hellodb.Logger, prefix string) hellodb.Logger {
	if prefix == "" {
		return inner
	}
	return &prefixLogger{inner: inner, prefix: "[" + prefix + "] "}
}

func (l *prefixLogger) Verbose(format string, args ...interface{}) {
	l.inner.Verbose(l.prefix+format, args...)
}

func (l *prefixLogger) Info(format string, args ...interface{}) {
	l.inner.Info(l.prefix+format, args...)
}

func (l *prefixLogger) Error(format string, args ...interface{}) {
	l.inner.Error(l.prefix+format, args...)
}

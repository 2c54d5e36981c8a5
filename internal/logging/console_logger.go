package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// ConsoleLogger writes log messages to an io.Writer, stderr by default.
// Safe for concurrent use by multiple goroutines.
type ConsoleLogger struct {
	verbose    bool
	timestamps bool
	out        io.Writer
	now        func() time.Time
	mu         sync.Mutex
}

// Option configures a ConsoleLogger.
type Option func(*ConsoleLogger)

// WithWriter redirects output away from stderr.
func WithWriter(w io.Writer) Option {
	return func(l *ConsoleLogger) {
		l.out = w
	}
}

// WithTimestamps prefixes every line with an RFC3339 UTC timestamp.
func WithTimestamps() Option {
	return func(l *ConsoleLogger) {
		l.timestamps = true
	}
}

// NewConsoleLogger creates a new ConsoleLogger.
// If verbose is true, Verbose() calls will produce output.
// If verbose is false, Verbose() calls are no-ops.
func NewConsoleLogger(verbose bool, opts ...Option) *ConsoleLogger {
	l := &ConsoleLogger{
		verbose: verbose,
		out:     os.Stderr,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Verbose logs detailed diagnostic information if verbose mode is enabled.
func (l *ConsoleLogger) Verbose(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.write("[VERBOSE] ", format, args)
}

// Info logs informational messages about normal operations.
func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	l.write("", format, args)
}

// Error logs error messages.
func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	l.write("[ERROR] ", format, args)
}

func (l *ConsoleLogger) write(level, format string, args []interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timestamps {
		fmt.Fprintf(l.out, "%s %s%s\n", l.now().UTC().Format(time.RFC3339), level, msg)
		return
	}
	fmt.Fprint(l.out, level+msg+"\n")
}

package hellodb

// Logger is the logging sink shared by every hellodb component.
// Implementations must be safe for concurrent use: one Logger serves all
// in-flight greeting requests. Callers never pass credential values to it.
type Logger interface {
	// Verbose logs diagnostics such as stage transitions and the query text.
	// Dropped unless verbose output was requested.
	Verbose(format string, args ...interface{})

	// Info logs normal progress: parameter fetched, connected, closed.
	Info(format string, args ...interface{})

	// Error logs failures, including ones that are swallowed (disconnect errors).
	Error(format string, args ...interface{})
}

// Package logging provides concrete implementations of the hellodb.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: Writes formatted lines to stderr (or any io.Writer) with thread-safe output
//   - NullLogger: Discards all messages (useful for testing)
//   - WithPrefix: Decorates another Logger with a per-request prefix
//
// NewFileWriter opens a size-rotated log file that can be combined with stderr
// through io.MultiWriter.
package logging

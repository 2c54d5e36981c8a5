package logging

import "github.com/vvka-141/hellodb/pkg/hellodb"

// NullLogger discards everything. The zero value is ready to use.
type NullLogger struct{}

// NewNullLogger returns a NullLogger, mostly for tests and library callers
// that do not want hellodb output.
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

func (*NullLogger) Verbose(string, ...interface{}) {}
func (*NullLogger) Info(string, ...interface{})    {}
func (*NullLogger) Error(string, ...interface{})   {}

var (
	_ hellodb.Logger = (*NullLogger)(nil)
	_ hellodb.Logger = (*ConsoleLogger)(nil)
	_ hellodb.Logger = (*Recorder)(nil)
)

package logging

import (
	"fmt"
	"strings"
	"sync"
)

// Recorder keeps every message in memory. Verbose messages are always kept.
// Safe for concurrent use by multiple goroutines.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Verbose(format string, args ...interface{}) { r.add("VERBOSE", format, args) }
func (r *Recorder) Info(format string, args ...interface{})    { r.add("INFO", format, args) }
func (r *Recorder) Error(format string, args ...interface{})   { r.add("ERROR", format, args) }

func (r *Recorder) add(level, format string, args []interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, level+" "+msg)
}

// Lines returns a copy of the recorded lines, each prefixed with its level.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// Contains reports whether any recorded line contains substr.
func (r *Recorder) Contains(substr string) bool {
	for _, line := range r.Lines() {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

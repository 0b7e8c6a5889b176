// Package tracing provides the station's structured-logging, span-tracing,
// event-recording, and correlation-id facilities — the ambient observability
// stack every other package reaches into rather than calling fmt.Printf or
// log.Print directly.
//
// Grounded on the teacher's tracing package (which logged task
// starts/steps/ends through a Tracer interface into pluggable sinks);
// generalized here from a simulation trace format into the structured
// logging, tracing-span, and durable-event-recording facilities the
// control-plane core actually needs.
package tracing

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-logr/logr"
)

// base is the process-wide root logger. Components derive named
// sub-loggers from it via NewLogger; each package keeps the logger it gets
// in a package-level variable.
var base = newStdLogger()

// NewLogger returns a named logr.Logger for component name (e.g. "rrc",
// "mac.scheduler", "mobility"), consistent with the teacher's practice of
// tagging every log line with its originating subsystem.
func NewLogger(name string) logr.Logger {
	return base.WithName(name)
}

// SetLogSink replaces the process-wide root logger's sink, letting
// cmd/enbstackd wire in whatever logr.LogSink the configured output format
// requires (e.g. JSON to stdout under a container, text to a terminal).
// Loggers that NewLogger returned before the call keep the sink they were
// created with; only later NewLogger calls use the new one.
func SetLogSink(sink logr.LogSink) {
	base = logr.New(sink)
}

// newStdLogger builds the default sink: a minimal logr.LogSink writing
// leveled, named lines to stderr. SetLogSink can replace it with a richer
// sink (e.g. zap or logrus adapters) for loggers created after that call.
func newStdLogger() logr.Logger {
	return logr.New(&stderrSink{})
}

type stderrSink struct {
	name   string
	values []interface{}
}

func (s *stderrSink) Init(logr.RuntimeInfo) {}

func (s *stderrSink) Enabled(level int) bool { return true }

func (s *stderrSink) Info(level int, msg string, kv ...interface{}) {
	s.write("INFO", msg, kv)
}

func (s *stderrSink) Error(err error, msg string, kv ...interface{}) {
	kv = append(kv, "error", err)
	s.write("ERROR", msg, kv)
}

func (s *stderrSink) WithValues(kv ...interface{}) logr.LogSink {
	return &stderrSink{name: s.name, values: append(append([]interface{}{}, s.values...), kv...)}
}

func (s *stderrSink) WithName(name string) logr.LogSink {
	full := name
	if s.name != "" {
		full = s.name + "." + name
	}
	return &stderrSink{name: full, values: s.values}
}

func (s *stderrSink) write(level, msg string, kv []interface{}) {
	parts := []string{level, s.name + ":", msg}
	allKV := append(append([]interface{}{}, s.values...), kv...)
	for i := 0; i+1 < len(allKV); i += 2 {
		parts = append(parts, fmt.Sprintf("%v=%v", allKV[i], allKV[i+1]))
	}
	_, _ = os.Stderr.WriteString(strings.Join(parts, " ") + "\n")
}

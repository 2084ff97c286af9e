// Package qlog provides the structured, swappable logger every package in
// this module calls into for the handful of progress and warning lines the
// original transforms print as they run (e.g. a reconciled collection event,
// a shifted intermission, a skipped cut). It defaults to a no-op logger so
// importing qdem as a library stays silent unless the caller opts in.
package qlog

import (
	"sync"

	"github.com/rs/zerolog"
)

// Field is one key-value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

// F is shorthand for constructing a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logger is the interface every qdem package logs through.
type Logger interface {
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...Field) {}
func (noopLogger) Warn(string, ...Field) {}

// zerologLogger adapts zerolog.Logger to Logger.
type zerologLogger struct {
	logger zerolog.Logger
}

// NewZerolog wraps a zerolog.Logger as a Logger, the adapter qdem's CLI
// configures by default.
func NewZerolog(logger zerolog.Logger) Logger {
	return &zerologLogger{logger: logger}
}

func (l *zerologLogger) Info(msg string, fields ...Field) {
	event := l.logger.Info()
	for _, f := range fields {
		event = addField(event, f)
	}
	event.Msg(msg)
}

func (l *zerologLogger) Warn(msg string, fields ...Field) {
	event := l.logger.Warn()
	for _, f := range fields {
		event = addField(event, f)
	}
	event.Msg(msg)
}

func addField(event *zerolog.Event, f Field) *zerolog.Event {
	switch v := f.Value.(type) {
	case string:
		return event.Str(f.Key, v)
	case int:
		return event.Int(f.Key, v)
	case int32:
		return event.Int32(f.Key, v)
	case int64:
		return event.Int64(f.Key, v)
	case float32:
		return event.Float32(f.Key, v)
	case float64:
		return event.Float64(f.Key, v)
	case error:
		return event.AnErr(f.Key, v)
	default:
		return event.Interface(f.Key, v)
	}
}

var (
	mu     sync.RWMutex
	global Logger = noopLogger{}
)

// SetLogger replaces the package-level logger every qdem package's log calls
// go through. Passing nil restores the no-op default.
func SetLogger(l Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		global = noopLogger{}
	} else {
		global = l
	}
}

func getLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// Info logs at info level through the package-level logger.
func Info(msg string, fields ...Field) { getLogger().Info(msg, fields...) }

// Warn logs at warn level through the package-level logger.
func Warn(msg string, fields ...Field) { getLogger().Warn(msg, fields...) }

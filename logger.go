package timerz

import (
	"context"
	"log/slog"
)

// Logger receives the diagnostics emitted by schedulers and sessions.
//
// scope names the component ("debounce", "throttle", "typeahead"), op the
// operation ("schedule", "cancel", "invoke"). kv are alternating key/value
// pairs in the log/slog convention.
type Logger interface {
	Debug(scope, op, msg string, kv ...any)
	Verbose(scope, op, msg string, kv ...any)
	Warn(scope, op, msg string, kv ...any)
	Error(scope, op, msg string, kv ...any)
}

// LevelVerbose sits below slog.LevelDebug and carries trace-level output
// such as ignored keystrokes.
const LevelVerbose = slog.LevelDebug - 4

// NopLogger discards everything. It is the default.
var NopLogger Logger = nopLogger{}

type nopLogger struct{}

func (nopLogger) Debug(string, string, string, ...any)   {}
func (nopLogger) Verbose(string, string, string, ...any) {}
func (nopLogger) Warn(string, string, string, ...any)    {}
func (nopLogger) Error(string, string, string, ...any)   {}

// SlogLogger adapts a *slog.Logger to Logger. scope and op are attached as
// attributes on every record.
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps l. A nil l uses slog.Default().
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogLogger{l: l}
}

func (s *SlogLogger) Debug(scope, op, msg string, kv ...any) {
	s.log(slog.LevelDebug, scope, op, msg, kv)
}

func (s *SlogLogger) Verbose(scope, op, msg string, kv ...any) {
	s.log(LevelVerbose, scope, op, msg, kv)
}

func (s *SlogLogger) Warn(scope, op, msg string, kv ...any) {
	s.log(slog.LevelWarn, scope, op, msg, kv)
}

func (s *SlogLogger) Error(scope, op, msg string, kv ...any) {
	s.log(slog.LevelError, scope, op, msg, kv)
}

func (s *SlogLogger) log(level slog.Level, scope, op, msg string, kv []any) {
	ctx := context.Background()
	if !s.l.Enabled(ctx, level) {
		return
	}
	args := make([]any, 0, len(kv)+4)
	args = append(args, "scope", scope, "op", op)
	args = append(args, kv...)
	s.l.Log(ctx, level, msg, args...)
}

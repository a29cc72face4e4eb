package common

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. Enabled reports false so callers skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger installs the logger used by the engine and all of its sub-packages.
// By default nothing is logged. Passing nil restores the silent default.
//
// Log levels used by the engine:
//   - slog.LevelDebug: buffer sizes, pipeline creation, per-resource diagnostics
//   - slog.LevelInfo: lifecycle events (adapter selected, scene built, profiler stats)
//   - slog.LevelWarn: recoverable issues (dropped input events, malformed remote messages)
//
// Parameters:
//   - l: the logger to install, or nil to disable logging
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the active engine logger. Safe for concurrent use.
//
// Returns:
//   - *slog.Logger: the current logger
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// ComponentLogger returns the active logger tagged with a component attribute,
// e.g. ComponentLogger("snow") produces records carrying component=snow.
//
// Parameters:
//   - component: the component name to attach
//
// Returns:
//   - *slog.Logger: a child logger carrying the component attribute
func ComponentLogger(component string) *slog.Logger {
	return Logger().With(slog.String("component", component))
}

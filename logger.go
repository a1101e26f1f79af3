package photon

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/wgpu/hal"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for photon and its backends.
// By default photon produces no log output. Pass nil to restore the
// silent default.
//
// The logger is also handed to the wgpu HAL so that device-level
// diagnostics end up in the same place.
//
// Log levels used by photon:
//   - [slog.LevelDebug]: batch creation, buffer uploads, texture creation
//   - [slog.LevelInfo]: device and renderer lifecycle
//   - [slog.LevelWarn]: non-fatal release errors
//
// Example:
//
//	photon.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	hal.SetLogger(l)
}

// Logger returns the current logger used by photon. Backend packages call
// this to share the same configuration without an import cycle.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

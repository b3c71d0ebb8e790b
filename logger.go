package gllcms

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/kovidgoyal/gllcms/gpu"
)

// nopHandler silently discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

func slogger() *slog.Logger { return loggerPtr.Load() }

// SetLogger sets the logger used by this module, including the GPU layer.
// By default nothing is logged. Pass nil to disable logging again.
//
// Log levels:
//   - Debug: rebuild timings, buffer sizes
//   - Info: session initialization
//   - Warn: a rebuild failed and the previous table is still in use
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
	gpu.SetLogger(l)
}

// Logger returns the logger set with SetLogger.
func Logger() *slog.Logger { return slogger() }

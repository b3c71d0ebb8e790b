package gllcms

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kovidgoyal/gllcms/prism/lut"
)

// Backend draws frames of type F. gpu.Resources is the GPU backend and
// convert.CPUBackend renders image.NRGBA frames on the CPU.
type Backend[F any] interface {
	// EnsureInitialized creates the backend's resources on the first call
	EnsureInitialized(provider any) error
	// Upload replaces the active table
	Upload(l *lut.LUT) error
	// Render draws in into out through the active table
	Render(in, out F) error
	// Copy draws in into out unchanged
	Copy(in, out F) error
	Release()
}

type State int

const (
	Uninitialized State = iota
	Ready
	Stopped
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Ready:
		return "Ready"
	case Stopped:
		return "Stopped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Stats struct {
	Frames   uint64
	Rebuilds uint64
	Uploads  uint64
	Failures uint64
	// Frames copied without a table
	Passthrough uint64
}

type options struct {
	logger  *slog.Logger
	builder Builder
}

type Option func(*options)

// WithLogger makes the filter log to l instead of the module logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithBuilder replaces DefaultBuilder.
func WithBuilder(b Builder) Option {
	return func(o *options) { o.builder = b }
}

// Filter applies the settings in a Store to frames. A Filter is driven by
// a single render goroutine and is not safe for concurrent use. It caches
// exactly one table: the one built for the last snapshot it saw.
type Filter[F any] struct {
	store   *Store
	backend Backend[F]
	opts    options
	state   State

	// the last snapshot a rebuild was attempted for
	last      Settings
	have_last bool
	// non-nil when the rebuild for last failed
	last_err error
	// what is currently being served
	passthrough bool
	active      *lut.LUT

	stats Stats
}

func NewFilter[F any](store *Store, backend Backend[F], opts ...Option) *Filter[F] {
	ans := &Filter[F]{store: store, backend: backend, opts: options{builder: DefaultBuilder}}
	for _, o := range opts {
		o(&ans.opts)
	}
	return ans
}

func (f *Filter[F]) log() *slog.Logger {
	if f.opts.logger != nil {
		return f.opts.logger
	}
	return slogger()
}

func (f *Filter[F]) State() State { return f.state }
func (f *Filter[F]) Stats() Stats { return f.stats }

// Process draws in into out using the current settings. On the first frame
// of a session it initializes the backend with provider. When the settings
// changed since the last frame the table is rebuilt first; if that fails
// the error is returned and the previous table is kept for later frames.
func (f *Filter[F]) Process(provider any, in, out F) error {
	switch f.state {
	case Stopped:
		return ErrFilterStopped
	case Uninitialized:
		if err := f.backend.EnsureInitialized(provider); err != nil {
			return fmt.Errorf("failed to initialize filter resources: %w", err)
		}
		f.state = Ready
		f.log().Info("gllcms: filter session started")
	}
	f.stats.Frames++
	s := f.store.Snapshot()
	if !f.have_last || s != f.last {
		if err := f.rebuild(s); err != nil {
			return err
		}
	}
	if f.last_err != nil && !f.passthrough && f.active == nil {
		return f.last_err
	}
	if f.passthrough {
		f.stats.Passthrough++
		return f.backend.Copy(in, out)
	}
	return f.backend.Render(in, out)
}

func (f *Filter[F]) rebuild(s Settings) error {
	f.stats.Rebuilds++
	f.last, f.have_last, f.last_err = s, true, nil
	if s.IsIdentity() {
		f.passthrough = true
		f.log().Debug("gllcms: identity settings, copying frames")
		return nil
	}
	start := time.Now()
	l, err := f.opts.builder(s)
	if err == nil {
		if err = f.backend.Upload(l); err == nil {
			f.stats.Uploads++
		}
	}
	if err != nil {
		f.stats.Failures++
		f.last_err = fmt.Errorf("failed to rebuild the color table for %s: %w", s, err)
		if f.passthrough || f.active != nil {
			f.log().Warn("gllcms: rebuild failed, keeping the previous color table", "settings", s, "error", err)
		}
		return f.last_err
	}
	f.active, f.passthrough = l, false
	f.log().Debug("gllcms: rebuilt color table", "settings", s, "took", time.Since(start))
	return nil
}

// Stop ends the session, releasing backend resources. The next call to
// Process starts a new session.
func (f *Filter[F]) Stop() {
	if f.state == Ready {
		f.backend.Release()
		f.log().Info("gllcms: filter session stopped", "frames", f.stats.Frames, "rebuilds", f.stats.Rebuilds)
	}
	if f.state != Stopped {
		f.state = Uninitialized
	}
	f.reset()
}

// Close stops the filter permanently.
func (f *Filter[F]) Close() {
	f.Stop()
	f.state = Stopped
}

func (f *Filter[F]) reset() {
	f.last, f.have_last, f.last_err = Settings{}, false, nil
	f.passthrough, f.active = false, nil
}

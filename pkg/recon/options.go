package recon

import (
	"log/slog"
	"time"
)

// Observer receives frame lifecycle notifications. Observers run on the
// goroutine that owns the tree and must not block.
type Observer interface {
	BeginFrame(frame uint64)
	EndFrame(stats FrameStats)
}

// FrameStats summarises one reconciliation pass.
type FrameStats struct {
	Frame     uint64
	Live      int
	Inserted  int
	Refreshed int
	Twins     int
	Pruned    int
	Dirty     int
	Cosmetic  int
	Duration  time.Duration
	Err       error
}

// Options configures a Tree.
type Options struct {
	// Logger receives frame summaries at debug level and misuse at warn
	// level. Default: slog.Default() with component=recon.
	Logger *slog.Logger

	// InitialCapacity preallocates node slots.
	InitialCapacity int

	// FirstFrameRelayout raises FullRelayout on the first frame.
	// Default: true.
	FirstFrameRelayout bool

	// Observers are notified at frame boundaries.
	Observers []Observer
}

// Option configures a Tree.
type Option func(*Options)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithInitialCapacity preallocates n node slots.
func WithInitialCapacity(n int) Option {
	return func(o *Options) {
		o.InitialCapacity = n
	}
}

// WithFirstFrameRelayout controls whether the first frame raises
// FullRelayout.
func WithFirstFrameRelayout(enabled bool) Option {
	return func(o *Options) {
		o.FirstFrameRelayout = enabled
	}
}

// WithObserver adds a frame observer.
func WithObserver(obs Observer) Option {
	return func(o *Options) {
		o.Observers = append(o.Observers, obs)
	}
}

func defaultOptions() Options {
	return Options{
		InitialCapacity:    64,
		FirstFrameRelayout: true,
	}
}

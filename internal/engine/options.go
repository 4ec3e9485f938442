package engine

import (
	"log/slog"
	"time"
)

// DefaultYieldThreshold is the time left in a slice below which a tick
// stops stepping units and yields.
const DefaultYieldThreshold = time.Millisecond

// Option configures a Root.
type Option func(*Root)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Root) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithYieldThreshold sets the minimum time remaining that lets a tick step
// another unit.
func WithYieldThreshold(d time.Duration) Option {
	return func(r *Root) { r.yieldThreshold = d }
}

// WithMaxUnits caps the units of work in one pass. 0 (the default) means no
// limit.
func WithMaxUnits(n int) Option {
	return func(r *Root) { r.quota = NewQuotaEnforcer(n) }
}

// WithHookOrderCheck fails a pass with HOOK_ORDER when a component's
// state-cell count or cell types change between renders.
func WithHookOrderCheck() Option {
	return func(r *Root) { r.hookCheck = true }
}

// WithIDGenerator sets the generator for the root id. Default:
// UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Root) { r.ids = g }
}

// WithMetrics reports scheduler activity to m.
func WithMetrics(m Metrics) Option {
	return func(r *Root) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithObserver registers o to receive a CommitRecord after every commit.
func WithObserver(o CommitObserver) Option {
	return func(r *Root) { r.observers = append(r.observers, o) }
}

package idle

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer trace.Tracer = otel.Tracer("weft.idle")

// DefaultSliceBudget is the length of one idle slice, roughly one frame at
// 60Hz.
const DefaultSliceBudget = 16 * time.Millisecond

// Loop is a single-goroutine event loop and idle-slice Scheduler.
//
// Thread-safety model:
//   - Submit, RequestIdleSlice, Stop: safe from any goroutine
//   - Run: must be called from exactly one goroutine; tasks and idle
//     callbacks all execute on it
//
// Queued tasks always run before idle callbacks. Idle callbacks are offered
// one slice per frame with a wall-clock deadline of SliceBudget.
type Loop struct {
	queue   *taskQueue
	budget  time.Duration
	logger  *slog.Logger
	onError func(error)

	mu     sync.Mutex
	idle   []Callback
	slices atomic.Int64
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithSliceBudget sets the slice length and frame period.
func WithSliceBudget(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d > 0 {
			l.budget = d
		}
	}
}

// WithLoopLogger sets the logger used for callback failures.
func WithLoopLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) { l.logger = logger }
}

// WithErrorHandler registers fn to receive every idle callback error. It runs
// on the loop goroutine.
func WithErrorHandler(fn func(error)) LoopOption {
	return func(l *Loop) { l.onError = fn }
}

// NewLoop creates a stopped loop. Call Run to start it.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		queue:  newTaskQueue(),
		budget: DefaultSliceBudget,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RequestIdleSlice implements Scheduler.
func (l *Loop) RequestIdleSlice(cb Callback) {
	l.mu.Lock()
	l.idle = append(l.idle, cb)
	l.mu.Unlock()
}

// Submit queues t to run on the loop goroutine. Returns false once the loop
// has been stopped.
func (l *Loop) Submit(t Task) bool {
	return l.queue.Enqueue(t)
}

// Stop makes Run return after draining already queued tasks.
func (l *Loop) Stop() {
	l.queue.Close()
}

// Slices returns how many idle slices have been run.
func (l *Loop) Slices() int64 {
	return l.slices.Load()
}

// Run processes tasks and idle slices until ctx is cancelled or Stop is
// called. Returns ctx.Err() on cancellation and nil on Stop.
func (l *Loop) Run(ctx context.Context) error {
	frame := time.NewTicker(l.budget)
	defer frame.Stop()

	for {
		if t, ok := l.queue.TryDequeue(); ok {
			t()
			continue
		}

		select {
		case <-ctx.Done():
			l.queue.Close()
			return ctx.Err()

		case <-l.queue.Wait():
			if l.queue.Closed() && l.queue.Len() == 0 {
				return nil
			}

		case <-frame.C:
			l.runSlice(ctx)
		}
	}
}

func (l *Loop) runSlice(ctx context.Context) {
	l.mu.Lock()
	batch := l.idle
	l.idle = nil
	l.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	l.slices.Add(1)

	_, span := tracer.Start(ctx, "idle.slice",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int("idle.callbacks", len(batch)),
			attribute.Int64("idle.budget_us", l.budget.Microseconds()),
		),
	)
	defer span.End()

	d := Until(time.Now().Add(l.budget))
	failed := false
	for _, cb := range batch {
		if err := cb(d); err != nil {
			failed = true
			span.RecordError(err)
			l.logger.Error("idle callback failed", "error", err)
			if l.onError != nil {
				l.onError(err)
			}
		}
	}
	if failed {
		span.SetStatus(codes.Error, "idle callback failed")
	} else {
		span.SetStatus(codes.Ok, "")
	}
}

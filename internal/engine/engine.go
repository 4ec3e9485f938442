package engine

import (
	"log/slog"
	"time"

	"github.com/roach88/weft/internal/host"
	"github.com/roach88/weft/internal/idle"
	"github.com/roach88/weft/internal/node"
)

// Root is the scheduler context of one render target.
//
// Thread-safety model: a Root is not safe for concurrent use. Render, Tick,
// Flush, state setters and host event dispatch must all happen on one
// goroutine; idle.Loop provides one.
//
// INVARIANTS:
//   - at most one work-in-progress pass exists; a new request replaces it
//   - a commit completes, including promotion of the new baseline, before
//     any unit of the next pass runs
//   - the committed tree describes the host unless diverged is set
type Root struct {
	id     string
	host   host.Host
	logger *slog.Logger
	arena  *arena
	clock  *Clock
	ids    IDGenerator

	yieldThreshold time.Duration
	quota          *QuotaEnforcer
	hookCheck      bool
	metrics        Metrics
	observers      []CommitObserver

	container host.Handle
	element   *node.Descriptor

	current   fiberRef
	wip       fiberRef
	pending   fiberRef
	deletions []fiberRef

	pass      int64
	rendering bool
	scheduler idle.Scheduler

	// mutations counts host mutations applied by the running commit.
	mutations int
	// diverged is set when a commit failed after mutating the host. The
	// committed tree no longer describes the host, so no pass may diff
	// against it until a remount.
	diverged bool
}

// New creates a Root that mutates h.
func New(h host.Host, opts ...Option) *Root {
	r := &Root{
		host:           h,
		logger:         slog.Default(),
		arena:          newArena(),
		clock:          NewClock(),
		ids:            UUIDv7Generator{},
		yieldThreshold: DefaultYieldThreshold,
		quota:          NewQuotaEnforcer(0),
		metrics:        nopMetrics{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.id = r.ids.Generate()
	return r
}

// ID returns the root id.
func (r *Root) ID() string { return r.id }

// Pass returns the number of the most recently started pass.
func (r *Root) Pass() int64 { return r.pass }

// Pending reports whether a pass is in flight.
func (r *Root) Pending() bool { return !r.wip.isNil() }

// Container returns the handle passed to Render.
func (r *Root) Container() host.Handle { return r.container }

// Diverged reports whether a failed commit left the host out of step with
// the committed tree. Passes fail until the root is remounted.
func (r *Root) Diverged() bool { return r.diverged }

// Render seeds a new pass whose root has desc as its single child, rendered
// into container. Any in-flight pass is abandoned. Nothing touches the host
// until a tick completes the pass.
//
// A container different from the previous one is a remount: the committed
// tree and its local state are forgotten and every node is placed afresh.
// Handles of the old tree stay attached to the old container.
func (r *Root) Render(desc *node.Descriptor, container host.Handle) {
	if r.container != nil && container != r.container {
		r.remount()
	}
	r.element = desc
	r.container = container
	r.startPass("render")
}

func (r *Root) remount() {
	if !r.current.isNil() {
		r.arena.drop(r.current.gen)
		r.current = fiberRef{}
	}
	r.diverged = false
	r.logger.Debug("root remounted", "root", r.id)
}

// scheduleUpdate restarts from the latest rendered element against the last
// committed tree. Called by state setters.
func (r *Root) scheduleUpdate() {
	if r.container == nil {
		return
	}
	r.startPass("state")
}

func (r *Root) startPass(reason string) {
	if !r.wip.isNil() {
		r.arena.drop(r.wip.gen)
		r.metrics.Abandoned()
		r.logger.Debug("pass abandoned",
			"root", r.id,
			"pass", r.pass,
			"units", r.quota.Current(),
		)
	}

	gen := r.arena.newGen()
	var children []*node.Descriptor
	if r.element != nil {
		children = []*node.Descriptor{r.element}
	}
	ref := r.arena.alloc(gen, &fiber{
		props:     node.Props{},
		children:  children,
		handle:    r.container,
		alternate: r.current,
	})

	r.wip = ref
	r.pending = ref
	r.deletions = nil
	r.quota.Reset()
	r.pass = r.clock.Next()

	r.logger.Debug("pass started",
		"root", r.id,
		"pass", r.pass,
		"reason", reason,
	)
}

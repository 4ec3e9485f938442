package engine

import (
	"fmt"
	"slices"

	"github.com/roach88/weft/internal/node"
)

// cell is one local-state slot of a component fiber.
type cell struct {
	value any
	typ   string // dynamic type of the seed value, for the shape check
	queue []func(any) any
}

// renderScope is the node.Scope handed to a component while it renders. It
// is valid only for the duration of that call.
type renderScope struct {
	root *Root
	f    *fiber
	old  []*cell
	next int
	done bool
}

// State implements node.Scope.
//
// The cell at the current call index of the alternate fiber is folded: its
// queued updates are applied in FIFO order to a copy, and the new cell starts
// with an empty queue. The old queue is left in place so that a restarted
// pass folds the same updates again against the same baseline.
func (s *renderScope) State(initial any) (any, func(func(any) any)) {
	if s.done {
		panic("engine: State called outside of component render")
	}
	c := &cell{value: initial, typ: fmt.Sprintf("%T", initial)}
	if s.next < len(s.old) {
		old := s.old[s.next]
		c.value = old.value
		for _, update := range slices.Clone(old.queue) {
			c.value = update(c.value)
		}
	}
	s.next++
	s.f.cells = append(s.f.cells, c)

	r := s.root
	setter := func(update func(any) any) {
		if update == nil {
			return
		}
		if r.rendering {
			r.logger.Warn("state update during render ignored",
				"root", r.id,
				"pass", r.pass,
			)
			return
		}
		c.queue = append(c.queue, update)
		r.scheduleUpdate()
	}
	return c.value, setter
}

// UseState returns the current value of the component's next state cell and
// a setter that queues an update and requests a new render pass.
//
// Calls are correlated across renders by order alone: a component must call
// UseState the same number of times, in the same order, on every render.
// WithHookOrderCheck turns a violation into a HOOK_ORDER error; without it a
// violation silently reads another cell's state.
//
//	count, setCount := engine.UseState(s, 0)
//	inc := func() { setCount(func(n int) int { return n + 1 }) }
func UseState[T any](s node.Scope, initial T) (T, func(func(T) T)) {
	v, enqueue := s.State(initial)
	cur, _ := v.(T)
	set := func(update func(T) T) {
		if update == nil {
			return
		}
		enqueue(func(prev any) any {
			p, _ := prev.(T)
			return update(p)
		})
	}
	return cur, set
}

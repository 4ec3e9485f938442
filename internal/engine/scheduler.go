package engine

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/roach88/weft/internal/idle"
	"github.com/roach88/weft/internal/node"
)

// Tick steps units of work until the walk completes or d has less than the
// yield threshold left, checking the deadline after every unit. A completed
// walk is committed before Tick returns.
//
// A failing unit or commit drops the in-flight pass and returns a wrapped
// *PassError; the last committed tree stays the baseline and nothing is
// retried. A commit that fails after it has mutated the host leaves the Root
// diverged: every later pass fails with ErrHostDiverged until Render remounts
// into a new container.
func (r *Root) Tick(d idle.Deadline) error {
	if r.wip.isNil() {
		return nil
	}
	if r.diverged {
		return r.fail(&PassError{
			Code:    ErrCodeHostFailure,
			Message: "pass refused",
			Err:     ErrHostDiverged,
		})
	}

	for !r.pending.isNil() {
		if err := r.quota.Check(); err != nil {
			return r.fail(err)
		}
		next, err := r.performUnitOfWork(r.arena.get(r.pending))
		if err != nil {
			return r.fail(err)
		}
		r.metrics.UnitDone()
		r.pending = next

		if !r.pending.isNil() && d.TimeRemaining() < r.yieldThreshold {
			r.metrics.Yielded()
			r.logger.Debug("pass yielded",
				"root", r.id,
				"pass", r.pass,
				"units", r.quota.Current(),
			)
			return nil
		}
	}

	if err := r.commitRoot(); err != nil {
		if r.mutations > 0 {
			r.diverge(err)
		}
		return r.fail(err)
	}
	return nil
}

// diverge marks the Root after a commit failed with host mutations already
// applied, recording how many on the error.
func (r *Root) diverge(err error) {
	r.diverged = true
	var pe *PassError
	if errors.As(err, &pe) {
		if pe.Details == nil {
			pe.Details = make(map[string]string)
		}
		pe.Details["applied"] = strconv.Itoa(r.mutations)
		pe.Details["diverged"] = "true"
	}
	r.logger.Warn("host tree diverged",
		"root", r.id,
		"pass", r.pass,
		"applied", r.mutations,
	)
}

// Flush runs the in-flight pass, if any, to completion.
func (r *Root) Flush() error {
	return r.Tick(idle.Unbounded{})
}

// Start arms a persistent loop on s: every slice runs Tick and then requests
// the next slice, whether or not work remains.
func (r *Root) Start(s idle.Scheduler) {
	r.scheduler = s
	s.RequestIdleSlice(r.onIdle)
}

func (r *Root) onIdle(d idle.Deadline) error {
	err := r.Tick(d)
	r.scheduler.RequestIdleSlice(r.onIdle)
	return err
}

// performUnitOfWork processes one fiber and returns the next in pre-order.
func (r *Root) performUnitOfWork(f *fiber) (fiberRef, error) {
	var children []*node.Descriptor

	switch {
	case f.kind.IsComponent():
		child, err := r.renderComponent(f)
		if err != nil {
			return fiberRef{}, err
		}
		if child != nil {
			children = []*node.Descriptor{child}
		}

	case f.isHost():
		if f.handle == nil {
			h, err := r.host.CreateHandle(f.kind, f.props.Attrs())
			if err != nil {
				return fiberRef{}, newHostError("create handle", r.arena.path(f), err)
			}
			f.handle = h
		}
		children = f.children

	default:
		children = f.children
	}

	r.reconcileChildren(f, children)
	return r.nextUnit(f), nil
}

func (r *Root) renderComponent(f *fiber) (*node.Descriptor, error) {
	comp := f.kind.ComponentType()
	alt := r.arena.get(f.alternate)
	var prev []*cell
	if alt != nil {
		prev = alt.cells
	}

	scope := &renderScope{root: r, f: f, old: prev}
	r.rendering = true
	defer func() {
		r.rendering = false
		scope.done = true
	}()

	child := comp.Render(scope, f.props)

	if r.hookCheck {
		if err := checkCellShape(prev, f.cells, alt != nil); err != nil {
			var pe *PassError
			if errors.As(err, &pe) {
				pe.Fiber = r.arena.path(f)
			}
			return nil, err
		}
	}
	return child, nil
}

// nextUnit is strict depth-first pre-order: first child, else the nearest
// sibling of f or of an ancestor. The walk ends at the root.
func (r *Root) nextUnit(f *fiber) fiberRef {
	if !f.child.isNil() {
		return f.child
	}
	for n := f; n != nil; n = r.arena.get(n.parent) {
		if !n.sibling.isNil() {
			return n.sibling
		}
	}
	return fiberRef{}
}

// fail drops the in-flight pass and returns err annotated with the root and
// pass.
func (r *Root) fail(err error) error {
	var pe *PassError
	if !errors.As(err, &pe) {
		pe = &PassError{Code: ErrCodeHostFailure, Message: "pass failed", Err: err}
		err = pe
	}
	pe.RootID = r.id
	pe.Pass = r.pass

	r.arena.drop(r.wip.gen)
	r.wip = fiberRef{}
	r.pending = fiberRef{}
	r.deletions = nil

	r.metrics.Failed(pe.Code)
	r.logger.Error("pass failed",
		"root", r.id,
		"pass", r.pass,
		"code", string(pe.Code),
		"fiber", pe.Fiber,
		"error", err,
	)
	return fmt.Errorf("tick root %s: %w", r.id, err)
}

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/roach88/weft/internal/engine"
)

// Recorder journals commits as they happen. Register it with
// engine.WithObserver and report tick failures through RecordFailure.
//
// Commit observers cannot fail a pass, so write errors are collected and
// returned by Err.
type Recorder struct {
	ctx      context.Context
	store    *Store
	snapshot func() string

	mu   sync.Mutex
	errs []error
}

// NewRecorder returns a Recorder writing to s. snapshot, if non-nil, is called
// after each commit and its result stored with the pass.
func NewRecorder(ctx context.Context, s *Store, snapshot func() string) *Recorder {
	return &Recorder{ctx: ctx, store: s, snapshot: snapshot}
}

// OnCommit implements engine.CommitObserver.
func (r *Recorder) OnCommit(rec engine.CommitRecord) {
	var snap string
	if r.snapshot != nil {
		snap = r.snapshot()
	}
	r.record(r.store.WriteCommit(r.ctx, rec, snap))
}

// RecordFailure journals err if it is a *engine.PassError. Other errors are
// ignored.
func (r *Recorder) RecordFailure(err error) {
	var pe *engine.PassError
	if errors.As(err, &pe) {
		r.record(r.store.WriteFailure(r.ctx, pe))
	}
}

func (r *Recorder) record(err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

// Err returns every write error so far, joined.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return errors.Join(r.errs...)
}

package idle

import "errors"

// Manual is a Scheduler that runs callbacks only when Fire is called.
type Manual struct {
	pending []Callback
	fired   int
}

// NewManual returns an empty manual driver.
func NewManual() *Manual { return &Manual{} }

// RequestIdleSlice implements Scheduler.
func (m *Manual) RequestIdleSlice(cb Callback) {
	m.pending = append(m.pending, cb)
}

// Pending returns the number of callbacks waiting for a slice.
func (m *Manual) Pending() int { return len(m.pending) }

// Fired returns how many slices have been fired.
func (m *Manual) Fired() int { return m.fired }

// Fire opens one slice with deadline d and runs every callback that was
// pending when Fire was called. Callbacks requested during the slice wait for
// the next one. Errors from all callbacks are joined.
func (m *Manual) Fire(d Deadline) error {
	batch := m.pending
	m.pending = nil
	m.fired++
	var errs []error
	for _, cb := range batch {
		if err := cb(d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

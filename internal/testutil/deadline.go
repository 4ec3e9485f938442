package testutil

import (
	"sync"
	"time"
)

// UnitDeadline is an idle deadline that allows exactly n units of work per
// tick. The engine checks the deadline after every unit, so the first n-1
// checks report plenty of time and the n-th reports none.
//
// Thread-safety: safe for concurrent use, though the engine only calls it
// from one goroutine.
type UnitDeadline struct {
	mu    sync.Mutex
	n     int
	calls int
}

// NewUnitDeadline returns a deadline that yields after n units.
func NewUnitDeadline(n int) *UnitDeadline {
	return &UnitDeadline{n: n}
}

// TimeRemaining implements idle.Deadline.
func (d *UnitDeadline) TimeRemaining() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.calls < d.n {
		return time.Hour
	}
	return 0
}

// Calls returns how many times the deadline was consulted.
func (d *UnitDeadline) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// Reset starts a new tick with the same allowance.
func (d *UnitDeadline) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = 0
}

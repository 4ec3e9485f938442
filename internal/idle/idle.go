// Package idle supplies the time-slice port the engine's work loop runs on.
//
// A Scheduler hands out idle slices: it calls back with a Deadline whose
// TimeRemaining shrinks as the slice is used. The engine requests one slice at
// a time and re-requests after every callback.
//
// Two drivers are provided. Manual fires slices only when told to and is
// used by tests and the scenario harness for deterministic stepping. Loop owns
// a goroutine, runs submitted tasks and offers an idle slice once per frame.
package idle

import (
	"math"
	"time"
)

// Deadline reports how much of the current slice is left.
type Deadline interface {
	TimeRemaining() time.Duration
}

// Callback runs inside an idle slice. A returned error is reported by the
// driver; it does not stop the driver.
type Callback func(d Deadline) error

// Scheduler is the idle-slice oracle. RequestIdleSlice registers cb to run
// once in a future slice.
type Scheduler interface {
	RequestIdleSlice(cb Callback)
}

// Unbounded is a Deadline that never runs out.
type Unbounded struct{}

// TimeRemaining implements Deadline.
func (Unbounded) TimeRemaining() time.Duration { return math.MaxInt64 }

// Expired is a Deadline with no time left.
type Expired struct{}

// TimeRemaining implements Deadline.
func (Expired) TimeRemaining() time.Duration { return 0 }

type wallDeadline struct {
	until time.Time
	now   func() time.Time
}

func (d wallDeadline) TimeRemaining() time.Duration {
	if left := d.until.Sub(d.now()); left > 0 {
		return left
	}
	return 0
}

// Until returns a wall-clock Deadline ending at t.
func Until(t time.Time) Deadline {
	return wallDeadline{until: t, now: time.Now}
}

// FuncDeadline adapts a function to Deadline.
type FuncDeadline func() time.Duration

// TimeRemaining implements Deadline.
func (f FuncDeadline) TimeRemaining() time.Duration { return f() }

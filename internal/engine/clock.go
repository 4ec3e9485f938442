package engine

// Clock is a monotonic counter stamping render passes. Pass numbers order
// log lines, commit records and journal rows without wall-clock time.
//
// A Clock belongs to one Root and shares its goroutine.
type Clock struct {
	seq int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next pass number.
func (c *Clock) Next() int64 {
	c.seq++
	return c.seq
}

// Current returns the last issued pass number.
func (c *Clock) Current() int64 {
	return c.seq
}

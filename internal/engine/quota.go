package engine

import "fmt"

// QuotaEnforcer counts units of work in one pass and enforces a maximum.
//
// A component that renders itself unconditionally never lets a pass finish;
// the quota turns that into a UNIT_QUOTA error instead of an endless walk
// that yields forever. A limit of 0 disables the check.
type QuotaEnforcer struct {
	maxUnits int
	current  int
}

// NewQuotaEnforcer creates an enforcer with the given limit.
func NewQuotaEnforcer(maxUnits int) *QuotaEnforcer {
	return &QuotaEnforcer{maxUnits: maxUnits}
}

// Check counts one unit and validates against the limit.
func (q *QuotaEnforcer) Check() error {
	q.current++
	if q.maxUnits > 0 && q.current > q.maxUnits {
		return &PassError{
			Code:    ErrCodeUnitQuota,
			Message: fmt.Sprintf("pass exceeded max units (%d > %d)", q.current, q.maxUnits),
			Details: map[string]string{
				"units":     fmt.Sprintf("%d", q.current),
				"max_units": fmt.Sprintf("%d", q.maxUnits),
			},
		}
	}
	return nil
}

// Reset sets the counter back to 0 for a new pass.
func (q *QuotaEnforcer) Reset() { q.current = 0 }

// Current returns the units counted so far.
func (q *QuotaEnforcer) Current() int { return q.current }

// MaxUnits returns the limit.
func (q *QuotaEnforcer) MaxUnits() int { return q.maxUnits }

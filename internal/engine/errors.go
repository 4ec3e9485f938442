package engine

import (
	"errors"
	"fmt"
)

// PassError is returned when a render pass cannot complete. The pass is
// dropped; the previously committed tree stays the baseline.
type PassError struct {
	// Code identifies the error category.
	Code PassErrorCode

	// Message is a human-readable description.
	Message string

	// RootID identifies the render target.
	RootID string

	// Pass is the sequence number of the failed pass.
	Pass int64

	// Fiber is the path of the fiber being processed, when known.
	Fiber string

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying cause, e.g. the host error.
	Err error
}

// ErrHostDiverged is the cause of every pass a diverged Root refuses to run.
var ErrHostDiverged = errors.New("host tree diverged from committed tree")

// PassErrorCode categorizes pass failures.
type PassErrorCode string

const (
	// ErrCodeHostFailure indicates a host-tree operation failed.
	ErrCodeHostFailure PassErrorCode = "HOST_FAILURE"

	// ErrCodeUnitQuota indicates a pass exceeded its unit-of-work quota.
	ErrCodeUnitQuota PassErrorCode = "UNIT_QUOTA"

	// ErrCodeHookOrder indicates a component changed its state-cell shape
	// between renders.
	ErrCodeHookOrder PassErrorCode = "HOOK_ORDER"
)

// Error implements the error interface.
func (e *PassError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Fiber != "" {
		msg += fmt.Sprintf(" (root=%s, pass=%d, fiber=%s)", e.RootID, e.Pass, e.Fiber)
	} else if e.RootID != "" {
		msg += fmt.Sprintf(" (root=%s, pass=%d)", e.RootID, e.Pass)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *PassError) Unwrap() error { return e.Err }

func hasCode(err error, code PassErrorCode) bool {
	var pe *PassError
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

// IsHostError reports whether err is a host-operation failure.
func IsHostError(err error) bool { return hasCode(err, ErrCodeHostFailure) }

// IsQuotaError reports whether err is a unit-quota failure.
func IsQuotaError(err error) bool { return hasCode(err, ErrCodeUnitQuota) }

// IsHookOrderError reports whether err is a state-cell shape violation.
func IsHookOrderError(err error) bool { return hasCode(err, ErrCodeHookOrder) }

// newHostError wraps a host failure during op on the fiber at path.
func newHostError(op, path string, err error) *PassError {
	return &PassError{
		Code:    ErrCodeHostFailure,
		Message: op + " failed",
		Fiber:   path,
		Err:     err,
	}
}

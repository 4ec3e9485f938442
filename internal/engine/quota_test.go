package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkAfter counts n units and returns the first error.
func (q *QuotaEnforcer) checkAfter(n int) error {
	for i := 0; i < n; i++ {
		if err := q.Check(); err != nil {
			return err
		}
	}
	return nil
}

func TestQuotaEnforcer_WithinLimit(t *testing.T) {
	q := NewQuotaEnforcer(10)
	require.NoError(t, q.checkAfter(10))
	assert.Equal(t, 10, q.Current())
	assert.Equal(t, 10, q.MaxUnits())
}

func TestQuotaEnforcer_ExceedsLimit(t *testing.T) {
	q := NewQuotaEnforcer(5)
	err := q.checkAfter(6)
	require.Error(t, err)
	assert.True(t, IsQuotaError(err))

	var pe *PassError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "6", pe.Details["units"])
	assert.Equal(t, "5", pe.Details["max_units"])
}

func TestQuotaEnforcer_Reset(t *testing.T) {
	q := NewQuotaEnforcer(5)
	require.NoError(t, q.checkAfter(5))
	q.Reset()
	assert.Zero(t, q.Current())
	assert.NoError(t, q.checkAfter(5))
}

func TestQuotaEnforcer_ZeroDisables(t *testing.T) {
	q := NewQuotaEnforcer(0)
	assert.NoError(t, q.checkAfter(10000))
}

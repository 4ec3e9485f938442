package idle

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeadlines(t *testing.T) {
	assert.Greater(t, Unbounded{}.TimeRemaining(), time.Hour)
	assert.Zero(t, Expired{}.TimeRemaining())
	assert.Zero(t, Until(time.Now().Add(-time.Second)).TimeRemaining())
	assert.Greater(t, Until(time.Now().Add(time.Hour)).TimeRemaining(), time.Minute)
	assert.Equal(t, 3*time.Millisecond, FuncDeadline(func() time.Duration { return 3 * time.Millisecond }).TimeRemaining())
}

func TestManual_FireRunsPendingOnly(t *testing.T) {
	m := NewManual()
	var runs int
	var rearm Callback
	rearm = func(Deadline) error {
		runs++
		m.RequestIdleSlice(rearm)
		return nil
	}
	m.RequestIdleSlice(rearm)

	require.NoError(t, m.Fire(Unbounded{}))
	assert.Equal(t, 1, runs)
	assert.Equal(t, 1, m.Pending())

	require.NoError(t, m.Fire(Unbounded{}))
	assert.Equal(t, 2, runs)
	assert.Equal(t, 2, m.Fired())
}

func TestManual_FirePassesDeadline(t *testing.T) {
	m := NewManual()
	var got time.Duration
	m.RequestIdleSlice(func(d Deadline) error {
		got = d.TimeRemaining()
		return nil
	})
	require.NoError(t, m.Fire(Expired{}))
	assert.Zero(t, got)
}

func TestManual_FireJoinsErrors(t *testing.T) {
	m := NewManual()
	a := errors.New("a")
	b := errors.New("b")
	m.RequestIdleSlice(func(Deadline) error { return a })
	m.RequestIdleSlice(func(Deadline) error { return nil })
	m.RequestIdleSlice(func(Deadline) error { return b })

	err := m.Fire(Unbounded{})
	assert.ErrorIs(t, err, a)
	assert.ErrorIs(t, err, b)
	assert.Zero(t, m.Pending())
}

package idle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLoop(opts ...LoopOption) *Loop {
	opts = append([]LoopOption{
		WithLoopLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithSliceBudget(time.Millisecond),
	}, opts...)
	return NewLoop(opts...)
}

func runAsync(t *testing.T, l *Loop, ctx context.Context) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	return done
}

func TestLoop_SubmitRunsInOrder(t *testing.T) {
	l := quietLoop()
	var got []int
	for i := 1; i <= 3; i++ {
		i := i
		require.True(t, l.Submit(func() { got = append(got, i) }))
	}
	l.Stop()

	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, []int{1, 2, 3}, got)
	assert.False(t, l.Submit(func() {}))
}

func TestLoop_IdleSliceGetsBudget(t *testing.T) {
	l := quietLoop()
	seen := make(chan time.Duration, 1)
	l.RequestIdleSlice(func(d Deadline) error {
		seen <- d.TimeRemaining()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(t, l, ctx)

	select {
	case left := <-seen:
		assert.LessOrEqual(t, left, time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("idle callback never ran")
	}
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.EqualValues(t, 1, l.Slices())
}

func TestLoop_RearmedCallbackRunsEachFrame(t *testing.T) {
	l := quietLoop()
	runs := make(chan struct{}, 16)
	var cb Callback
	cb = func(Deadline) error {
		runs <- struct{}{}
		l.RequestIdleSlice(cb)
		return nil
	}
	l.RequestIdleSlice(cb)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(t, l, ctx)
	for i := 0; i < 3; i++ {
		select {
		case <-runs:
		case <-time.After(2 * time.Second):
			t.Fatalf("slice %d never ran", i)
		}
	}
	cancel()
	<-done
	assert.GreaterOrEqual(t, l.Slices(), int64(3))
}

func TestLoop_CallbackErrorsReported(t *testing.T) {
	boom := errors.New("boom")
	errs := make(chan error, 1)
	l := quietLoop(WithErrorHandler(func(err error) { errs <- err }))
	l.RequestIdleSlice(func(Deadline) error { return boom })

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(t, l, ctx)
	select {
	case err := <-errs:
		assert.ErrorIs(t, err, boom)
	case <-time.After(2 * time.Second):
		t.Fatal("error handler never called")
	}
	cancel()
	<-done
}

func TestLoop_StopFromTask(t *testing.T) {
	l := quietLoop()
	require.True(t, l.Submit(l.Stop))

	select {
	case err := <-runAsync(t, l, context.Background()):
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

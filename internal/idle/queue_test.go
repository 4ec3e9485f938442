package idle

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueue_FIFO(t *testing.T) {
	q := newTaskQueue()
	var got []int
	for i := 1; i <= 3; i++ {
		i := i
		require.True(t, q.Enqueue(func() { got = append(got, i) }))
	}
	for {
		task, ok := q.TryDequeue()
		if !ok {
			break
		}
		task()
	}
	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Zero(t, q.Len())
}

func TestTaskQueue_EnqueueAfterClose(t *testing.T) {
	q := newTaskQueue()
	q.Close()
	q.Close() // idempotent

	assert.False(t, q.Enqueue(func() {}))
	assert.True(t, q.Closed())

	_, open := <-q.Wait()
	assert.False(t, open, "signal channel should be closed")
}

func TestTaskQueue_ConcurrentEnqueue(t *testing.T) {
	q := newTaskQueue()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Enqueue(func() {})
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, q.Len())
}

package dispatch

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_Ordering(t *testing.T) {
	q := NewQueue("test")
	defer q.Close()

	var order []int
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		i := i
		ok := q.Async(func() {
			order = append(order, i)
			if i == 9 {
				close(done)
			}
		})
		require.True(t, ok)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queued tasks did not run")
	}

	require.Len(t, order, 10)
	for i, v := range order {
		assert.Equal(t, i, v, "tasks run in submission order")
	}
}

func TestQueue_Sync(t *testing.T) {
	q := NewQueue("test")
	defer q.Close()

	ran := false
	ok := q.Sync(func() { ran = true })
	assert.True(t, ok)
	assert.True(t, ran, "Sync returns only after the task finished")
}

func TestQueue_AsyncNilTask(t *testing.T) {
	q := NewQueue("test")
	defer q.Close()
	assert.False(t, q.Async(nil))
}

func TestQueue_CloseDrainsPending(t *testing.T) {
	q := NewQueue("test")

	var ran int32
	for i := 0; i < 20; i++ {
		require.True(t, q.Async(func() {
			atomic.AddInt32(&ran, 1)
		}))
	}

	q.Close()
	assert.Equal(t, int32(20), atomic.LoadInt32(&ran), "Close waits for queued tasks")
}

func TestQueue_AsyncAfterClose(t *testing.T) {
	q := NewQueue("test")
	q.Close()
	q.Close() // idempotent

	assert.False(t, q.Async(func() {}))
	assert.False(t, q.Sync(func() {}))
}

func TestQueue_PanicRecovery(t *testing.T) {
	q := NewQueue("test")
	defer q.Close()

	require.True(t, q.Async(func() { panic("boom") }))

	// the worker survives the panic and keeps processing
	ran := false
	ok := q.Sync(func() { ran = true })
	assert.True(t, ok)
	assert.True(t, ran)
}

func TestQueue_Name(t *testing.T) {
	q := NewQueue("delegate")
	defer q.Close()
	assert.Equal(t, "delegate", q.Name())
}

func TestNewQueueWithBuffer_InvalidBuffer(t *testing.T) {
	q := NewQueueWithBuffer("test", -1)
	defer q.Close()
	assert.True(t, q.Sync(func() {}))
}

func BenchmarkQueue_Async(b *testing.B) {
	q := NewQueue("bench")
	defer q.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Async(func() {})
	}
}

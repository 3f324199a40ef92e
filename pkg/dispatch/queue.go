// Package dispatch provides a serial callback queue used as the delivery
// context for asynchronous SDK notifications. A Room created with a queue
// keeps a reference to it for the Room's whole lifetime.
package dispatch

import (
	"fmt"
	"sync"

	"github.com/alclab/alvideo/pkg/logger"
	"go.uber.org/zap"
)

const defaultBuffer = 64

// Queue executes submitted callbacks one at a time, in submission order, on a
// single worker goroutine. The zero value is not usable; create queues with
// NewQueue.
type Queue struct {
	name   string
	tasks  chan func()
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

// NewQueue creates a serial queue and starts its worker.
func NewQueue(name string) *Queue {
	return NewQueueWithBuffer(name, defaultBuffer)
}

// NewQueueWithBuffer creates a serial queue with a custom pending-task buffer.
func NewQueueWithBuffer(name string, buffer int) *Queue {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	q := &Queue{
		name:  name,
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	for task := range q.tasks {
		q.invoke(task)
	}
	close(q.done)
}

func (q *Queue) invoke(task func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("dispatch: task panicked",
				zap.String("queue", q.name),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	task()
}

// Name returns the queue's label.
func (q *Queue) Name() string {
	return q.name
}

// Async submits a callback for execution. It reports false when the queue has
// been closed or the callback is nil.
func (q *Queue) Async(task func()) bool {
	if task == nil {
		return false
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return false
	}
	q.tasks <- task
	return true
}

// Sync submits a callback and waits for it to finish. Calling Sync from a
// task already running on the queue would deadlock.
func (q *Queue) Sync(task func()) bool {
	finished := make(chan struct{})
	ok := q.Async(func() {
		defer close(finished)
		task()
	})
	if !ok {
		return false
	}
	<-finished
	return true
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int {
	return len(q.tasks)
}

// Close stops accepting tasks, drains the ones already queued and waits for
// the worker to exit. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()
	<-q.done
}

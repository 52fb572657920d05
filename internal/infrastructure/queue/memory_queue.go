package queue

import (
	"context"
	"sync"

	"genbot-api/internal/infrastructure/metrics"
)

// MemoryQueue is a bounded in-process task queue. Webhook handling never
// blocks on it: when full, tasks are dropped and counted.
type MemoryQueue struct {
	mu     sync.RWMutex
	tasks  chan Task
	closed bool
}

// NewMemoryQueue builds a queue holding at most capacity tasks.
func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = 256
	}
	return &MemoryQueue{
		tasks: make(chan Task, capacity),
	}
}

// Enqueue adds a task without blocking.
func (q *MemoryQueue) Enqueue(task Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueFull
	}

	select {
	case q.tasks <- task:
		metrics.QueueDepth.Inc()
		return nil
	default:
		metrics.QueueDrops.Inc()
		return ErrQueueFull
	}
}

// Dequeue blocks until a task is available, the queue is closed and drained,
// or the context is done.
func (q *MemoryQueue) Dequeue(ctx context.Context) (Task, bool) {
	select {
	case task, ok := <-q.tasks:
		if !ok {
			return Task{}, false
		}
		metrics.QueueDepth.Dec()
		return task, true
	case <-ctx.Done():
		return Task{}, false
	}
}

// Close stops accepting tasks. Pending tasks remain drainable through
// Dequeue until the channel is empty.
func (q *MemoryQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.tasks)
}

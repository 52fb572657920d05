package queue

import (
	"context"
	"errors"
	"time"
)

// Task is one inbound message extracted from a webhook delivery, waiting for
// a worker.
type Task struct {
	UserID            string
	Text              string
	PlatformMessageID string
	DisplayName       string
	QueuedAt          time.Time
}

// ErrQueueFull is returned when the queue cannot accept another task.
var ErrQueueFull = errors.New("task queue is full")

// TaskQueue hands tasks from the webhook handler to the worker pool.
type TaskQueue interface {
	// Enqueue adds a task without blocking. Returns ErrQueueFull when the
	// queue is at capacity.
	Enqueue(task Task) error
	// Dequeue blocks until a task is available or the context is done.
	Dequeue(ctx context.Context) (Task, bool)
	// Close stops the queue; pending tasks remain drainable.
	Close()
}

package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"genbot-api/internal/domain/pipeline"
	"genbot-api/internal/infrastructure/queue"
)

// Worker drains tasks from the queue and runs the pipeline for each. A task
// failure is logged and never stops the worker.
type Worker struct {
	id          int
	queue       queue.TaskQueue
	pipeline    *pipeline.Service
	taskTimeout time.Duration
	logger      zerolog.Logger
}

// NewWorker builds a worker.
func NewWorker(id int, q queue.TaskQueue, svc *pipeline.Service, taskTimeout time.Duration, logger zerolog.Logger) *Worker {
	return &Worker{
		id:          id,
		queue:       q,
		pipeline:    svc,
		taskTimeout: taskTimeout,
		logger:      logger.With().Str("component", "worker").Int("worker_id", id).Logger(),
	}
}

// Run processes tasks until the context is done or the queue is closed and
// drained.
func (w *Worker) Run(ctx context.Context) {
	for {
		task, ok := w.queue.Dequeue(ctx)
		if !ok {
			w.logger.Debug().Msg("worker stopping")
			return
		}
		w.handle(ctx, task)
	}
}

func (w *Worker) handle(ctx context.Context, task queue.Task) {
	taskCtx := ctx
	cancel := func() {}
	if w.taskTimeout > 0 {
		taskCtx, cancel = context.WithTimeout(ctx, w.taskTimeout)
	}
	defer cancel()

	w.pipeline.ProcessInbound(taskCtx, pipeline.InboundMessage{
		UserID:            task.UserID,
		Text:              task.Text,
		PlatformMessageID: task.PlatformMessageID,
		DisplayName:       task.DisplayName,
	})

	w.logger.Debug().
		Str("platform_message_id", task.PlatformMessageID).
		Dur("queue_wait", time.Since(task.QueuedAt)).
		Msg("task processed")
}

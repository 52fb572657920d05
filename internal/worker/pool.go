package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"genbot-api/internal/domain/pipeline"
	"genbot-api/internal/infrastructure/queue"
)

// Pool runs a fixed set of workers over a shared queue.
type Pool struct {
	workers []*Worker
	queue   queue.TaskQueue
	logger  zerolog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPool builds a pool of count workers.
func NewPool(count int, q queue.TaskQueue, svc *pipeline.Service, taskTimeout time.Duration, logger zerolog.Logger) *Pool {
	if count <= 0 {
		count = 1
	}

	workers := make([]*Worker, count)
	for i := range workers {
		workers[i] = NewWorker(i+1, q, svc, taskTimeout, logger)
	}

	return &Pool{
		workers: workers,
		queue:   q,
		logger:  logger.With().Str("component", "worker-pool").Logger(),
	}
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(runCtx)
		}(w)
	}

	p.logger.Info().Int("workers", len(p.workers)).Msg("worker pool started")
}

// Stop closes the queue, lets workers drain pending tasks, and waits for them
// to exit, up to the given grace period.
func (p *Pool) Stop(grace time.Duration) {
	p.queue.Close()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info().Msg("worker pool stopped")
	case <-time.After(grace):
		p.logger.Warn().Msg("worker pool stop timed out, cancelling in-flight tasks")
		if p.cancel != nil {
			p.cancel()
		}
		<-done
	}

	if p.cancel != nil {
		p.cancel()
	}
}

package checkout

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"goflare.io/checkout/models"
)

// ProcessFunc handles one webhook event on a worker goroutine.
type ProcessFunc func(context.Context, *models.WebhookEvent) error

type Worker struct {
	ID         int
	WorkerPool chan chan WorkRequest
	JobChannel chan WorkRequest
	quit       chan struct{}
	process    ProcessFunc
	logger     *zap.Logger
}

type WorkRequest struct {
	Event *models.WebhookEvent
	Ctx   context.Context
}

func NewWorker(id int, workerPool chan chan WorkRequest, process ProcessFunc, logger *zap.Logger) Worker {
	return Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan WorkRequest),
		quit:       make(chan struct{}),
		process:    process,
		logger:     logger,
	}
}

func (w Worker) Start(wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				w.logger.Info("Processing webhook event",
					zap.Int("worker_id", w.ID),
					zap.String("event_type", job.Event.Type),
					zap.String("session_id", job.Event.SessionID))

				if err := w.process(job.Ctx, job.Event); err != nil {
					w.logger.Error("Failed to process webhook event",
						zap.Error(err),
						zap.String("event_type", job.Event.Type),
						zap.String("session_id", job.Event.SessionID))
				}

			case <-w.quit:
				return
			}
		}
	}()
}

func (w Worker) Stop() {
	close(w.quit)
}

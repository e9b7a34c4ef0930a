package checkout

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"goflare.io/checkout/models"
)

// Dispatcher hands webhook events to a fixed set of workers through a bounded
// queue.
type Dispatcher struct {
	WorkerPool chan chan WorkRequest
	maxWorkers int
	jobQueue   chan WorkRequest
	process    ProcessFunc
	logger     *zap.Logger
	workers    []Worker
	workerWG   sync.WaitGroup
	stop       chan struct{}
	done       chan struct{}
	stopped    bool
	mu         sync.Mutex
}

func NewDispatcher(maxWorkers int, jobQueueSize int, process ProcessFunc, logger *zap.Logger) *Dispatcher {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if jobQueueSize < 0 {
		jobQueueSize = 0
	}
	return &Dispatcher{
		WorkerPool: make(chan chan WorkRequest, maxWorkers),
		maxWorkers: maxWorkers,
		jobQueue:   make(chan WorkRequest, jobQueueSize),
		process:    process,
		logger:     logger,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (d *Dispatcher) Run() {
	d.mu.Lock()
	for i := 0; i < d.maxWorkers; i++ {
		worker := NewWorker(i+1, d.WorkerPool, d.process, d.logger)
		worker.Start(&d.workerWG)
		d.workers = append(d.workers, worker)
	}
	d.mu.Unlock()

	go d.dispatch()
}

// Submit queues the event without blocking. It returns false when the queue
// is full or the dispatcher is stopped.
func (d *Dispatcher) Submit(ctx context.Context, event *models.WebhookEvent) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return false
	}

	select {
	case d.jobQueue <- WorkRequest{Event: event, Ctx: ctx}:
		return true
	default:
		d.logger.Warn("Webhook queue is full, dropping event",
			zap.String("event_type", event.Type),
			zap.String("session_id", event.SessionID))
		return false
	}
}

func (d *Dispatcher) dispatch() {
	defer close(d.done)

	for {
		select {
		case job := <-d.jobQueue:
			d.handOff(job)
		case <-d.stop:
			// drain what was accepted before Stop
			for {
				select {
				case job := <-d.jobQueue:
					d.handOff(job)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) handOff(job WorkRequest) {
	select {
	case jobChannel := <-d.WorkerPool:
		jobChannel <- job
	case <-job.Ctx.Done():
		d.logger.Warn("Job context canceled while waiting for available worker",
			zap.Error(job.Ctx.Err()),
			zap.String("event_type", job.Event.Type),
			zap.String("session_id", job.Event.SessionID))
	}
}

// Stop processes the queued events, then stops the workers and waits for them.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.stop)
	d.mu.Unlock()

	<-d.done

	d.mu.Lock()
	for _, worker := range d.workers {
		worker.Stop()
	}
	d.workers = nil
	d.mu.Unlock()

	d.workerWG.Wait()
}

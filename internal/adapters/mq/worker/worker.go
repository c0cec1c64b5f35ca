// Package worker runs blocking jobs off the caller's goroutine.
//
// A Pool owns a fixed set of workers reading from a bounded queue. Callers
// submit a blocking function with Do and wait for its result, so the number
// of concurrent outbound calls stays bounded by the worker count.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/onthisday/internal/adapters/mq/queue"
	"github.com/okian/onthisday/pkg/logger"
	"github.com/okian/onthisday/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Job is what workers read off the queue.
type Job = queue.Job

// Queue defines how the pool hands jobs to workers.
type Queue interface {
	Enqueue(ctx context.Context, j Job) bool
	Dequeue(ctx context.Context) <-chan Job
	Len(ctx context.Context) int
	Close() error
	IsClosed() bool
}

// Worker runs jobs from a queue.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue is drained and closed.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining the queue.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue Queue
	name  string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			metrics.UpdateQueueSize(w.queue.Len(ctx))
			w.process(job)
		}
	}
}

// Shutdown stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once the worker loop has exited.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

// process runs one job and delivers its result. Done is buffered, so the
// send never blocks even when the submitter gave up waiting.
func (w *InMemoryWorker) process(job Job) { //nolint:gocritic // hugeParam: Job is passed by value over the channel
	ctx := job.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	if err := ctx.Err(); err != nil {
		job.Done <- queue.Result{Err: err}
		return
	}

	start := time.Now()
	value, err := w.runSafely(ctx, job)
	latency := time.Since(start)
	metrics.RecordWorkerJobLatency(float64(latency.Milliseconds()))

	if err != nil {
		metrics.RecordWorkerJobFailure()
		w.logger.Debug(ctx, "job failed",
			logger.String("job_id", job.ID),
			logger.Duration("latency", latency),
			logger.Error(err),
		)
	}
	job.Done <- queue.Result{Value: value, Err: err}
}

func (w *InMemoryWorker) runSafely(ctx context.Context, job Job) (value string, err error) { //nolint:gocritic // hugeParam
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error(ctx, "job panicked", logger.String("job_id", job.ID), logger.Any("panic", r))
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return job.Run(ctx)
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	logger logger.Logger
}

// NewPool creates a new worker pool. A workerCount below one uses a multiple of the CPU count.
func NewPool(workerCount int, q Queue) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(q, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Do runs fn on a pool worker and waits for its result. It fails fast with
// ErrBackpressure when the queue is full and ErrStopped once the pool is shut
// down. If ctx ends first, Do returns ctx.Err() and the job result is dropped.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	job := Job{
		ID:   uuid.NewString(),
		Ctx:  ctx,
		Run:  fn,
		Done: make(chan queue.Result, 1),
	}

	if !p.queue.Enqueue(ctx, job) {
		switch {
		case p.queue.IsClosed():
			return "", ErrStopped
		case ctx.Err() != nil:
			return "", ctx.Err()
		default:
			return "", ErrBackpressure
		}
	}

	select {
	case res := <-job.Done:
		return res.Value, res.Err
	case <-ctx.Done():
		p.logger.Debug(ctx, "caller stopped waiting for job", logger.String("job_id", job.ID))
		return "", ctx.Err()
	}
}

// Shutdown closes the queue and waits for workers to drain it. Workers still
// busy when ctx (or the pool timeout) expires are told to stop.
func (p *Pool) Shutdown(ctx context.Context) error {
	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "error closing queue", logger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, worker := range p.workers {
		select {
		case <-worker.Done():
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	if timedOut {
		for _, worker := range p.workers {
			_ = worker.Shutdown(shutdownCtx)
		}
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}

	metrics.UpdateWorkerCount(0)
	return nil
}

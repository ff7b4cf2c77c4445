package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/b2breeze/internal/common"
	"github.com/joseph-ayodele/b2breeze/internal/telemetry"
)

type ProcessorQueue struct {
	proc     FileProcessor
	logger   *slog.Logger
	tel      *telemetry.Provider
	onResult ResultFunc
	workers  int
	timeout  time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	base   context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

var _ Queue = (*ProcessorQueue)(nil)

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func WithTelemetry(p *telemetry.Provider) Option {
	return func(q *ProcessorQueue) { q.tel = p }
}

func WithResultFunc(fn ResultFunc) Option {
	return func(q *ProcessorQueue) { q.onResult = fn }
}

func NewProcessorQueue(proc FileProcessor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.base, q.cancel = context.WithCancel(context.Background())
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go q.work(i + 1)
		}
	})
}

func (q *ProcessorQueue) work(workerID int) {
	defer q.wg.Done()
	q.logger.Debug("worker started", "worker_id", workerID)

	for job := range q.ch {
		q.tel.SetQueueDepth(len(q.ch))
		done := q.tel.WorkerStarted()

		ctx, cancel := common.WithTimeout(q.base, q.timeout)
		if job.TraceID != "" {
			ctx = common.WithRequestID(ctx, job.TraceID)
		}
		out, err := q.proc.ProcessFile(ctx, job.FileID)
		cancel()
		done()

		if err != nil {
			q.logger.Error("processing failed", "worker_id", workerID, "file_id", job.FileID, "error", err)
		} else {
			q.logger.Info("processed file successfully", "worker_id", workerID, "file_id", job.FileID,
				"job_id", out.JobID, "needs_review", out.NeedsReview,
				"wait_ms", time.Since(job.SubmittedAt).Milliseconds())
		}
		if q.onResult != nil {
			q.onResult(job, out, err)
		}
	}

	q.logger.Debug("worker stopped", "worker_id", workerID)
}

// Enqueue blocks while the queue is full until space frees up or ctx ends.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "file_id", job.FileID)
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
	default:
		q.logger.Warn("queue full, applying backpressure", "file_id", job.FileID)
		select {
		case q.ch <- job:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	q.tel.SetQueueDepth(len(q.ch))
	q.logger.Info("queued file for processing", "file_id", job.FileID, "trace_id", job.TraceID)
	return nil
}

// Shutdown stops intake and waits for queued jobs to drain. If ctx ends
// first, in-flight jobs are canceled and ctx.Err() is returned once the
// workers have exited.
func (q *ProcessorQueue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-done:
		q.cancel()
		q.logger.Info("queue drained, shutdown complete")
		return nil
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context; canceling in-flight jobs")
		q.cancel()
		<-done
		return ctx.Err()
	}
}

package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docpii/internal/core/domain"
	"github.com/custodia-labs/docpii/internal/core/ports/driven"
	"github.com/custodia-labs/docpii/internal/core/ports/driving"
)

// Worker processes scan tasks from the task queue.
// Each task is one Process call; failed tasks are nacked so the queue can redeliver them.
type Worker struct {
	taskQueue driven.TaskQueue
	scanner   driving.ScanService
	limiter   *rate.Limiter
	logger    *slog.Logger

	// Configuration
	concurrency    int
	dequeueTimeout int // seconds
	errorBackoff   time.Duration

	// Internal state
	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// WorkerConfig holds configuration for the worker.
type WorkerConfig struct {
	TaskQueue      driven.TaskQueue
	Scanner        driving.ScanService
	Logger         *slog.Logger
	Concurrency    int     // Number of concurrent task processors
	DequeueTimeout int     // Seconds to wait for a task before checking again
	RateLimit      float64 // Max scans started per second across all goroutines; 0 means unlimited
	ErrorBackoff   time.Duration
}

// NewWorker creates a new task worker.
func NewWorker(cfg WorkerConfig) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	dequeueTimeout := cfg.DequeueTimeout
	if dequeueTimeout <= 0 {
		dequeueTimeout = 5
	}

	errorBackoff := cfg.ErrorBackoff
	if errorBackoff <= 0 {
		errorBackoff = time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Worker{
		taskQueue:      cfg.TaskQueue,
		scanner:        cfg.Scanner,
		limiter:        limiter,
		logger:         logger,
		concurrency:    concurrency,
		dequeueTimeout: dequeueTimeout,
		errorBackoff:   errorBackoff,
	}
}

// Start begins the worker loop.
// It runs until Stop is called or context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("worker starting",
		"concurrency", w.concurrency,
		"dequeue_timeout", w.dequeueTimeout,
		"rate_limit", float64(w.limiter.Limit()),
	)

	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w.processLoop(ctx, workerID)
		}(i)
	}

	go func() {
		wg.Wait()
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	return nil
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}
	doneCh := w.doneCh
	w.mu.Unlock()

	<-doneCh
	w.logger.Info("worker stopped")
}

// Wait blocks until the worker stops.
func (w *Worker) Wait() {
	w.mu.RLock()
	doneCh := w.doneCh
	w.mu.RUnlock()
	if doneCh != nil {
		<-doneCh
	}
}

// processLoop is the main processing loop for a worker goroutine.
func (w *Worker) processLoop(ctx context.Context, workerID int) {
	logger := w.logger.With("worker_id", workerID)
	logger.Debug("worker goroutine started")

	for {
		select {
		case <-ctx.Done():
			logger.Debug("worker context cancelled")
			return
		case <-w.stopCh:
			logger.Debug("worker stop signal received")
			return
		default:
		}

		task, err := w.taskQueue.DequeueWithTimeout(ctx, w.dequeueTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			logger.Error("failed to dequeue task", "error", err)
			w.backoff(ctx)
			continue
		}

		if task == nil {
			continue
		}

		if err := w.limiter.Wait(ctx); err != nil {
			// Shutting down: hand the task back untouched
			w.release(task, logger)
			continue
		}

		w.processTask(ctx, task, logger)
	}
}

// processTask scans the task's document and acknowledges the outcome.
func (w *Worker) processTask(ctx context.Context, task *domain.ScanTask, logger *slog.Logger) {
	logger = logger.With(
		"task_id", task.ID,
		"bucket", task.Document.Bucket,
		"key", task.Document.Key,
		"attempt", task.Attempts,
	)
	logger.Info("processing task")

	result, err := w.scanner.Process(ctx, task.Document)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			// Redelivery cannot fix a malformed reference
			task.Attempts = task.MaxAttempts
		}

		logger.Error("task failed",
			"error_kind", domain.ErrorKind(err),
			"retryable", task.CanRetry(),
			"error", err,
		)
		if nackErr := w.taskQueue.Nack(ctx, task, err.Error()); nackErr != nil {
			logger.Error("failed to nack task", "nack_error", nackErr)
		}
		return
	}

	logger.Info("task completed",
		"outcome", result.Outcome,
		"findings", len(result.Findings),
		"duration", result.Duration,
	)

	if ackErr := w.taskQueue.Ack(ctx, task); ackErr != nil {
		logger.Error("failed to ack task", "ack_error", ackErr)
	}
}

// release returns a dequeued but unprocessed task to the queue without spending an attempt.
func (w *Worker) release(task *domain.ScanTask, logger *slog.Logger) {
	task.Attempts--
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.taskQueue.Nack(ctx, task, "worker shutting down"); err != nil {
		logger.Error("failed to release task", "task_id", task.ID, "error", err)
	}
}

func (w *Worker) backoff(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-w.stopCh:
	case <-time.After(w.errorBackoff):
	}
}

// Health returns health status of the worker.
type Health struct {
	Running     bool   `json:"running"`
	QueueHealth bool   `json:"queue_health"`
	Error       string `json:"error,omitempty"`
}

// Health returns the health status of the worker.
func (w *Worker) Health(ctx context.Context) Health {
	w.mu.RLock()
	running := w.running
	w.mu.RUnlock()

	health := Health{
		Running: running,
	}

	if err := w.taskQueue.Ping(ctx); err != nil {
		health.QueueHealth = false
		health.Error = err.Error()
	} else {
		health.QueueHealth = true
	}

	return health
}

// Ping reports an error unless the worker is running and its queue is reachable.
func (w *Worker) Ping(ctx context.Context) error {
	health := w.Health(ctx)
	if !health.Running {
		return errors.New("worker is not running")
	}
	if !health.QueueHealth {
		return fmt.Errorf("task queue unhealthy: %s", health.Error)
	}
	return nil
}

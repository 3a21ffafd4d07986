package driven

import (
	"context"

	"github.com/custodia-labs/docpii/internal/core/domain"
)

// TaskQueue buffers documents waiting to be scanned.
// Delivery is at-least-once; a failed task is redelivered by Nack until
// its attempts are exhausted, then it is dead-lettered.
type TaskQueue interface {
	// Enqueue adds a task to the queue for processing.
	Enqueue(ctx context.Context, task *domain.ScanTask) error

	// DequeueWithTimeout retrieves the next available task, waiting up to timeout seconds.
	// Returns nil, nil if timeout is reached with no tasks available.
	DequeueWithTimeout(ctx context.Context, timeout int) (*domain.ScanTask, error)

	// Ack acknowledges successful completion of a task.
	Ack(ctx context.Context, task *domain.ScanTask) error

	// Nack indicates processing failed. The task is redelivered if it
	// can retry, otherwise it is moved to the dead-letter stream.
	Nack(ctx context.Context, task *domain.ScanTask, reason string) error

	// Stats returns queue statistics.
	Stats(ctx context.Context) (*QueueStats, error)

	// Ping checks if the queue backend is healthy.
	Ping(ctx context.Context) error
}

// QueueStats contains queue statistics
type QueueStats struct {
	// PendingCount is the number of tasks waiting to be processed
	PendingCount int64 `json:"pending_count"`

	// ProcessingCount is the number of delivered but unacknowledged tasks
	ProcessingCount int64 `json:"processing_count"`

	// DeadLetterCount is the number of tasks that exhausted their attempts
	DeadLetterCount int64 `json:"dead_letter_count"`
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultMaxAttempts is how many deliveries a queued document gets before it is dead-lettered
const DefaultMaxAttempts = 3

// ScanTask is a queued request to process one document.
// The queue redelivers failed tasks; the scan itself never retries.
type ScanTask struct {
	// ID is the unique identifier for this task
	ID string `json:"id"`

	// Document is the document to scan
	Document DocumentReference `json:"document"`

	// Attempts is how many times this task has been delivered
	Attempts int `json:"attempts"`

	// MaxAttempts is the delivery limit before the task is dead-lettered
	MaxAttempts int `json:"max_attempts"`

	// Error contains the last failure message
	Error string `json:"error,omitempty"`

	// EnqueuedAt is when the task was first enqueued
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewScanTask creates a task for ref with default values
func NewScanTask(ref DocumentReference) *ScanTask {
	return &ScanTask{
		ID:          uuid.NewString(),
		Document:    ref,
		MaxAttempts: DefaultMaxAttempts,
		EnqueuedAt:  time.Now().UTC(),
	}
}

// CanRetry returns true if the task may be delivered again
func (t *ScanTask) CanRetry() bool {
	return t.Attempts < t.MaxAttempts
}

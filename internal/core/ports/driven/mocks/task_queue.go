package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/docpii/internal/core/domain"
	"github.com/custodia-labs/docpii/internal/core/ports/driven"
)

var _ driven.TaskQueue = (*MockTaskQueue)(nil)

// MockTaskQueue is an in-memory TaskQueue for testing
type MockTaskQueue struct {
	mu         sync.Mutex
	pending    []*domain.ScanTask
	acked      []string
	nacked     []string
	deadLetter []*domain.ScanTask

	EnqueueErr error
	PingErr    error
}

func NewMockTaskQueue() *MockTaskQueue {
	return &MockTaskQueue{}
}

func (m *MockTaskQueue) Enqueue(ctx context.Context, task *domain.ScanTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.EnqueueErr != nil {
		return m.EnqueueErr
	}
	m.pending = append(m.pending, task)
	return nil
}

func (m *MockTaskQueue) DequeueWithTimeout(ctx context.Context, timeout int) (*domain.ScanTask, error) {
	m.mu.Lock()
	if len(m.pending) == 0 {
		m.mu.Unlock()
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Millisecond):
		}
		return nil, nil
	}
	defer m.mu.Unlock()
	task := m.pending[0]
	m.pending = m.pending[1:]
	task.Attempts++
	return task, nil
}

func (m *MockTaskQueue) Ack(ctx context.Context, task *domain.ScanTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked = append(m.acked, task.ID)
	return nil
}

func (m *MockTaskQueue) Nack(ctx context.Context, task *domain.ScanTask, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nacked = append(m.nacked, task.ID)
	task.Error = reason
	if task.CanRetry() {
		m.pending = append(m.pending, task)
	} else {
		m.deadLetter = append(m.deadLetter, task)
	}
	return nil
}

func (m *MockTaskQueue) Stats(ctx context.Context) (*driven.QueueStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &driven.QueueStats{
		PendingCount:    int64(len(m.pending)),
		DeadLetterCount: int64(len(m.deadLetter)),
	}, nil
}

func (m *MockTaskQueue) Ping(ctx context.Context) error {
	return m.PingErr
}

// Acked returns the IDs of acknowledged tasks
func (m *MockTaskQueue) Acked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.acked...)
}

// Nacked returns the IDs of negatively acknowledged tasks
func (m *MockTaskQueue) Nacked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.nacked...)
}

// DeadLettered returns tasks that exhausted their attempts
func (m *MockTaskQueue) DeadLettered() []*domain.ScanTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.ScanTask(nil), m.deadLetter...)
}

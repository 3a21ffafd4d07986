package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/docpii/internal/core/domain"
	"github.com/custodia-labs/docpii/internal/core/ports/driven"
)

// Ensure MockFailureReporter implements FailureReporter
var _ driven.FailureReporter = (*MockFailureReporter)(nil)

// MockFailureReporter records reported failures
type MockFailureReporter struct {
	mu       sync.Mutex
	Reported []error
}

func (m *MockFailureReporter) Report(ctx context.Context, ref domain.DocumentReference, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reported = append(m.Reported, err)
}

// Count returns how many failures were reported
func (m *MockFailureReporter) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Reported)
}

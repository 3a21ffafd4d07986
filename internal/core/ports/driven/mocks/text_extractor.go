package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/docpii/internal/core/domain"
)

// MockTextExtractor is a mock implementation of TextExtractor for testing
type MockTextExtractor struct {
	mu    sync.Mutex
	calls []domain.DocumentReference

	Lines     []string
	Err       error
	ExtractFn func(ctx context.Context, ref domain.DocumentReference) ([]string, error)
}

func NewMockTextExtractor(lines ...string) *MockTextExtractor {
	return &MockTextExtractor{Lines: lines}
}

func (m *MockTextExtractor) Extract(ctx context.Context, ref domain.DocumentReference) ([]string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, ref)
	m.mu.Unlock()

	if m.ExtractFn != nil {
		return m.ExtractFn(ctx, ref)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Lines, nil
}

// Calls returns the references Extract was called with
func (m *MockTextExtractor) Calls() []domain.DocumentReference {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.DocumentReference(nil), m.calls...)
}

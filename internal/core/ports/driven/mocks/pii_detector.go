package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/docpii/internal/core/domain"
)

// DetectCall records the arguments of one Detect call
type DetectCall struct {
	Text         string
	LanguageCode string
}

// MockPIIDetector is a mock implementation of PIIDetector for testing
type MockPIIDetector struct {
	mu    sync.Mutex
	calls []DetectCall

	Entities []domain.PiiEntity
	Err      error
	DetectFn func(ctx context.Context, text, languageCode string) ([]domain.PiiEntity, error)
}

func NewMockPIIDetector(entities ...domain.PiiEntity) *MockPIIDetector {
	return &MockPIIDetector{Entities: entities}
}

func (m *MockPIIDetector) Detect(ctx context.Context, text, languageCode string) ([]domain.PiiEntity, error) {
	m.mu.Lock()
	m.calls = append(m.calls, DetectCall{Text: text, LanguageCode: languageCode})
	m.mu.Unlock()

	if m.DetectFn != nil {
		return m.DetectFn(ctx, text, languageCode)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Entities, nil
}

// Calls returns the recorded Detect calls
func (m *MockPIIDetector) Calls() []DetectCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]DetectCall(nil), m.calls...)
}

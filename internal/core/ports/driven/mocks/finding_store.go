package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/docpii/internal/core/domain"
	"github.com/custodia-labs/docpii/internal/core/ports/driven"
)

var _ driven.FindingRepository = (*MockFindingStore)(nil)

// MockFindingStore is an in-memory FindingRepository for testing
type MockFindingStore struct {
	mu      sync.RWMutex
	records map[string]*domain.FindingRecord
	puts    []*domain.FindingRecord

	PutErr  error
	PingErr error
}

func NewMockFindingStore() *MockFindingStore {
	return &MockFindingStore{records: make(map[string]*domain.FindingRecord)}
}

func (m *MockFindingStore) Put(ctx context.Context, record *domain.FindingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts = append(m.puts, record)
	if m.PutErr != nil {
		return m.PutErr
	}
	m.records[record.DocumentKey] = record
	return nil
}

func (m *MockFindingStore) Get(ctx context.Context, documentKey string) (*domain.FindingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[documentKey]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return record, nil
}

func (m *MockFindingStore) Ping(ctx context.Context) error {
	return m.PingErr
}

// Puts returns every record Put was called with, including failed writes
func (m *MockFindingStore) Puts() []*domain.FindingRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.FindingRecord(nil), m.puts...)
}

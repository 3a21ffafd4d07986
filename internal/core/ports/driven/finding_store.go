package driven

import (
	"context"

	"github.com/custodia-labs/docpii/internal/core/domain"
)

// FindingStore persists finding records (DynamoDB, PostgreSQL or Redis)
type FindingStore interface {
	// Put creates or replaces the record for record.DocumentKey.
	// Failures are returned as *domain.WriteError.
	Put(ctx context.Context, record *domain.FindingRecord) error
}

// FindingReader retrieves persisted finding records
type FindingReader interface {
	// Get retrieves the record for a document key.
	// Returns domain.ErrNotFound if the document has no findings.
	Get(ctx context.Context, documentKey string) (*domain.FindingRecord, error)
}

// FindingRepository is a store that supports both writes and lookups
type FindingRepository interface {
	FindingStore
	FindingReader

	// Ping checks if the backend is reachable
	Ping(ctx context.Context) error
}

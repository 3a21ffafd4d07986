package driving

import (
	"context"

	"github.com/custodia-labs/docpii/internal/core/domain"
)

// ScanService runs the extraction, detection and persistence pipeline for one document
type ScanService interface {
	// Process scans a single document. The returned result is non-nil even
	// when err is non-nil, in which case its Outcome is domain.OutcomeFailed.
	Process(ctx context.Context, ref domain.DocumentReference) (*domain.ScanResult, error)
}

// FindingService provides read-only access to persisted findings
type FindingService interface {
	// Get retrieves the finding record for a document key
	Get(ctx context.Context, documentKey string) (*domain.FindingRecord, error)
}

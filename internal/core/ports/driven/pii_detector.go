package driven

import (
	"context"

	"github.com/custodia-labs/docpii/internal/core/domain"
)

// PIIDetector finds personally identifiable information in text
type PIIDetector interface {
	// Detect returns the detected entities in the order the service reported them.
	// Failures are returned as *domain.ScanError.
	Detect(ctx context.Context, text, languageCode string) ([]domain.PiiEntity, error)
}

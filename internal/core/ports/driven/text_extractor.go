package driven

import (
	"context"

	"github.com/custodia-labs/docpii/internal/core/domain"
)

// TextExtractor recognises text in a stored document (OCR)
type TextExtractor interface {
	// Extract returns the recognised line texts in reading order.
	// An empty slice means nothing was recognised.
	// Failures are returned as *domain.ExtractionError.
	Extract(ctx context.Context, ref domain.DocumentReference) ([]string, error)
}

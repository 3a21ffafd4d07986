package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docpii/internal/core/domain"
	"github.com/custodia-labs/docpii/internal/core/ports/driven"
	"github.com/custodia-labs/docpii/internal/core/ports/driving"
)

// Ensure findingService implements FindingService
var _ driving.FindingService = (*findingService)(nil)

// findingService implements the FindingService interface
type findingService struct {
	reader driven.FindingReader
}

// NewFindingService creates a new FindingService
func NewFindingService(reader driven.FindingReader) driving.FindingService {
	return &findingService{reader: reader}
}

// Get retrieves the finding record for a document key
func (s *findingService) Get(ctx context.Context, documentKey string) (*domain.FindingRecord, error) {
	if documentKey == "" {
		return nil, fmt.Errorf("%w: document key is required", domain.ErrInvalidInput)
	}
	return s.reader.Get(ctx, documentKey)
}

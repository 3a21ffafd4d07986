package services

import (
	"log/slog"

	"github.com/custodia-labs/docpii/internal/core/domain"
)

// PIIFilter decides which detected entities are worth recording.
// An entity is accepted when its type is in the universal or the
// country-specific allow-list. With both lists empty nothing is accepted.
// A PIIFilter is immutable and safe for concurrent use.
type PIIFilter struct {
	universal domain.AllowList
	country   domain.AllowList
	logger    *slog.Logger
}

// NewPIIFilter creates a filter over the two configured allow-lists
func NewPIIFilter(universal, country domain.AllowList, logger *slog.Logger) *PIIFilter {
	if logger == nil {
		logger = slog.Default()
	}
	return &PIIFilter{
		universal: universal,
		country:   country,
		logger:    logger,
	}
}

// Accept reports whether a single entity passes the allow-lists.
// Membership is tested against each list independently; a non-empty
// country list does not by itself admit anything.
func (f *PIIFilter) Accept(entity domain.PiiEntity) bool {
	return f.universal.Contains(entity.Type) || f.country.Contains(entity.Type)
}

// Apply returns the accepted entities as findings, in input order.
// Duplicate types are kept.
func (f *PIIFilter) Apply(entities []domain.PiiEntity) []domain.Finding {
	findings := make([]domain.Finding, 0, len(entities))
	for _, entity := range entities {
		if !f.Accept(entity) {
			f.logger.Debug("entity type not in allow-lists", "type", entity.Type, "score", entity.Score)
			continue
		}
		findings = append(findings, domain.Finding{
			Type:       entity.Type,
			Confidence: entity.Score,
		})
	}
	return findings
}

// Enabled reports whether any type can pass the filter
func (f *PIIFilter) Enabled() bool {
	return f.universal.Len() > 0 || f.country.Len() > 0
}

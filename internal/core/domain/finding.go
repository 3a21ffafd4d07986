package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Finding is an accepted PII detection, persisted as (type, confidence)
type Finding struct {
	Type       EntityType `json:"Type"`
	Confidence float64    `json:"Confidence"`
}

// FindingRecord is the persisted result for one processed document.
// Exactly one record exists per document key; reprocessing overwrites it.
type FindingRecord struct {
	// DocumentKey is the object key of the scanned document
	DocumentKey string `json:"document_key"`

	// Bucket is the bucket the document was read from
	Bucket string `json:"bucket"`

	// Findings holds the accepted detections in scanner order
	Findings []Finding `json:"findings"`

	// ProcessedAt is when the record was produced
	ProcessedAt time.Time `json:"processed_at"`
}

// NewFindingRecord creates a record for ref stamped with the current time
func NewFindingRecord(ref DocumentReference, findings []Finding) *FindingRecord {
	return &FindingRecord{
		DocumentKey: ref.Key,
		Bucket:      ref.Bucket,
		Findings:    findings,
		ProcessedAt: time.Now().UTC(),
	}
}

// EncodeFindings serialises the ordered findings into the single stored field
func (r *FindingRecord) EncodeFindings() (string, error) {
	findings := r.Findings
	if findings == nil {
		findings = []Finding{}
	}
	data, err := json.Marshal(findings)
	if err != nil {
		return "", fmt.Errorf("encode findings: %w", err)
	}
	return string(data), nil
}

// DecodeFindings parses a field produced by EncodeFindings
func DecodeFindings(field string) ([]Finding, error) {
	var findings []Finding
	if err := json.Unmarshal([]byte(field), &findings); err != nil {
		return nil, fmt.Errorf("decode findings: %w", err)
	}
	return findings, nil
}

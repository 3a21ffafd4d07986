package domain

import "time"

// Stage is the furthest point an invocation reached
type Stage string

const (
	StageReceived  Stage = "received"
	StageExtracted Stage = "extracted"
	StageAssembled Stage = "assembled"
	StageScanned   Stage = "scanned"
	StageFiltered  Stage = "filtered"
)

// Outcome is the terminal state of an invocation
type Outcome string

const (
	// OutcomeWritten means at least one finding was persisted
	OutcomeWritten Outcome = "written"
	// OutcomeSkippedNoFindings means no detected entity passed the allow-lists
	OutcomeSkippedNoFindings Outcome = "skipped_no_findings"
	// OutcomeSkippedEmptyDocument means no text was recognised in the document
	OutcomeSkippedEmptyDocument Outcome = "skipped_empty_document"
	// OutcomeFailed means a collaborator call failed
	OutcomeFailed Outcome = "failed"
)

// IsSkipped reports whether the invocation ended without writing and without error
func (o Outcome) IsSkipped() bool {
	return o == OutcomeSkippedNoFindings || o == OutcomeSkippedEmptyDocument
}

// ScanResult summarises one invocation
type ScanResult struct {
	Document    DocumentReference `json:"document"`
	Outcome     Outcome           `json:"outcome"`
	Stage       Stage             `json:"stage"`
	Findings    []Finding         `json:"findings,omitempty"`
	LineCount   int               `json:"line_count"`
	EntityCount int               `json:"entity_count"`
	Duration    time.Duration     `json:"duration"`
	Error       string            `json:"error,omitempty"`
}

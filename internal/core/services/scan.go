package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/custodia-labs/docpii/internal/core/domain"
	"github.com/custodia-labs/docpii/internal/core/ports/driven"
	"github.com/custodia-labs/docpii/internal/core/ports/driving"
)

// DefaultLanguageCode is the language passed to the PII detector when none is configured
const DefaultLanguageCode = "en"

// Ensure ScanOrchestrator implements ScanService
var _ driving.ScanService = (*ScanOrchestrator)(nil)

// ScanOrchestrator runs one document through the pipeline:
//  1. Extract text lines from the stored document
//  2. Assemble the lines into a single text
//  3. Detect PII entities (skipped when the text is empty)
//  4. Filter entities against the allow-lists
//  5. Persist the findings (skipped when nothing passed the filter)
//
// Each step runs once. Any collaborator error ends the invocation and is
// returned to the caller; redelivery is left to the platform.
type ScanOrchestrator struct {
	extractor    driven.TextExtractor
	detector     driven.PIIDetector
	store        driven.FindingStore
	filter       *PIIFilter
	reporter     driven.FailureReporter
	languageCode string
	logger       *slog.Logger
}

// ScanOrchestratorConfig holds dependencies for ScanOrchestrator.
type ScanOrchestratorConfig struct {
	Extractor    driven.TextExtractor
	Detector     driven.PIIDetector
	Store        driven.FindingStore
	Filter       *PIIFilter
	Reporter     driven.FailureReporter // optional
	LanguageCode string
	Logger       *slog.Logger
}

// NewScanOrchestrator creates a new scan orchestrator.
func NewScanOrchestrator(cfg ScanOrchestratorConfig) *ScanOrchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	languageCode := cfg.LanguageCode
	if languageCode == "" {
		languageCode = DefaultLanguageCode
	}

	filter := cfg.Filter
	if filter == nil {
		filter = NewPIIFilter(domain.AllowList{}, domain.AllowList{}, logger)
	}

	return &ScanOrchestrator{
		extractor:    cfg.Extractor,
		detector:     cfg.Detector,
		store:        cfg.Store,
		filter:       filter,
		reporter:     cfg.Reporter,
		languageCode: languageCode,
		logger:       logger,
	}
}

// Process scans a single document.
func (o *ScanOrchestrator) Process(ctx context.Context, ref domain.DocumentReference) (*domain.ScanResult, error) {
	startTime := time.Now()
	result := &domain.ScanResult{
		Document: ref,
		Stage:    domain.StageReceived,
	}
	logger := o.logger.With("bucket", ref.Bucket, "key", ref.Key)
	logger.Info("processing document")

	if err := ref.Validate(); err != nil {
		return o.fail(ctx, result, startTime, logger, err)
	}

	lines, err := o.extractor.Extract(ctx, ref)
	if err != nil {
		var extractionErr *domain.ExtractionError
		if !errors.As(err, &extractionErr) {
			err = &domain.ExtractionError{Document: ref, Err: err}
		}
		return o.fail(ctx, result, startTime, logger, err)
	}
	result.Stage = domain.StageExtracted
	result.LineCount = len(lines)

	text := AssembleText(lines)
	result.Stage = domain.StageAssembled
	if text == "" {
		logger.Warn("document could not be processed: no text recognised")
		return o.finish(result, startTime, domain.OutcomeSkippedEmptyDocument), nil
	}

	entities, err := o.detector.Detect(ctx, text, o.languageCode)
	if err != nil {
		var scanErr *domain.ScanError
		if !errors.As(err, &scanErr) {
			err = &domain.ScanError{LanguageCode: o.languageCode, TextLength: len(text), Err: err}
		}
		return o.fail(ctx, result, startTime, logger, err)
	}
	result.Stage = domain.StageScanned
	result.EntityCount = len(entities)

	findings := o.filter.Apply(entities)
	result.Stage = domain.StageFiltered
	if len(findings) == 0 {
		logger.Warn("no PII found in document", "entities", len(entities))
		return o.finish(result, startTime, domain.OutcomeSkippedNoFindings), nil
	}
	result.Findings = findings

	logger.Info("PII captured in document", "findings", len(findings))
	record := domain.NewFindingRecord(ref, findings)
	if err := o.store.Put(ctx, record); err != nil {
		var writeErr *domain.WriteError
		if !errors.As(err, &writeErr) {
			err = &domain.WriteError{DocumentKey: ref.Key, Err: err}
		}
		return o.fail(ctx, result, startTime, logger, err)
	}

	o.finish(result, startTime, domain.OutcomeWritten)
	logger.Info("findings written", "duration", result.Duration)
	return result, nil
}

func (o *ScanOrchestrator) finish(result *domain.ScanResult, startTime time.Time, outcome domain.Outcome) *domain.ScanResult {
	result.Outcome = outcome
	result.Duration = time.Since(startTime)
	return result
}

// fail marks the result failed and returns err unchanged.
func (o *ScanOrchestrator) fail(ctx context.Context, result *domain.ScanResult, startTime time.Time, logger *slog.Logger, err error) (*domain.ScanResult, error) {
	o.finish(result, startTime, domain.OutcomeFailed)
	result.Error = err.Error()

	logger.Error("document processing failed",
		"stage", result.Stage,
		"error_kind", domain.ErrorKind(err),
		"duration", result.Duration,
		"error", err,
	)

	if o.reporter != nil {
		o.reporter.Report(ctx, result.Document, err)
	}
	return result, err
}

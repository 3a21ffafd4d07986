package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/docpii/internal/core/domain"
	"github.com/custodia-labs/docpii/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.FindingRepository = (*FindingStore)(nil)

// FindingStore implements driven.FindingRepository using PostgreSQL
type FindingStore struct {
	db *DB
}

// NewFindingStore creates a new FindingStore
func NewFindingStore(db *DB) *FindingStore {
	return &FindingStore{db: db}
}

// Put creates or replaces the record for the document key
func (s *FindingStore) Put(ctx context.Context, record *domain.FindingRecord) error {
	findings, err := record.EncodeFindings()
	if err != nil {
		return &domain.WriteError{DocumentKey: record.DocumentKey, Err: err}
	}

	query := `
		INSERT INTO pii_findings (document_key, bucket, findings, processed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (document_key) DO UPDATE SET
			bucket = EXCLUDED.bucket,
			findings = EXCLUDED.findings,
			processed_at = EXCLUDED.processed_at
	`

	_, err = s.db.ExecContext(ctx, query,
		record.DocumentKey,
		record.Bucket,
		findings,
		record.ProcessedAt,
	)
	if err != nil {
		return &domain.WriteError{DocumentKey: record.DocumentKey, Err: classifyError(err)}
	}
	return nil
}

// Get retrieves the record for a document key
func (s *FindingStore) Get(ctx context.Context, documentKey string) (*domain.FindingRecord, error) {
	query := `
		SELECT document_key, bucket, findings, processed_at
		FROM pii_findings
		WHERE document_key = $1
	`

	var (
		record   domain.FindingRecord
		findings string
	)
	err := s.db.QueryRowContext(ctx, query, documentKey).Scan(
		&record.DocumentKey,
		&record.Bucket,
		&findings,
		&record.ProcessedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get finding: %w", classifyError(err))
	}

	record.Findings, err = domain.DecodeFindings(findings)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Ping checks if the database is reachable
func (s *FindingStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

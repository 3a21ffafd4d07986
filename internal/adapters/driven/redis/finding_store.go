package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/docpii/internal/core/domain"
	"github.com/custodia-labs/docpii/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.FindingRepository = (*FindingStore)(nil)

const findingPrefix = "docpii:finding:"

// Hash fields of a finding record, named like the DynamoDB item attributes
const (
	fieldFileName      = "file_name"
	fieldPIIConfidence = "pii_confidence"
	fieldBucket        = "bucket"
	fieldProcessedAt   = "processed_at"
)

// FindingStore implements driven.FindingRepository using Redis.
// Each record is a hash under docpii:finding:<document key> whose
// pii_confidence field holds the findings as one JSON array.
type FindingStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFindingStore creates a Redis-backed FindingStore.
// A zero ttl keeps records until they are overwritten.
func NewFindingStore(client *redis.Client, ttl time.Duration) *FindingStore {
	return &FindingStore{client: client, ttl: ttl}
}

// Put stores the record, replacing any previous record for the key
func (s *FindingStore) Put(ctx context.Context, record *domain.FindingRecord) error {
	field, err := record.EncodeFindings()
	if err != nil {
		return &domain.WriteError{DocumentKey: record.DocumentKey, Err: err}
	}

	key := findingPrefix + record.DocumentKey
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]interface{}{
		fieldFileName:      record.DocumentKey,
		fieldPIIConfidence: field,
		fieldBucket:        record.Bucket,
		fieldProcessedAt:   record.ProcessedAt.UTC().Format(time.RFC3339Nano),
	})
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return &domain.WriteError{DocumentKey: record.DocumentKey, Err: err}
	}
	return nil
}

// Get retrieves the record for a document key
func (s *FindingStore) Get(ctx context.Context, documentKey string) (*domain.FindingRecord, error) {
	values, err := s.client.HGetAll(ctx, findingPrefix+documentKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get finding: %w", err)
	}
	if len(values) == 0 {
		return nil, domain.ErrNotFound
	}

	findings, err := domain.DecodeFindings(values[fieldPIIConfidence])
	if err != nil {
		return nil, err
	}

	record := &domain.FindingRecord{
		DocumentKey: values[fieldFileName],
		Bucket:      values[fieldBucket],
		Findings:    findings,
	}
	if ts, err := time.Parse(time.RFC3339Nano, values[fieldProcessedAt]); err == nil {
		record.ProcessedAt = ts
	}
	return record, nil
}

// Ping checks if the Redis backend is healthy
func (s *FindingStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

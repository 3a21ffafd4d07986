package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/docpii/internal/core/domain"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func testRecord() *domain.FindingRecord {
	return domain.NewFindingRecord(
		domain.DocumentReference{Bucket: "uploads", Key: "scans/john.png"},
		[]domain.Finding{{Type: domain.EntitySSN, Confidence: 0.99}},
	)
}

func TestFindingStore_PutGet(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewFindingStore(client, 0)
	ctx := context.Background()

	record := testRecord()
	if err := store.Put(ctx, record); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, record.DocumentKey)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.DocumentKey != record.DocumentKey || got.Bucket != "uploads" {
		t.Errorf("expected uploads/%s, got %s/%s", record.DocumentKey, got.Bucket, got.DocumentKey)
	}
	if !got.ProcessedAt.Equal(record.ProcessedAt) {
		t.Errorf("expected processed_at %v, got %v", record.ProcessedAt, got.ProcessedAt)
	}
	if len(got.Findings) != 1 || got.Findings[0].Type != domain.EntitySSN || got.Findings[0].Confidence != 0.99 {
		t.Errorf("unexpected findings: %+v", got.Findings)
	}
}

func TestFindingStore_StoredFields(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewFindingStore(client, 0)

	record := testRecord()
	if err := store.Put(context.Background(), record); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	key := findingPrefix + record.DocumentKey
	if got := mr.HGet(key, "file_name"); got != "scans/john.png" {
		t.Errorf("expected file_name scans/john.png, got %q", got)
	}
	if got := mr.HGet(key, "pii_confidence"); got != `[{"Type":"SSN","Confidence":0.99}]` {
		t.Errorf("unexpected pii_confidence field %q", got)
	}
	if got := mr.HGet(key, "bucket"); got != "uploads" {
		t.Errorf("expected bucket uploads, got %q", got)
	}
	if mr.HGet(key, "processed_at") == "" {
		t.Error("expected processed_at to be set")
	}
	if ttl := mr.TTL(key); ttl != 0 {
		t.Errorf("expected no ttl, got %v", ttl)
	}
}

func TestFindingStore_PutOverwrites(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewFindingStore(client, 0)
	ctx := context.Background()

	first := testRecord()
	_ = store.Put(ctx, first)

	second := testRecord()
	second.Findings = []domain.Finding{
		{Type: domain.EntitySSN, Confidence: 0.91},
		{Type: domain.EntitySSN, Confidence: 0.88},
	}
	if err := store.Put(ctx, second); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, _ := store.Get(ctx, first.DocumentKey)
	if len(got.Findings) != 2 {
		t.Errorf("expected overwritten record with 2 findings, got %d", len(got.Findings))
	}
}

func TestFindingStore_GetNotFound(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewFindingStore(client, 0)

	_, err := store.Get(context.Background(), "missing.png")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFindingStore_TTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewFindingStore(client, time.Hour)
	ctx := context.Background()

	record := testRecord()
	_ = store.Put(ctx, record)

	if ttl := mr.TTL(findingPrefix + record.DocumentKey); ttl != time.Hour {
		t.Errorf("expected ttl 1h, got %v", ttl)
	}

	mr.FastForward(2 * time.Hour)
	if _, err := store.Get(ctx, record.DocumentKey); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected record to expire, got %v", err)
	}
}

func TestFindingStore_PutFailureIsWriteError(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	store := NewFindingStore(client, 0)
	mr.Close()

	err = store.Put(context.Background(), testRecord())
	if !errors.Is(err, domain.ErrWrite) {
		t.Errorf("expected ErrWrite, got %v", err)
	}
	var writeErr *domain.WriteError
	if !errors.As(err, &writeErr) || writeErr.DocumentKey != "scans/john.png" {
		t.Errorf("expected WriteError for scans/john.png, got %v", err)
	}
}

func TestFindingStore_Ping(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewFindingStore(client, 0)
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/custodia-labs/docpii/internal/core/domain"
)

// setupTestDB connects to DOCPII_TEST_DATABASE_URL or skips the test
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("DOCPII_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("DOCPII_TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := Connect(ctx, DefaultConfig(url))
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.InitSchema(ctx); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	return db
}

func TestFindingStore_PutGet(t *testing.T) {
	db := setupTestDB(t)
	store := NewFindingStore(db)
	ctx := context.Background()

	key := "test/" + time.Now().Format("20060102150405.000000000") + ".png"
	t.Cleanup(func() {
		_, _ = db.ExecContext(context.Background(), `DELETE FROM pii_findings WHERE document_key = $1`, key)
	})

	record := domain.NewFindingRecord(
		domain.DocumentReference{Bucket: "uploads", Key: key},
		[]domain.Finding{
			{Type: domain.EntitySSN, Confidence: 0.99},
			{Type: domain.EntityEmail, Confidence: 0.87},
		},
	)
	if err := store.Put(ctx, record); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Bucket != "uploads" {
		t.Errorf("expected bucket uploads, got %s", got.Bucket)
	}
	if len(got.Findings) != 2 || got.Findings[0].Type != domain.EntitySSN || got.Findings[1].Type != domain.EntityEmail {
		t.Errorf("expected findings in scanner order, got %+v", got.Findings)
	}

	// Reprocessing overwrites the record
	record.Findings = []domain.Finding{{Type: domain.EntitySSN, Confidence: 0.5}}
	if err := store.Put(ctx, record); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}
	got, _ = store.Get(ctx, key)
	if len(got.Findings) != 1 || got.Findings[0].Confidence != 0.5 {
		t.Errorf("expected overwritten findings, got %+v", got.Findings)
	}
}

func TestFindingStore_GetNotFound(t *testing.T) {
	db := setupTestDB(t)
	store := NewFindingStore(db)

	_, err := store.Get(context.Background(), "missing/never-written.png")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFindingStore_Ping(t *testing.T) {
	db := setupTestDB(t)
	if err := NewFindingStore(db).Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

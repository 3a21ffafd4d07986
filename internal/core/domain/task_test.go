package domain

import "testing"

func TestNewScanTask(t *testing.T) {
	ref := DocumentReference{Bucket: "uploads", Key: "scans/id.png"}

	task := NewScanTask(ref)

	if task.ID == "" {
		t.Error("expected non-empty ID")
	}
	if task.Document != ref {
		t.Errorf("expected document %v, got %v", ref, task.Document)
	}
	if task.Attempts != 0 {
		t.Errorf("expected attempts 0, got %d", task.Attempts)
	}
	if task.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("expected max attempts %d, got %d", DefaultMaxAttempts, task.MaxAttempts)
	}
	if task.EnqueuedAt.IsZero() {
		t.Error("expected EnqueuedAt to be set")
	}
}

func TestNewScanTask_UniqueIDs(t *testing.T) {
	ref := DocumentReference{Bucket: "uploads", Key: "a.png"}
	if NewScanTask(ref).ID == NewScanTask(ref).ID {
		t.Error("expected unique task IDs")
	}
}

func TestScanTask_CanRetry(t *testing.T) {
	task := NewScanTask(DocumentReference{Bucket: "b", Key: "k"})

	for i := 0; i < DefaultMaxAttempts; i++ {
		if !task.CanRetry() {
			t.Fatalf("expected retry allowed at attempt %d", task.Attempts)
		}
		task.Attempts++
	}
	if task.CanRetry() {
		t.Error("expected retry refused once max attempts reached")
	}
}

package domain

import (
	"errors"
	"testing"
)

func TestNewDocumentReference(t *testing.T) {
	tests := []struct {
		name    string
		bucket  string
		key     string
		wantErr bool
	}{
		{"valid", "uploads", "scans/passport.png", false},
		{"missing bucket", "", "a.png", true},
		{"missing key", "uploads", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := NewDocumentReference(tt.bucket, tt.key)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ref.Bucket != tt.bucket || ref.Key != tt.key {
				t.Errorf("unexpected reference %+v", ref)
			}
		})
	}
}

func TestDocumentReference_String(t *testing.T) {
	ref := DocumentReference{Bucket: "uploads", Key: "scans/a.png"}
	if ref.String() != "uploads/scans/a.png" {
		t.Errorf("unexpected string %q", ref.String())
	}
}

package domain

import (
	"testing"
	"time"
)

func TestNewTokenClaims(t *testing.T) {
	claims := NewTokenClaims("ingest-bot", time.Hour)

	if claims.Subject != "ingest-bot" {
		t.Errorf("expected subject ingest-bot, got %s", claims.Subject)
	}
	if claims.ExpiresAt-claims.IssuedAt != int64(time.Hour.Seconds()) {
		t.Errorf("expected one hour validity, got %ds", claims.ExpiresAt-claims.IssuedAt)
	}
	if claims.IsExpired() {
		t.Error("fresh claims should not be expired")
	}
}

func TestTokenClaims_IsExpired(t *testing.T) {
	claims := &TokenClaims{Subject: "x", ExpiresAt: time.Now().Add(-time.Minute).Unix()}
	if !claims.IsExpired() {
		t.Error("expected claims to be expired")
	}
}

func TestTokenRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     TokenRequest
		wantErr bool
	}{
		{"complete", TokenRequest{ClientID: "uploader", ClientSecret: "s"}, false},
		{"missing id", TokenRequest{ClientSecret: "s"}, true},
		{"missing secret", TokenRequest{ClientID: "uploader"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

package mocks

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/docpii/internal/core/domain"
	"github.com/custodia-labs/docpii/internal/core/ports/driven"
)

// Ensure MockAuthAdapter implements AuthAdapter
var _ driven.AuthAdapter = (*MockAuthAdapter)(nil)

// MockAuthAdapter is a mock implementation of AuthAdapter for testing.
// Secrets are "hashed" by prefixing and tokens are base64-encoded JSON
// claims with no signature.
// NOT secure - only for testing.
type MockAuthAdapter struct{}

// NewMockAuthAdapter creates a new MockAuthAdapter
func NewMockAuthAdapter() *MockAuthAdapter {
	return &MockAuthAdapter{}
}

// HashSecret returns a reversible fake hash
func (m *MockAuthAdapter) HashSecret(secret string) (string, error) {
	return "hashed:" + secret, nil
}

// VerifySecret checks secret against a hash produced by HashSecret
func (m *MockAuthAdapter) VerifySecret(secret, hash string) bool {
	return hash == "hashed:"+secret
}

// GenerateToken creates a base64-encoded JSON token from claims
func (m *MockAuthAdapter) GenerateToken(claims *domain.TokenClaims) (string, error) {
	data, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

// ParseToken decodes a token produced by GenerateToken
func (m *MockAuthAdapter) ParseToken(token string) (*domain.TokenClaims, error) {
	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	var claims domain.TokenClaims
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, domain.ErrTokenInvalid
	}
	if claims.IsExpired() {
		return nil, domain.ErrTokenExpired
	}
	return &claims, nil
}

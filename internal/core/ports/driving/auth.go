package driving

import (
	"context"

	"github.com/custodia-labs/docpii/internal/core/domain"
)

// AuthService handles API client authentication
type AuthService interface {
	// IssueToken validates client credentials and returns a signed bearer token
	IssueToken(ctx context.Context, req domain.TokenRequest) (*domain.TokenResponse, error)

	// ValidateToken validates a bearer token and returns its claims
	ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error)
}

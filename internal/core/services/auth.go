package services

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/docpii/internal/core/domain"
	"github.com/custodia-labs/docpii/internal/core/ports/driven"
	"github.com/custodia-labs/docpii/internal/core/ports/driving"
)

// DefaultTokenTTL is the lifetime of issued bearer tokens when none is configured
const DefaultTokenTTL = time.Hour

// Ensure authService implements AuthService
var _ driving.AuthService = (*authService)(nil)

// authService implements the AuthService interface
type authService struct {
	authAdapter driven.AuthAdapter
	clients     map[string]string // client ID -> secret hash
	tokenTTL    time.Duration
}

// NewAuthService creates a new AuthService for the registered clients
func NewAuthService(authAdapter driven.AuthAdapter, clients []domain.ClientCredential, tokenTTL time.Duration) driving.AuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}

	byID := make(map[string]string, len(clients))
	for _, c := range clients {
		if c.ClientID == "" || c.SecretHash == "" {
			continue
		}
		byID[c.ClientID] = c.SecretHash
	}

	return &authService{
		authAdapter: authAdapter,
		clients:     byID,
		tokenTTL:    tokenTTL,
	}
}

// IssueToken validates client credentials and returns a signed bearer token
func (s *authService) IssueToken(ctx context.Context, req domain.TokenRequest) (*domain.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, ok := s.clients[req.ClientID]
	if !ok || !s.authAdapter.VerifySecret(req.ClientSecret, hash) {
		return nil, domain.ErrInvalidCredentials
	}

	claims := domain.NewTokenClaims(req.ClientID, s.tokenTTL)
	token, err := s.authAdapter.GenerateToken(claims)
	if err != nil {
		return nil, err
	}

	return &domain.TokenResponse{
		Token:     token,
		ExpiresAt: time.Unix(claims.ExpiresAt, 0).UTC(),
	}, nil
}

// ValidateToken validates a bearer token and returns its claims
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}

	claims, err := s.authAdapter.ParseToken(token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	if claims.IsExpired() {
		return nil, domain.ErrTokenExpired
	}

	// Tokens for clients removed from configuration stop working
	if _, ok := s.clients[claims.Subject]; !ok {
		return nil, domain.ErrTokenInvalid
	}

	return claims, nil
}

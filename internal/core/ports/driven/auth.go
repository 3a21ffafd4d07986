package driven

import "github.com/custodia-labs/docpii/internal/core/domain"

// AuthAdapter handles secret hashing and bearer token signing
type AuthAdapter interface {
	// HashSecret generates a bcrypt hash from a plaintext client secret
	HashSecret(secret string) (string, error)

	// VerifySecret checks a plaintext secret against a hash
	VerifySecret(secret, hash string) bool

	// GenerateToken creates a signed token from claims
	GenerateToken(claims *domain.TokenClaims) (string, error)

	// ParseToken validates a token and extracts its claims
	ParseToken(token string) (*domain.TokenClaims, error)
}

package domain

import "time"

// TokenClaims are the claims carried by an API bearer token
type TokenClaims struct {
	// Subject identifies the calling client (service name or user)
	Subject   string `json:"sub"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// NewTokenClaims creates claims for subject valid for ttl
func NewTokenClaims(subject string, ttl time.Duration) *TokenClaims {
	now := time.Now()
	return &TokenClaims{
		Subject:   subject,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}
}

// IsExpired checks if the claims have expired
func (c *TokenClaims) IsExpired() bool {
	return time.Now().Unix() > c.ExpiresAt
}

// TokenRequest exchanges client credentials for a bearer token
type TokenRequest struct {
	ClientID     string `json:"client_id" example:"uploader"`
	ClientSecret string `json:"client_secret" example:"s3cr3t"`
}

// Validate checks that both credentials are present
func (r TokenRequest) Validate() error {
	if r.ClientID == "" || r.ClientSecret == "" {
		return ErrInvalidInput
	}
	return nil
}

// TokenResponse carries an issued bearer token
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ClientCredential is a registered API client. SecretHash is a bcrypt hash.
type ClientCredential struct {
	ClientID   string
	SecretHash string
}

package domain

import "time"

// SafetyMargin is subtracted from every token lifetime so that a token is
// treated as expired well before the issuer actually rejects it.
const SafetyMargin = 7 * 24 * time.Hour

// TokenTypeBearer is the token type issued by the games API's auth endpoint.
const TokenTypeBearer = "bearer"

// Credentials is the access token used for authenticated games API calls.
// The zero value is the "never authenticated" sentinel.
type Credentials struct {
	// AccessToken is the bearer token for API access.
	AccessToken string `json:"access_token"`
	// TokenType is typically "bearer".
	TokenType string `json:"token_type"`
	// TokenTTLSeconds is the lifetime reported by the issuer.
	TokenTTLSeconds int64 `json:"token_ttl_seconds"`
	// ExpiresAt is the unix millisecond instant after which the token is
	// considered expired. Always issuedAt + TTL - SafetyMargin.
	ExpiresAt int64 `json:"expires_at"`
}

// CalculateExpiry returns the instant at which a token issued at issuedAt
// with the given lifetime should be considered expired.
func CalculateExpiry(tokenTTLSeconds int64, issuedAt time.Time) time.Time {
	return issuedAt.
		Add(time.Duration(tokenTTLSeconds) * time.Second).
		Add(-SafetyMargin)
}

// NewCredentials builds credentials for a token issued at issuedAt.
func NewCredentials(accessToken, tokenType string, tokenTTLSeconds int64, issuedAt time.Time) Credentials {
	return Credentials{
		AccessToken:     accessToken,
		TokenType:       tokenType,
		TokenTTLSeconds: tokenTTLSeconds,
		ExpiresAt:       CalculateExpiry(tokenTTLSeconds, issuedAt).UnixMilli(),
	}
}

// IsEmpty reports whether c is the all-zero sentinel.
func (c Credentials) IsEmpty() bool {
	return c == Credentials{}
}

// ExpiresAtTime returns ExpiresAt as a time.Time.
func (c Credentials) ExpiresAtTime() time.Time {
	return time.UnixMilli(c.ExpiresAt)
}

// IsExpiredAt returns true if the token must not be used at now.
func (c Credentials) IsExpiredAt(now time.Time) bool {
	if c.IsEmpty() {
		return true
	}
	return now.UnixMilli() >= c.ExpiresAt
}

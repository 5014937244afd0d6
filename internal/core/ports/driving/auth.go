package driving

import (
	"context"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
)

// AuthService exposes the games API credential lifecycle.
type AuthService interface {
	// EnsureValid fetches and stores a new token only when the stored one is
	// absent or expired.
	EnsureValid(ctx context.Context) error

	// Login always fetches and stores a new token.
	Login(ctx context.Context) (domain.Credentials, error)

	// Status returns the stored credentials (nil if absent) and whether they are expired.
	Status(ctx context.Context) (*domain.Credentials, bool, error)
}

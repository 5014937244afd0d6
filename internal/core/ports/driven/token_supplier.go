package driven

import (
	"context"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
)

// TokenSupplier exchanges the configured client credentials for a new access token.
// Implementations perform exactly one round trip and never retry; errors are
// classified with domain.Classify.
type TokenSupplier interface {
	FetchRemote(ctx context.Context) (domain.Credentials, error)
}

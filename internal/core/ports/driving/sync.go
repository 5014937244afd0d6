package driving

import (
	"context"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
)

// Prefetcher refreshes the first window of every category in the background.
type Prefetcher interface {
	// PrefetchAll returns the categories that were actually refreshed.
	PrefetchAll(ctx context.Context) ([]domain.Category, error)
}

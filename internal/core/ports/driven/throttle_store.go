package driven

import (
	"context"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
)

// ThrottleStore keeps the last successful refresh time per refresh key.
type ThrottleStore interface {
	// Get returns the record for key; ok is false when the key was never recorded.
	Get(ctx context.Context, key domain.RefreshKey) (record domain.ThrottleRecord, ok bool, err error)

	// Put overwrites the record for its key.
	Put(ctx context.Context, record domain.ThrottleRecord) error
}

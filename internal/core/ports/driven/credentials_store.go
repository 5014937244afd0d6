package driven

import (
	"context"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
)

// CredentialsStore persists the single games API credentials record.
// Writes are last-write-wins; reads must be safe alongside writes.
type CredentialsStore interface {
	// Save stores credentials, replacing any previous record.
	Save(ctx context.Context, creds domain.Credentials) error

	// Get returns the stored record. A store that was never written returns
	// the zero Credentials and no error.
	Get(ctx context.Context) (domain.Credentials, error)
}

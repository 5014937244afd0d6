package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
	"github.com/custodia-labs/gamefeed-cli/internal/core/ports/driven"
)

// CredentialsService owns the stored games API token.
// It does no network access; reads are safe alongside writes because the
// underlying store is last-write-wins.
type CredentialsService struct {
	store driven.CredentialsStore
	now   func() time.Time
}

// NewCredentialsService creates a new credentials service.
func NewCredentialsService(store driven.CredentialsStore) *CredentialsService {
	return &CredentialsService{
		store: store,
		now:   time.Now,
	}
}

// Save persists credentials, replacing the previous record.
func (s *CredentialsService) Save(ctx context.Context, creds domain.Credentials) error {
	if s.store == nil {
		return domain.ErrNotImplemented
	}
	if creds.IsEmpty() {
		return fmt.Errorf("%w: empty credentials", domain.ErrInvalidInput)
	}
	return s.store.Save(ctx, creds)
}

// GetLocal returns the stored credentials, or nil when none were ever saved.
func (s *CredentialsService) GetLocal(ctx context.Context) (*domain.Credentials, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	creds, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if creds.IsEmpty() {
		return nil, nil
	}
	return &creds, nil
}

// IsExpired reports true when no credentials are stored or they have expired.
func (s *CredentialsService) IsExpired(ctx context.Context) (bool, error) {
	creds, err := s.GetLocal(ctx)
	if err != nil {
		return true, err
	}
	if creds == nil {
		return true, nil
	}
	return creds.IsExpiredAt(s.now()), nil
}

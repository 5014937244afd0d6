package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
	"github.com/custodia-labs/gamefeed-cli/internal/core/ports/driven"
)

// Ensure CredentialsStore implements the interface.
var _ driven.CredentialsStore = (*CredentialsStore)(nil)

// CredentialsStore holds the games API token in memory.
type CredentialsStore struct {
	mu    sync.RWMutex
	creds domain.Credentials
}

// NewCredentialsStore creates an empty in-memory credentials store.
func NewCredentialsStore() *CredentialsStore {
	return &CredentialsStore{}
}

// Save replaces the stored credentials.
func (s *CredentialsStore) Save(_ context.Context, creds domain.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	return nil
}

// Get returns the stored credentials, or the zero value.
func (s *CredentialsStore) Get(_ context.Context) (domain.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds, nil
}

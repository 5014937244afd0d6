package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
	"github.com/custodia-labs/gamefeed-cli/internal/core/ports/driven"
)

// Ensure ThrottleStore implements the interface.
var _ driven.ThrottleStore = (*ThrottleStore)(nil)

// ThrottleStore is an in-memory implementation of driven.ThrottleStore.
type ThrottleStore struct {
	mu      sync.RWMutex
	records map[domain.RefreshKey]domain.ThrottleRecord
}

// NewThrottleStore creates a new in-memory throttle store.
func NewThrottleStore() *ThrottleStore {
	return &ThrottleStore{
		records: make(map[domain.RefreshKey]domain.ThrottleRecord),
	}
}

// Get returns the record for key.
func (s *ThrottleStore) Get(_ context.Context, key domain.RefreshKey) (domain.ThrottleRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	return rec, ok, nil
}

// Put overwrites the record for its key.
func (s *ThrottleStore) Put(_ context.Context, rec domain.ThrottleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Key] = rec
	return nil
}

// Len returns the number of recorded keys.
func (s *ThrottleStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

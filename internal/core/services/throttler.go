package services

import (
	"context"
	"time"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
	"github.com/custodia-labs/gamefeed-cli/internal/core/ports/driven"
)

// RefreshThrottler decides whether a refresh key may hit the network again.
// Intervals are per category; a key never recorded may always refresh.
type RefreshThrottler struct {
	store     driven.ThrottleStore
	intervals map[domain.Category]time.Duration
	now       func() time.Time
}

// NewRefreshThrottler creates a throttler. Categories missing from intervals
// are never throttled.
func NewRefreshThrottler(store driven.ThrottleStore, intervals map[domain.Category]time.Duration) *RefreshThrottler {
	copied := make(map[domain.Category]time.Duration, len(intervals))
	for k, v := range intervals {
		copied[k] = v
	}
	return &RefreshThrottler{
		store:     store,
		intervals: copied,
		now:       time.Now,
	}
}

// Interval returns the minimum time between refreshes for a category.
func (t *RefreshThrottler) Interval(category domain.Category) time.Duration {
	return t.intervals[category]
}

// CanRefresh reports whether key was never refreshed or its category interval has elapsed.
func (t *RefreshThrottler) CanRefresh(ctx context.Context, category domain.Category, key domain.RefreshKey) (bool, error) {
	rec, ok, err := t.store.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	elapsed := t.now().UnixMilli() - rec.LastRefreshedAtUnixMillis
	return elapsed >= t.intervals[category].Milliseconds(), nil
}

// RecordRefresh marks key as refreshed now.
func (t *RefreshThrottler) RecordRefresh(ctx context.Context, key domain.RefreshKey) error {
	return t.store.Put(ctx, domain.ThrottleRecord{
		Key:                       key,
		LastRefreshedAtUnixMillis: t.now().UnixMilli(),
	})
}

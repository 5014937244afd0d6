package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
	"github.com/custodia-labs/gamefeed-cli/internal/logger"
)

// DefaultFetchTimeout bounds a refresh when ReaderDeps.FetchTimeout is zero.
const DefaultFetchTimeout = 30 * time.Second

// ReaderDeps are the collaborators shared by every category reader.
type ReaderDeps struct {
	// Throttler gates network refreshes. Nil means always refresh.
	Throttler *RefreshThrottler
	// FetchTimeout bounds Fetching plus Persisting.
	FetchTimeout time.Duration
}

func (d ReaderDeps) fetchTimeout() time.Duration {
	if d.FetchTimeout <= 0 {
		return DefaultFetchTimeout
	}
	return d.FetchTimeout
}

// CategorySource is the per-category policy a reader runs with.
type CategorySource[T any] struct {
	Category domain.Category
	// Key builds the throttle key of a pagination window.
	Key func(page domain.Page) domain.RefreshKey
	// Fetch loads the window from the remote API.
	Fetch func(ctx context.Context, page domain.Page) ([]T, error)
	// Save upserts fetched items into the local store and records them as
	// the page's window, so Observe shows exactly what the remote returned.
	Save func(ctx context.Context, page domain.Page, items []T) error
	// Observe subscribes to the local view of the window.
	Observe func(ctx context.Context, page domain.Page) (<-chan []T, error)
}

// ReadCategory runs one Deciding → Fetching → Persisting → Streaming pass.
//
// A refresh failure is emitted as an Update with Err and the reader still goes
// on to stream the local view. Fetching and Persisting are not interrupted by
// cancelling ctx; Streaming ends as soon as ctx is done, and the returned
// channel is then closed.
func ReadCategory[T any](ctx context.Context, deps ReaderDeps, src CategorySource[T], page domain.Page) <-chan domain.Update[T] {
	out := make(chan domain.Update[T])
	page = page.Normalize()

	go func() {
		defer close(out)

		log := readerLog(src.Category, page)
		if _, err := refresh(ctx, deps, src, page, log); err != nil {
			log.Warn().Err(err).Msg("refresh failed, serving local data")
			if !send(ctx, out, domain.Update[T]{Err: err}) {
				return
			}
		}

		items, err := src.Observe(ctx, page)
		if err != nil {
			send(ctx, out, domain.Update[T]{Err: fmt.Errorf("observing %s: %w", src.Category, err)})
			return
		}
		log.Debug().Msg("streaming local view")
		for {
			select {
			case <-ctx.Done():
				return
			case batch, ok := <-items:
				if !ok {
					return
				}
				if !send(ctx, out, domain.Update[T]{Items: batch}) {
					return
				}
			}
		}
	}()

	return out
}

// RefreshCategory runs Deciding → Fetching → Persisting without streaming.
// It returns true when the window was fetched and saved.
func RefreshCategory[T any](ctx context.Context, deps ReaderDeps, src CategorySource[T], page domain.Page) (bool, error) {
	page = page.Normalize()
	return refresh(ctx, deps, src, page, readerLog(src.Category, page))
}

func refresh[T any](ctx context.Context, deps ReaderDeps, src CategorySource[T], page domain.Page, log zerolog.Logger) (bool, error) {
	key := src.Key(page)

	if deps.Throttler != nil {
		allowed, err := deps.Throttler.CanRefresh(ctx, src.Category, key)
		if err != nil {
			log.Warn().Err(err).Str("key", string(key)).Msg("throttle lookup failed, refreshing")
			allowed = true
		}
		if !allowed {
			log.Debug().Str("key", string(key)).Msg("throttled, skipping refresh")
			return false, nil
		}
	}

	work, cancel := context.WithTimeout(context.WithoutCancel(ctx), deps.fetchTimeout())
	defer cancel()

	items, err := src.Fetch(work, page)
	if err != nil {
		return false, domain.Classify(err)
	}
	if err := src.Save(work, page, items); err != nil {
		return false, fmt.Errorf("saving %s: %w", src.Category, err)
	}
	if deps.Throttler != nil {
		if err := deps.Throttler.RecordRefresh(work, key); err != nil {
			log.Warn().Err(err).Str("key", string(key)).Msg("recording refresh failed")
		}
	}
	log.Debug().Int("items", len(items)).Str("key", string(key)).Msg("refreshed")
	return true, nil
}

func send[T any](ctx context.Context, out chan<- domain.Update[T], u domain.Update[T]) bool {
	select {
	case out <- u:
		return true
	case <-ctx.Done():
		return false
	}
}

// errorStream returns a closed stream carrying a single error.
func errorStream[T any](err error) <-chan domain.Update[T] {
	out := make(chan domain.Update[T], 1)
	out <- domain.Update[T]{Err: err}
	close(out)
	return out
}

func readerLog(category domain.Category, page domain.Page) zerolog.Logger {
	return logger.With("reader").With().
		Str("run", uuid.NewString()).
		Str("category", category.String()).
		Int("offset", page.Offset).
		Int("limit", page.Limit).
		Logger()
}

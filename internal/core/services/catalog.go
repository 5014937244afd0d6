package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
	"github.com/custodia-labs/gamefeed-cli/internal/core/ports/driven"
	"github.com/custodia-labs/gamefeed-cli/internal/core/ports/driving"
)

// Ensure CatalogService implements the interface.
var _ driving.CatalogService = (*CatalogService)(nil)

// errGamesAPIUnavailable is returned by refreshes when no games API is configured.
var errGamesAPIUnavailable = fmt.Errorf("games API: %w", domain.ErrAuthRequired)

// CatalogService serves game categories offline-first.
type CatalogService struct {
	remote driven.GamesAPI
	store  driven.GameStore
	deps   ReaderDeps
}

// NewCatalogService creates a catalog service. remote may be nil, in which case
// every refresh reports ErrAuthRequired and only local data is served.
func NewCatalogService(
	remote driven.GamesAPI,
	store driven.GameStore,
	throttler *RefreshThrottler,
	fetchTimeout time.Duration,
) *CatalogService {
	return &CatalogService{
		remote: remote,
		store:  store,
		deps:   ReaderDeps{Throttler: throttler, FetchTimeout: fetchTimeout},
	}
}

// PopularGames streams the highest rated games.
func (s *CatalogService) PopularGames(ctx context.Context, page domain.Page) <-chan domain.Update[domain.Game] {
	return ReadCategory(ctx, s.deps, s.source(domain.CategoryPopular), page)
}

// RecentlyReleasedGames streams games released in the last 30 days, newest first.
func (s *CatalogService) RecentlyReleasedGames(ctx context.Context, page domain.Page) <-chan domain.Update[domain.Game] {
	return ReadCategory(ctx, s.deps, s.source(domain.CategoryRecentlyReleased), page)
}

// ComingSoonGames streams unreleased games, soonest first.
func (s *CatalogService) ComingSoonGames(ctx context.Context, page domain.Page) <-chan domain.Update[domain.Game] {
	return ReadCategory(ctx, s.deps, s.source(domain.CategoryComingSoon), page)
}

// MostAnticipatedGames streams unreleased games by hype.
func (s *CatalogService) MostAnticipatedGames(ctx context.Context, page domain.Page) <-chan domain.Update[domain.Game] {
	return ReadCategory(ctx, s.deps, s.source(domain.CategoryMostAnticipated), page)
}

// SearchGames streams search results. An empty query yields a single ErrInvalidInput.
func (s *CatalogService) SearchGames(ctx context.Context, query string, page domain.Page) <-chan domain.Update[domain.Game] {
	query = strings.TrimSpace(query)
	if query == "" {
		return errorStream[domain.Game](fmt.Errorf("%w: empty search query", domain.ErrInvalidInput))
	}
	return ReadCategory(ctx, s.deps, s.searchSource(query), page)
}

// Games dispatches to the stream of a browsable category.
func (s *CatalogService) Games(ctx context.Context, category domain.Category, page domain.Page) <-chan domain.Update[domain.Game] {
	if !isBrowsable(category) {
		return errorStream[domain.Game](fmt.Errorf("%w: %q", domain.ErrUnsupportedCategory, category))
	}
	return ReadCategory(ctx, s.deps, s.source(category), page)
}

// GetGame returns a game from the local store, falling back to the remote API.
// A remotely fetched game is persisted before it is returned.
func (s *CatalogService) GetGame(ctx context.Context, id int64) (*domain.Game, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: game id must be positive", domain.ErrInvalidInput)
	}

	game, err := s.store.GetGame(ctx, id)
	if err == nil {
		return game, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if s.remote == nil {
		return nil, errGamesAPIUnavailable
	}
	game, err = s.remote.GetGame(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, fmt.Errorf("game %d: %w", id, domain.ErrNotFound)
		}
		return nil, domain.Classify(err)
	}
	if err := s.store.SaveGames(ctx, []domain.Game{*game}); err != nil {
		return nil, fmt.Errorf("saving game %d: %w", id, err)
	}
	return game, nil
}

// RefreshCategory refreshes one window of a browsable category if the throttler allows it.
func (s *CatalogService) RefreshCategory(ctx context.Context, category domain.Category, page domain.Page) (bool, error) {
	if !isBrowsable(category) {
		return false, fmt.Errorf("%w: %q", domain.ErrUnsupportedCategory, category)
	}
	return RefreshCategory(ctx, s.deps, s.source(category), page)
}

func (s *CatalogService) source(category domain.Category) CategorySource[domain.Game] {
	return CategorySource[domain.Game]{
		Category: category,
		Key: func(page domain.Page) domain.RefreshKey {
			return domain.KeyFor(category, page)
		},
		Fetch: func(ctx context.Context, page domain.Page) ([]domain.Game, error) {
			if s.remote == nil {
				return nil, errGamesAPIUnavailable
			}
			return s.remote.Games(ctx, category, page)
		},
		Save: func(ctx context.Context, page domain.Page, games []domain.Game) error {
			return s.store.SaveWindow(ctx, domain.GameQuery{Category: category, Page: page}, games)
		},
		Observe: func(ctx context.Context, page domain.Page) (<-chan []domain.Game, error) {
			return s.store.ObserveGames(ctx, domain.GameQuery{Category: category, Page: page})
		},
	}
}

func (s *CatalogService) searchSource(query string) CategorySource[domain.Game] {
	return CategorySource[domain.Game]{
		Category: domain.CategorySearch,
		Key: func(page domain.Page) domain.RefreshKey {
			return domain.SearchKey(query, page)
		},
		Fetch: func(ctx context.Context, page domain.Page) ([]domain.Game, error) {
			if s.remote == nil {
				return nil, errGamesAPIUnavailable
			}
			return s.remote.SearchGames(ctx, query, page)
		},
		Save: func(ctx context.Context, page domain.Page, games []domain.Game) error {
			return s.store.SaveWindow(ctx, domain.GameQuery{
				Category: domain.CategorySearch,
				Page:     page,
				Text:     query,
			}, games)
		},
		Observe: func(ctx context.Context, page domain.Page) (<-chan []domain.Game, error) {
			return s.store.ObserveGames(ctx, domain.GameQuery{
				Category: domain.CategorySearch,
				Page:     page,
				Text:     query,
			})
		},
	}
}

func isBrowsable(category domain.Category) bool {
	return category.IsGameCategory() && category != domain.CategorySearch
}

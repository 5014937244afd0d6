package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
	"github.com/custodia-labs/gamefeed-cli/internal/core/ports/driven"
	"github.com/custodia-labs/gamefeed-cli/internal/core/ports/driving"
)

// Ensure NewsService implements the interface.
var _ driving.NewsService = (*NewsService)(nil)

var errNewsAPIUnavailable = fmt.Errorf("%w: news API key not configured", domain.ErrInvalidInput)

// NewsService serves news articles offline-first. News calls are unauthenticated.
type NewsService struct {
	remote driven.ArticlesAPI
	store  driven.ArticleStore
	deps   ReaderDeps
}

// NewNewsService creates a news service. remote may be nil.
func NewNewsService(
	remote driven.ArticlesAPI,
	store driven.ArticleStore,
	throttler *RefreshThrottler,
	fetchTimeout time.Duration,
) *NewsService {
	return &NewsService{
		remote: remote,
		store:  store,
		deps:   ReaderDeps{Throttler: throttler, FetchTimeout: fetchTimeout},
	}
}

// Articles streams the newest articles.
func (s *NewsService) Articles(ctx context.Context, page domain.Page) <-chan domain.Update[domain.Article] {
	return ReadCategory(ctx, s.deps, s.source(), page)
}

// GetArticle looks an article up in the local store only.
func (s *NewsService) GetArticle(ctx context.Context, id int64) (*domain.Article, error) {
	return s.store.GetArticle(ctx, id)
}

// Refresh refreshes one window of news if the throttler allows it.
func (s *NewsService) Refresh(ctx context.Context, page domain.Page) (bool, error) {
	return RefreshCategory(ctx, s.deps, s.source(), page)
}

func (s *NewsService) source() CategorySource[domain.Article] {
	return CategorySource[domain.Article]{
		Category: domain.CategoryNews,
		Key: func(page domain.Page) domain.RefreshKey {
			return domain.KeyFor(domain.CategoryNews, page)
		},
		Fetch: func(ctx context.Context, page domain.Page) ([]domain.Article, error) {
			if s.remote == nil {
				return nil, errNewsAPIUnavailable
			}
			return s.remote.Articles(ctx, page)
		},
		Save:    s.store.SaveArticles,
		Observe: s.store.ObserveArticles,
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
	"github.com/custodia-labs/gamefeed-cli/internal/core/ports/driving"
	"github.com/custodia-labs/gamefeed-cli/internal/logger"
)

// Ensure PrefetchService implements the interface.
var _ driving.Prefetcher = (*PrefetchService)(nil)

// prefetchConcurrency caps parallel refreshes; the games API allows 4 requests per second.
const prefetchConcurrency = 4

// PrefetchService refreshes the first window of every category.
// Throttled categories are skipped, so running it often is cheap.
type PrefetchService struct {
	catalog  driving.CatalogService
	news     driving.NewsService
	pageSize int
}

// NewPrefetchService creates a prefetch service. news may be nil.
func NewPrefetchService(catalog driving.CatalogService, news driving.NewsService, pageSize int) *PrefetchService {
	return &PrefetchService{
		catalog:  catalog,
		news:     news,
		pageSize: pageSize,
	}
}

// PrefetchAll refreshes every category concurrently and returns the ones
// that were refreshed, games first in listing order and news last. One failing
// category does not stop the others; all failures are joined into the error.
func (s *PrefetchService) PrefetchAll(ctx context.Context) ([]domain.Category, error) {
	page := domain.Page{Limit: s.pageSize}.Normalize()

	var (
		mu        sync.Mutex
		refreshed = make(map[domain.Category]bool)
		errs      []error
	)
	record := func(category domain.Category, ok bool, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", category, err))
			return
		}
		if ok {
			refreshed[category] = true
			logger.Debug("prefetch: refreshed %s", category)
		}
	}

	var g errgroup.Group
	g.SetLimit(prefetchConcurrency)

	if s.catalog != nil {
		for _, category := range domain.GameCategories {
			g.Go(func() error {
				ok, err := s.catalog.RefreshCategory(ctx, category, page)
				record(category, ok, err)
				return nil
			})
		}
	}
	if s.news != nil {
		g.Go(func() error {
			ok, err := s.news.Refresh(ctx, page)
			record(domain.CategoryNews, ok, err)
			return nil
		})
	}
	_ = g.Wait()

	var out []domain.Category
	for _, category := range append(slices.Clone(domain.GameCategories), domain.CategoryNews) {
		if refreshed[category] {
			out = append(out, category)
		}
	}
	return out, errors.Join(errs...)
}

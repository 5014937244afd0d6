package mcp

import (
	"context"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
)

// mockCatalogService is a mock implementation of driving.CatalogService.
// Streams emit refreshErr (when set) and then one snapshot of games.
type mockCatalogService struct {
	games      []domain.Game
	game       *domain.Game
	refreshErr error
	streamErr  error
	err        error

	lastCategory domain.Category
	lastQuery    string
	lastPage     domain.Page
}

func (m *mockCatalogService) stream(ctx context.Context) <-chan domain.Update[domain.Game] {
	out := make(chan domain.Update[domain.Game], 2)
	if m.refreshErr != nil {
		out <- domain.Update[domain.Game]{Err: m.refreshErr}
	}
	if m.streamErr != nil {
		out <- domain.Update[domain.Game]{Err: m.streamErr}
		close(out)
		return out
	}
	out <- domain.Update[domain.Game]{Items: m.games}
	go func() {
		<-ctx.Done()
		close(out)
	}()
	return out
}

func (m *mockCatalogService) PopularGames(ctx context.Context, page domain.Page) <-chan domain.Update[domain.Game] {
	return m.Games(ctx, domain.CategoryPopular, page)
}

func (m *mockCatalogService) RecentlyReleasedGames(ctx context.Context, page domain.Page) <-chan domain.Update[domain.Game] {
	return m.Games(ctx, domain.CategoryRecentlyReleased, page)
}

func (m *mockCatalogService) ComingSoonGames(ctx context.Context, page domain.Page) <-chan domain.Update[domain.Game] {
	return m.Games(ctx, domain.CategoryComingSoon, page)
}

func (m *mockCatalogService) MostAnticipatedGames(ctx context.Context, page domain.Page) <-chan domain.Update[domain.Game] {
	return m.Games(ctx, domain.CategoryMostAnticipated, page)
}

func (m *mockCatalogService) SearchGames(ctx context.Context, query string, page domain.Page) <-chan domain.Update[domain.Game] {
	m.lastQuery = query
	m.lastPage = page
	return m.stream(ctx)
}

func (m *mockCatalogService) Games(ctx context.Context, category domain.Category, page domain.Page) <-chan domain.Update[domain.Game] {
	m.lastCategory = category
	m.lastPage = page
	return m.stream(ctx)
}

func (m *mockCatalogService) GetGame(_ context.Context, _ int64) (*domain.Game, error) {
	return m.game, m.err
}

func (m *mockCatalogService) RefreshCategory(_ context.Context, _ domain.Category, _ domain.Page) (bool, error) {
	return false, m.err
}

// mockNewsService is a mock implementation of driving.NewsService.
type mockNewsService struct {
	articles   []domain.Article
	article    *domain.Article
	refreshErr error
	err        error
}

func (m *mockNewsService) Articles(ctx context.Context, _ domain.Page) <-chan domain.Update[domain.Article] {
	out := make(chan domain.Update[domain.Article], 2)
	if m.refreshErr != nil {
		out <- domain.Update[domain.Article]{Err: m.refreshErr}
	}
	out <- domain.Update[domain.Article]{Items: m.articles}
	go func() {
		<-ctx.Done()
		close(out)
	}()
	return out
}

func (m *mockNewsService) GetArticle(_ context.Context, _ int64) (*domain.Article, error) {
	return m.article, m.err
}

func (m *mockNewsService) Refresh(_ context.Context, _ domain.Page) (bool, error) {
	return false, m.err
}

package cli

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/gamefeed-cli/internal/config"
	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
)

// --- Mocks of the driving ports ---

type mockCatalogService struct {
	games      []domain.Game
	game       *domain.Game
	refreshErr error
	getErr     error

	lastCategory domain.Category
	lastQuery    string
	lastPage     domain.Page
}

func (m *mockCatalogService) stream(ctx context.Context) <-chan domain.Update[domain.Game] {
	out := make(chan domain.Update[domain.Game], 2)
	if m.refreshErr != nil {
		out <- domain.Update[domain.Game]{Err: m.refreshErr}
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
	return m.game, m.getErr
}

func (m *mockCatalogService) RefreshCategory(_ context.Context, _ domain.Category, _ domain.Page) (bool, error) {
	return true, nil
}

type mockNewsService struct {
	articles []domain.Article
}

func (m *mockNewsService) Articles(ctx context.Context, _ domain.Page) <-chan domain.Update[domain.Article] {
	out := make(chan domain.Update[domain.Article], 1)
	out <- domain.Update[domain.Article]{Items: m.articles}
	go func() {
		<-ctx.Done()
		close(out)
	}()
	return out
}

func (m *mockNewsService) GetArticle(_ context.Context, _ int64) (*domain.Article, error) {
	return nil, domain.ErrNotFound
}

func (m *mockNewsService) Refresh(_ context.Context, _ domain.Page) (bool, error) {
	return true, nil
}

type mockAuthService struct {
	creds    *domain.Credentials
	expired  bool
	loginErr error
	logins   int
}

func (m *mockAuthService) EnsureValid(_ context.Context) error {
	return nil
}

func (m *mockAuthService) Login(_ context.Context) (domain.Credentials, error) {
	m.logins++
	if m.loginErr != nil {
		return domain.Credentials{}, m.loginErr
	}
	return domain.NewCredentials("fresh-token-123", domain.TokenTypeBearer, 5_000_000, time.Now()), nil
}

func (m *mockAuthService) Status(_ context.Context) (*domain.Credentials, bool, error) {
	return m.creds, m.expired, nil
}

type mockPrefetcher struct {
	refreshed []domain.Category
	err       error
}

func (m *mockPrefetcher) PrefetchAll(_ context.Context) ([]domain.Category, error) {
	return m.refreshed, m.err
}

type mockScheduler struct {
	started   atomic.Bool
	status    []domain.TaskStatus
	statusErr error
}

func (m *mockScheduler) Status(_ context.Context) ([]domain.TaskStatus, error) {
	return m.status, m.statusErr
}

func (m *mockScheduler) Start(_ context.Context) error {
	m.started.Store(true)
	return nil
}

func (m *mockScheduler) Stop() error {
	return nil
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	catalog   *mockCatalogService
	news      *mockNewsService
	auth      *mockAuthService
	prefetch  *mockPrefetcher
	scheduler *mockScheduler
}

// setupTestServices installs mocks and returns a cleanup restoring the previous state.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		catalog:   &mockCatalogService{},
		news:      &mockNewsService{},
		auth:      &mockAuthService{},
		prefetch:  &mockPrefetcher{},
		scheduler: &mockScheduler{},
	}

	old := Services{
		Config: cfg, ConfigPath: cfgPath, Catalog: catalogService, News: newsService,
		Auth: authService, Prefetcher: prefetcher, Scheduler: scheduler,
		Watch: watchStore, Close: closeServices,
	}
	SetServices(&Services{
		Config:     config.Default(),
		Catalog:    ts.catalog,
		News:       ts.news,
		Auth:       ts.auth,
		Prefetcher: ts.prefetch,
		Scheduler:  ts.scheduler,
	})

	return ts, func() {
		SetServices(&old)
		gamesFlags.reset()
		searchFlags.reset()
		newsFlags.reset()
		gameJSON = false
	}
}

// execute runs the root command with args and returns stdout and stderr.
func execute(args ...string) (string, string, error) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

var errBoom = errors.New("boom")

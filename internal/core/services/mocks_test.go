package services

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
	"github.com/custodia-labs/gamefeed-cli/internal/core/ports/driven"
)

// --- Mock implementations shared by the service tests ---

// mockCredentialsStore implements driven.CredentialsStore.
type mockCredentialsStore struct {
	mu      sync.RWMutex
	creds   domain.Credentials
	saves   int
	saveErr error
	getErr  error
}

func (m *mockCredentialsStore) Save(_ context.Context, creds domain.Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.creds = creds
	m.saves++
	return nil
}

func (m *mockCredentialsStore) Get(_ context.Context) (domain.Credentials, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return domain.Credentials{}, m.getErr
	}
	return m.creds, nil
}

func (m *mockCredentialsStore) token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.creds.AccessToken
}

// mockTokenSupplier implements driven.TokenSupplier. Each call issues
// "token-<n>" unless err is set.
type mockTokenSupplier struct {
	calls atomic.Int32
	delay time.Duration
	err   error
	now   func() time.Time
}

func (m *mockTokenSupplier) FetchRemote(_ context.Context) (domain.Credentials, error) {
	n := m.calls.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.err != nil {
		return domain.Credentials{}, m.err
	}
	now := time.Now()
	if m.now != nil {
		now = m.now()
	}
	return domain.NewCredentials(tokenN(int(n)), domain.TokenTypeBearer, 60*24*3600, now), nil
}

func tokenN(n int) string {
	return "token-" + strconv.Itoa(n)
}

// mockThrottleStore implements driven.ThrottleStore.
type mockThrottleStore struct {
	mu      sync.Mutex
	records map[domain.RefreshKey]domain.ThrottleRecord
	puts    int
	getErr  error
}

func newMockThrottleStore() *mockThrottleStore {
	return &mockThrottleStore{records: make(map[domain.RefreshKey]domain.ThrottleRecord)}
}

func (m *mockThrottleStore) Get(_ context.Context, key domain.RefreshKey) (domain.ThrottleRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return domain.ThrottleRecord{}, false, m.getErr
	}
	rec, ok := m.records[key]
	return rec, ok, nil
}

func (m *mockThrottleStore) Put(_ context.Context, rec domain.ThrottleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.Key] = rec
	m.puts++
	return nil
}

func (m *mockThrottleStore) has(key domain.RefreshKey) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[key]
	return ok
}

func (m *mockThrottleStore) putCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

// notifier fans a change signal out to observers.
type notifier struct {
	mu   sync.Mutex
	subs []chan struct{}
}

func (n *notifier) subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	n.subs = append(n.subs, ch)
	n.mu.Unlock()
	return ch
}

func (n *notifier) notify() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func observe[T any](ctx context.Context, n *notifier, snapshot func() []T) <-chan []T {
	changed := n.subscribe()
	out := make(chan []T)
	go func() {
		defer close(out)
		for {
			select {
			case out <- snapshot():
			case <-ctx.Done():
				return
			}
			select {
			case <-changed:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// mockGameStore implements driven.GameStore. Every query sees all games by ID.
type mockGameStore struct {
	mu         sync.Mutex
	games      map[int64]domain.Game
	saves      int
	saveErr    error
	observeErr error
	changes    notifier
}

func newMockGameStore(games ...domain.Game) *mockGameStore {
	m := &mockGameStore{games: make(map[int64]domain.Game)}
	for _, g := range games {
		m.games[g.ID] = g
	}
	return m
}

func (m *mockGameStore) SaveGames(_ context.Context, games []domain.Game) error {
	m.mu.Lock()
	if m.saveErr != nil {
		m.mu.Unlock()
		return m.saveErr
	}
	for _, g := range games {
		m.games[g.ID] = g
	}
	m.saves++
	m.mu.Unlock()
	m.changes.notify()
	return nil
}

// SaveWindow ignores window order; every query sees all games anyway.
func (m *mockGameStore) SaveWindow(ctx context.Context, _ domain.GameQuery, games []domain.Game) error {
	return m.SaveGames(ctx, games)
}

func (m *mockGameStore) ObserveGames(ctx context.Context, _ domain.GameQuery) (<-chan []domain.Game, error) {
	if m.observeErr != nil {
		return nil, m.observeErr
	}
	return observe(ctx, &m.changes, m.snapshot), nil
}

func (m *mockGameStore) GetGame(_ context.Context, id int64) (*domain.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &g, nil
}

func (m *mockGameStore) snapshot() []domain.Game {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Game, 0, len(m.games))
	for _, g := range m.games {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *mockGameStore) rowCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.games)
}

// mockGamesAPI implements driven.GamesAPI.
type mockGamesAPI struct {
	mu         sync.Mutex
	games      []domain.Game
	byID       map[int64]domain.Game
	err        error
	calls      []domain.Category
	lastQuery  string
	getCalls   int
	fetchCtxOK bool
}

func (m *mockGamesAPI) Games(ctx context.Context, category domain.Category, _ domain.Page) ([]domain.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, category)
	m.fetchCtxOK = ctx.Err() == nil
	if m.err != nil {
		return nil, m.err
	}
	return m.games, nil
}

func (m *mockGamesAPI) SearchGames(_ context.Context, query string, _ domain.Page) ([]domain.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, domain.CategorySearch)
	m.lastQuery = query
	if m.err != nil {
		return nil, m.err
	}
	return m.games, nil
}

func (m *mockGamesAPI) GetGame(_ context.Context, id int64) (*domain.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.err != nil {
		return nil, m.err
	}
	g, ok := m.byID[id]
	if !ok {
		return nil, &domain.HTTPError{Code: 404}
	}
	return &g, nil
}

func (m *mockGamesAPI) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockArticleStore implements driven.ArticleStore.
type mockArticleStore struct {
	mu       sync.Mutex
	articles map[int64]domain.Article
	changes  notifier
}

func newMockArticleStore(articles ...domain.Article) *mockArticleStore {
	m := &mockArticleStore{articles: make(map[int64]domain.Article)}
	for _, a := range articles {
		m.articles[a.ID] = a
	}
	return m
}

func (m *mockArticleStore) SaveArticles(_ context.Context, _ domain.Page, articles []domain.Article) error {
	m.mu.Lock()
	for _, a := range articles {
		m.articles[a.ID] = a
	}
	m.mu.Unlock()
	m.changes.notify()
	return nil
}

func (m *mockArticleStore) ObserveArticles(ctx context.Context, _ domain.Page) (<-chan []domain.Article, error) {
	return observe(ctx, &m.changes, func() []domain.Article {
		m.mu.Lock()
		defer m.mu.Unlock()
		out := make([]domain.Article, 0, len(m.articles))
		for _, a := range m.articles {
			out = append(out, a)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return out
	}), nil
}

func (m *mockArticleStore) GetArticle(_ context.Context, id int64) (*domain.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

// mockArticlesAPI implements driven.ArticlesAPI.
type mockArticlesAPI struct {
	articles []domain.Article
	err      error
	calls    atomic.Int32
}

func (m *mockArticlesAPI) Articles(_ context.Context, _ domain.Page) ([]domain.Article, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.articles, nil
}

// Ensure mocks implement interfaces
var (
	_ driven.CredentialsStore = (*mockCredentialsStore)(nil)
	_ driven.TokenSupplier    = (*mockTokenSupplier)(nil)
	_ driven.ThrottleStore    = (*mockThrottleStore)(nil)
	_ driven.GameStore        = (*mockGameStore)(nil)
	_ driven.GamesAPI         = (*mockGamesAPI)(nil)
	_ driven.ArticleStore     = (*mockArticleStore)(nil)
	_ driven.ArticlesAPI      = (*mockArticlesAPI)(nil)
)

// next reads one update or fails after a second.
func next[T any](t *testing.T, ch <-chan domain.Update[T]) domain.Update[T] {
	t.Helper()
	select {
	case u, ok := <-ch:
		require.True(t, ok, "stream closed early")
		return u
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for update")
		return domain.Update[T]{}
	}
}

// drained waits for the stream to close.
func drained[T any](t *testing.T, ch <-chan domain.Update[T]) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("stream not closed")
		}
	}
}

func game(id int64, name string) domain.Game {
	return domain.Game{ID: id, Name: name}
}

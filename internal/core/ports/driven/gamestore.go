package driven

import (
	"context"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
)

// GameStore is the local persistent store for games.
type GameStore interface {
	// SaveGames upserts games by ID.
	SaveGames(ctx context.Context, games []domain.Game) error

	// SaveWindow upserts games and records them, in the order given, as the
	// window query.Page of the query's list. Both happen atomically.
	SaveWindow(ctx context.Context, query domain.GameQuery, games []domain.Game) error

	// ObserveGames emits the query's last saved window now and again after every change,
	// until ctx is cancelled. The channel is closed on cancellation.
	ObserveGames(ctx context.Context, query domain.GameQuery) (<-chan []domain.Game, error)

	// GetGame returns domain.ErrNotFound when the game is not stored.
	GetGame(ctx context.Context, id int64) (*domain.Game, error)
}

// ArticleStore is the local persistent store for news articles.
type ArticleStore interface {
	// SaveArticles upserts articles by ID and records them, in the order given,
	// as the feed window page. Both happen atomically.
	SaveArticles(ctx context.Context, page domain.Page, articles []domain.Article) error

	// ObserveArticles emits the last saved feed window now and after every change.
	ObserveArticles(ctx context.Context, page domain.Page) (<-chan []domain.Article, error)

	// GetArticle returns domain.ErrNotFound when the article is not stored.
	GetArticle(ctx context.Context, id int64) (*domain.Article, error)
}

package driving

import (
	"context"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
)

// CatalogService serves game categories offline-first.
//
// Stream methods return a channel that first reports any refresh error and
// then keeps emitting the local view until ctx is cancelled.
type CatalogService interface {
	PopularGames(ctx context.Context, page domain.Page) <-chan domain.Update[domain.Game]
	RecentlyReleasedGames(ctx context.Context, page domain.Page) <-chan domain.Update[domain.Game]
	ComingSoonGames(ctx context.Context, page domain.Page) <-chan domain.Update[domain.Game]
	MostAnticipatedGames(ctx context.Context, page domain.Page) <-chan domain.Update[domain.Game]
	SearchGames(ctx context.Context, query string, page domain.Page) <-chan domain.Update[domain.Game]

	// Games dispatches to the stream of a browsable category.
	Games(ctx context.Context, category domain.Category, page domain.Page) <-chan domain.Update[domain.Game]

	// GetGame is single shot and propagates domain.ErrNotFound and transport errors.
	GetGame(ctx context.Context, id int64) (*domain.Game, error)

	// RefreshCategory refreshes one window if the throttler allows it.
	// Returns true when the network was hit and the result persisted.
	RefreshCategory(ctx context.Context, category domain.Category, page domain.Page) (bool, error)
}

// NewsService serves news articles offline-first.
type NewsService interface {
	Articles(ctx context.Context, page domain.Page) <-chan domain.Update[domain.Article]
	GetArticle(ctx context.Context, id int64) (*domain.Article, error)
	Refresh(ctx context.Context, page domain.Page) (bool, error)
}

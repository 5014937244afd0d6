package driven

import (
	"context"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
)

// GamesAPI is the remote games catalogue. Every call is authenticated.
type GamesAPI interface {
	// Games fetches one page of a browsable category.
	Games(ctx context.Context, category domain.Category, page domain.Page) ([]domain.Game, error)

	// SearchGames fetches one page of search results.
	SearchGames(ctx context.Context, query string, page domain.Page) ([]domain.Game, error)

	// GetGame fetches a single game; domain.ErrNotFound when the id is unknown.
	GetGame(ctx context.Context, id int64) (*domain.Game, error)
}

// ArticlesAPI is the remote news source. Calls are not authenticated.
type ArticlesAPI interface {
	Articles(ctx context.Context, page domain.Page) ([]domain.Article, error)
}

package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
)

// ListGamesInput is the input schema for the list_games tool.
type ListGamesInput struct {
	Category string `json:"category" jsonschema:"one of popular, recently-released, coming-soon, most-anticipated"`
	Offset   int    `json:"offset,omitempty" jsonschema:"number of games to skip"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of games to return (default 20)"`
}

// SearchGamesInput is the input schema for the search_games tool.
type SearchGamesInput struct {
	Query  string `json:"query" jsonschema:"the game title or words to search for"`
	Offset int    `json:"offset,omitempty" jsonschema:"number of results to skip"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 20)"`
}

// GetGameInput is the input schema for the get_game tool.
type GetGameInput struct {
	ID int64 `json:"id" jsonschema:"the IGDB game id"`
}

// ListNewsInput is the input schema for the list_news tool.
type ListNewsInput struct {
	Offset int `json:"offset,omitempty" jsonschema:"number of articles to skip"`
	Limit  int `json:"limit,omitempty" jsonschema:"maximum number of articles to return (default 20)"`
}

// GamesOutput is the output schema for tools returning a list of games.
type GamesOutput struct {
	Games []GameOutput `json:"games"`
	Count int          `json:"count"`
	// Warning reports a failed refresh; the games are then the cached view.
	Warning string `json:"warning,omitempty"`
}

// GameOutput represents a single game.
type GameOutput struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Summary     string   `json:"summary,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	RatingCount int      `json:"rating_count,omitempty"`
	Hypes       int      `json:"hypes,omitempty"`
	ReleaseDate string   `json:"release_date,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Platforms   []string `json:"platforms,omitempty"`
	Developers  []string `json:"developers,omitempty"`
	Publishers  []string `json:"publishers,omitempty"`
	CoverURL    string   `json:"cover_url,omitempty"`
	URL         string   `json:"url,omitempty"`
}

// NewsOutput is the output schema for the list_news tool.
type NewsOutput struct {
	Articles []ArticleOutput `json:"articles"`
	Count    int             `json:"count"`
	Warning  string          `json:"warning,omitempty"`
}

// ArticleOutput represents a single article.
type ArticleOutput struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Lede        string `json:"lede,omitempty"`
	URL         string `json:"url"`
	ImageURL    string `json:"image_url,omitempty"`
	PublishedAt string `json:"published_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_games",
		Description: "List games in a category (popular, recently-released, coming-soon, most-anticipated)",
	}, s.handleListGames)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_games",
		Description: "Search games by title",
	}, s.handleSearchGames)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_game",
		Description: "Get full details of one game by id",
	}, s.handleGetGame)

	if s.ports.News != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_news",
			Description: "List the latest gaming news articles",
		}, s.handleListNews)
	}
}

func (s *Server) handleListGames(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListGamesInput,
) (*mcp.CallToolResult, GamesOutput, error) {
	category, err := domain.ParseCategory(input.Category)
	if err != nil {
		return nil, GamesOutput{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	page := domain.Page{Offset: input.Offset, Limit: input.Limit}
	games, warning, err := snapshot(s.ports.Catalog.Games(ctx, category, page))
	if err != nil {
		return nil, GamesOutput{}, err
	}
	return nil, gamesOutput(games, warning), nil
}

func (s *Server) handleSearchGames(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchGamesInput,
) (*mcp.CallToolResult, GamesOutput, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	page := domain.Page{Offset: input.Offset, Limit: input.Limit}
	games, warning, err := snapshot(s.ports.Catalog.SearchGames(ctx, input.Query, page))
	if err != nil {
		return nil, GamesOutput{}, err
	}
	return nil, gamesOutput(games, warning), nil
}

func (s *Server) handleGetGame(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetGameInput,
) (*mcp.CallToolResult, GameOutput, error) {
	game, err := s.ports.Catalog.GetGame(ctx, input.ID)
	if err != nil {
		return nil, GameOutput{}, err
	}
	return nil, gameOutput(game), nil
}

func (s *Server) handleListNews(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListNewsInput,
) (*mcp.CallToolResult, NewsOutput, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	page := domain.Page{Offset: input.Offset, Limit: input.Limit}
	articles, warning, err := snapshot(s.ports.News.Articles(ctx, page))
	if err != nil {
		return nil, NewsOutput{}, err
	}

	output := NewsOutput{
		Articles: make([]ArticleOutput, len(articles)),
		Count:    len(articles),
		Warning:  warning,
	}
	for i := range articles {
		output.Articles[i] = ArticleOutput{
			ID:          articles[i].ID,
			Title:       articles[i].Title,
			Lede:        articles[i].Lede,
			URL:         articles[i].URL,
			ImageURL:    articles[i].ImageURL,
			PublishedAt: articles[i].PublishedAt.Format(time.RFC3339),
		}
	}
	return nil, output, nil
}

// snapshot reads a category stream up to its first data emission. Refresh
// errors before it become the warning; a stream that closes without data
// returns its last error.
func snapshot[T any](updates <-chan domain.Update[T]) ([]T, string, error) {
	var last error
	for u := range updates {
		if u.IsError() {
			last = u.Err
			continue
		}
		warning := ""
		if last != nil {
			warning = last.Error()
		}
		return u.Items, warning, nil
	}
	if last == nil {
		last = fmt.Errorf("stream closed without data")
	}
	return nil, "", last
}

func gamesOutput(games []domain.Game, warning string) GamesOutput {
	output := GamesOutput{
		Games:   make([]GameOutput, len(games)),
		Count:   len(games),
		Warning: warning,
	}
	for i := range games {
		output.Games[i] = gameOutput(&games[i])
	}
	return output
}

func gameOutput(g *domain.Game) GameOutput {
	out := GameOutput{
		ID:          g.ID,
		Name:        g.Name,
		Summary:     g.Summary,
		Rating:      g.TotalRating,
		RatingCount: g.TotalRatingCount,
		Hypes:       g.Hypes,
		Genres:      g.Genres,
		Platforms:   g.Platforms,
		Developers:  g.Developers,
		Publishers:  g.Publishers,
		CoverURL:    g.CoverURL(""),
		URL:         g.URL,
	}
	if g.ReleaseDate != nil {
		out.ReleaseDate = g.ReleaseDate.Format(time.DateOnly)
	}
	return out
}

// Package igdb implements driven.GamesAPI against the IGDB v4 API.
//
// Requests are Apicalypse query bodies POSTed to /games. The http.Client
// passed in is expected to carry the authenticating transport; this package
// only adds rate limiting and maps the wire format.
package igdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/gamefeed-cli/internal/adapters/driven/restclient"
	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
	"github.com/custodia-labs/gamefeed-cli/internal/core/ports/driven"
	"github.com/custodia-labs/gamefeed-cli/internal/logger"
)

// DefaultBaseURL is the IGDB v4 endpoint.
const DefaultBaseURL = "https://api.igdb.com/v4"

// Ensure Client implements the interface.
var _ driven.GamesAPI = (*Client)(nil)

// Client is the IGDB games API client.
type Client struct {
	rest        *restclient.Client
	rateLimiter *RateLimiter
	now         func() time.Time
}

// NewClient creates a client over httpClient.
func NewClient(httpClient *http.Client, baseURL string, rps float64) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		rest:        restclient.New(httpClient, baseURL),
		rateLimiter: NewRateLimiter(rps),
		now:         time.Now,
	}
}

// Games fetches one page of a browsable category.
func (c *Client) Games(ctx context.Context, category domain.Category, page domain.Page) ([]domain.Game, error) {
	query, err := categoryQuery(category, page.Normalize(), c.now())
	if err != nil {
		return nil, err
	}
	return c.query(ctx, query)
}

// SearchGames fetches one page of search results.
func (c *Client) SearchGames(ctx context.Context, text string, page domain.Page) ([]domain.Game, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty search query", domain.ErrInvalidInput)
	}
	return c.query(ctx, searchQuery(text, page.Normalize()))
}

// GetGame fetches one game by id.
func (c *Client) GetGame(ctx context.Context, id int64) (*domain.Game, error) {
	games, err := c.query(ctx, idQuery(id))
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, fmt.Errorf("game %d: %w", id, domain.ErrNotFound)
	}
	return &games[0], nil
}

func (c *Client) query(ctx context.Context, body string) ([]domain.Game, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, &domain.NetworkError{Cause: fmt.Errorf("rate limit wait: %w", err)}
	}

	var wire []wireGame
	header, err := c.rest.Do(ctx, restclient.Request{
		Method:      http.MethodPost,
		Path:        "games",
		Body:        []byte(body),
		ContentType: "text/plain",
	}, &wire)
	if err != nil {
		var httpErr *domain.HTTPError
		if errors.As(err, &httpErr) && httpErr.Code == http.StatusTooManyRequests {
			c.rateLimiter.RecordRateLimitError(header)
			logger.Warn("igdb: rate limited, backing off until %s", c.rateLimiter.RetryAt().Format(time.TimeOnly))
			return nil, fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
		}
		return nil, err
	}

	return toDomain(wire), nil
}

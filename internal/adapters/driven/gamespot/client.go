// Package gamespot implements driven.ArticlesAPI against the GameSpot API.
// The API is keyed by query parameter; requests carry no Authorization header.
package gamespot

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/custodia-labs/gamefeed-cli/internal/adapters/driven/restclient"
	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
	"github.com/custodia-labs/gamefeed-cli/internal/core/ports/driven"
)

// DefaultBaseURL is the GameSpot API endpoint.
const DefaultBaseURL = "https://www.gamespot.com/api"

// publishLayout is GameSpot's timestamp format; values are US Pacific time.
const publishLayout = "2006-01-02 15:04:05"

const fieldList = "id,title,deck,publish_date,site_detail_url,image"

// GameSpot status codes carried in the response envelope.
const (
	statusOK            = 1
	statusInvalidAPIKey = 100
	statusNotFound      = 101
	statusRateLimited   = 107
)

// Ensure Client implements the interface.
var _ driven.ArticlesAPI = (*Client)(nil)

// Client is the GameSpot articles client.
type Client struct {
	rest     *restclient.Client
	apiKey   string
	location *time.Location
}

// NewClient creates a client. httpClient must not be the authenticating one.
func NewClient(httpClient *http.Client, baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		loc = time.UTC
	}
	return &Client{
		rest:     restclient.New(httpClient, baseURL),
		apiKey:   apiKey,
		location: loc,
	}
}

type envelope struct {
	Error      string        `json:"error"`
	StatusCode int           `json:"status_code"`
	Results    []wireArticle `json:"results"`
}

type wireArticle struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Deck          string `json:"deck"`
	PublishDate   string `json:"publish_date"`
	SiteDetailURL string `json:"site_detail_url"`
	Image         *struct {
		Original    string `json:"original"`
		ScreenTiny  string `json:"screen_tiny"`
		SquareSmall string `json:"square_small"`
	} `json:"image"`
}

// Articles fetches one page of articles, newest first.
func (c *Client) Articles(ctx context.Context, page domain.Page) ([]domain.Article, error) {
	page = page.Normalize()
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: gamespot api key not configured", domain.ErrInvalidInput)
	}

	query := url.Values{}
	query.Set("api_key", c.apiKey)
	query.Set("format", "json")
	query.Set("field_list", fieldList)
	query.Set("sort", "publish_date:desc")
	query.Set("offset", strconv.Itoa(page.Offset))
	query.Set("limit", strconv.Itoa(page.Limit))

	var env envelope
	if _, err := c.rest.Do(ctx, restclient.Request{Path: "articles/", Query: query}, &env); err != nil {
		return nil, err
	}
	if env.StatusCode != statusOK {
		return nil, &domain.HTTPError{Code: httpStatus(env.StatusCode), Message: env.Error}
	}

	articles := make([]domain.Article, 0, len(env.Results))
	for i := range env.Results {
		a, err := c.toDomain(&env.Results[i])
		if err != nil {
			return nil, &domain.UnknownError{Cause: err}
		}
		articles = append(articles, a)
	}
	return articles, nil
}

func (c *Client) toDomain(w *wireArticle) (domain.Article, error) {
	published, err := time.ParseInLocation(publishLayout, w.PublishDate, c.location)
	if err != nil {
		return domain.Article{}, fmt.Errorf("article %d: parse publish_date %q: %w", w.ID, w.PublishDate, err)
	}

	a := domain.Article{
		ID:          w.ID,
		Title:       w.Title,
		Lede:        w.Deck,
		URL:         w.SiteDetailURL,
		PublishedAt: published.UTC(),
	}
	if w.Image != nil {
		a.ImageURL = w.Image.Original
		if a.ImageURL == "" {
			a.ImageURL = w.Image.SquareSmall
		}
	}
	return a, nil
}

func httpStatus(code int) int {
	switch code {
	case statusInvalidAPIKey:
		return http.StatusUnauthorized
	case statusNotFound:
		return http.StatusNotFound
	case statusRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

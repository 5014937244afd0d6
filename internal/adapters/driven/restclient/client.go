// Package restclient is the small JSON-over-HTTP layer shared by the remote
// API adapters. Every failure it returns is one of the domain error
// classifications: HTTPError, NetworkError or UnknownError.
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// maxErrorBody bounds how much of a failed response is kept as the message.
	maxErrorBody = 4 << 10
)

// UserAgent is sent with every request.
var UserAgent = "gamefeed"

// Request describes one API call relative to the client's base URL.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        []byte
	ContentType string
}

// Client performs requests against a single base URL.
type Client struct {
	http    *http.Client
	baseURL string
}

// New creates a client. A nil httpClient gets a default one with DefaultTimeout.
func New(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the base URL requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs r and decodes a 2xx JSON body into out (skipped when out is nil).
// The response headers are returned whenever a response was received, so
// callers can inspect rate limit headers on failures too.
func (c *Client) Do(ctx context.Context, r Request, out any) (http.Header, error) {
	req, err := c.newRequest(ctx, r)
	if err != nil {
		return nil, &domain.UnknownError{Cause: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.Classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.Header, &domain.HTTPError{
			Code:    resp.StatusCode,
			Message: errorMessage(resp.Body),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.Header, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return resp.Header, &domain.NetworkError{Cause: err}
		}
		return resp.Header, &domain.UnknownError{Cause: fmt.Errorf("decode response: %w", err)}
	}
	return resp.Header, nil
}

func (c *Client) newRequest(ctx context.Context, r Request) (*http.Request, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.baseURL + "/" + strings.TrimLeft(r.Path, "/")
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var body io.Reader = http.NoBody
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if r.ContentType != "" {
		req.Header.Set("Content-Type", r.ContentType)
	}
	return req, nil
}

// errorMessage extracts a readable message from an error body: the "message"
// or "error" field of a JSON object, otherwise the trimmed text.
func errorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var obj struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Title   string `json:"title"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		for _, s := range []string{obj.Message, obj.Error, obj.Title} {
			if s != "" {
				return s
			}
		}
	}

	// IGDB reports errors as an array of {title, status, cause}.
	var list []struct {
		Title string `json:"title"`
		Cause string `json:"cause"`
	}
	if json.Unmarshal(raw, &list) == nil && len(list) > 0 {
		if list[0].Cause != "" {
			return list[0].Title + ": " + list[0].Cause
		}
		return list[0].Title
	}

	return strings.TrimSpace(string(raw))
}

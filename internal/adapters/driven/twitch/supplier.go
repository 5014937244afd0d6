// Package twitch exchanges IGDB client credentials for an access token at the
// Twitch OAuth2 endpoint.
package twitch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
	"github.com/custodia-labs/gamefeed-cli/internal/core/ports/driven"
)

// DefaultTokenURL is the Twitch client-credentials endpoint.
const DefaultTokenURL = "https://id.twitch.tv/oauth2/token"

// Ensure TokenSupplier implements the interface.
var _ driven.TokenSupplier = (*TokenSupplier)(nil)

// TokenSupplier performs one client-credentials exchange per call. It never
// retries and never reads or writes the credentials store.
type TokenSupplier struct {
	config *clientcredentials.Config
	client *http.Client
	now    func() time.Time
}

// NewTokenSupplier creates a supplier. An empty tokenURL uses DefaultTokenURL;
// a nil client uses a plain client with a 30s timeout. The client must not be
// the authenticating pipeline's client.
func NewTokenSupplier(clientID, clientSecret, tokenURL string, client *http.Client) *TokenSupplier {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &TokenSupplier{
		config: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		client: client,
		now:    time.Now,
	}
}

// FetchRemote exchanges the client credentials for a new access token.
func (s *TokenSupplier) FetchRemote(ctx context.Context) (domain.Credentials, error) {
	issuedAt := s.now()

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.client)
	tok, err := s.config.Token(ctx)
	if err != nil {
		return domain.Credentials{}, classify(err)
	}
	if tok.AccessToken == "" {
		return domain.Credentials{}, &domain.UnknownError{Cause: errors.New("token response has no access_token")}
	}

	ttl := tok.ExpiresIn
	if ttl <= 0 && !tok.Expiry.IsZero() {
		ttl = int64(math.Round(tok.Expiry.Sub(issuedAt).Seconds()))
	}
	if ttl <= 0 {
		return domain.Credentials{}, &domain.UnknownError{Cause: errors.New("token response has no expires_in")}
	}

	tokenType := strings.ToLower(tok.TokenType)
	if tokenType == "" {
		tokenType = domain.TokenTypeBearer
	}
	return domain.NewCredentials(tok.AccessToken, tokenType, ttl, issuedAt), nil
}

func classify(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		return domain.Classify(err)
	}

	code := 0
	if retrieveErr.Response != nil {
		code = retrieveErr.Response.StatusCode
	}
	if code < 300 {
		return &domain.UnknownError{Cause: err}
	}
	return &domain.HTTPError{Code: code, Message: retrieveMessage(retrieveErr)}
}

// retrieveMessage prefers the RFC 6749 fields and falls back to Twitch's
// {"status": 400, "message": "..."} body.
func retrieveMessage(e *oauth2.RetrieveError) string {
	if e.ErrorDescription != "" {
		return e.ErrorDescription
	}
	if e.ErrorCode != "" {
		return e.ErrorCode
	}
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(e.Body, &body) == nil && body.Message != "" {
		return body.Message
	}
	return fmt.Sprintf("token endpoint returned %d", e.Response.StatusCode)
}

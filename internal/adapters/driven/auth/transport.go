package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/custodia-labs/gamefeed-cli/internal/logger"
)

// MaxReauthAttempts caps how many times one request re-authenticates after a 401.
const MaxReauthAttempts = 3

// TokenSource is the single-flight token holder shared by every request that
// goes through one Transport. services.Authenticator implements it.
type TokenSource interface {
	// CurrentToken returns the stored token, or "" when none is stored.
	CurrentToken(ctx context.Context) (string, error)
	// Reauthenticate returns the token to retry with after failedToken was rejected.
	Reauthenticate(ctx context.Context, failedToken string) (string, error)
}

// Transport authorizes requests with the current access token and, on 401,
// re-authenticates and retries up to MaxReauthAttempts times.
type Transport struct {
	// Base performs the actual round trips. Defaults to http.DefaultTransport.
	Base http.RoundTripper
	// Tokens supplies and refreshes access tokens.
	Tokens TokenSource
	// ClientID is sent as the Client-ID header when non-empty.
	ClientID string
}

// NewTransport creates a transport over base.
func NewTransport(base http.RoundTripper, tokens TokenSource, clientID string) *Transport {
	return &Transport{Base: base, Tokens: tokens, ClientID: clientID}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base == nil {
		return http.DefaultTransport
	}
	return t.Base
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	token, err := t.Tokens.CurrentToken(ctx)
	if err != nil {
		closeBody(req)
		return nil, fmt.Errorf("reading access token: %w", err)
	}

	sent := t.authorize(req, req.Body, token)
	resp, err := t.base().RoundTrip(sent)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	if !replayable(req) {
		return resp, nil
	}

	log := logger.With("auth").With().
		Str("chain", uuid.NewString()).
		Str("url", req.URL.Redacted()).
		Logger()

	for attempt := 1; ; attempt++ {
		if attempt > MaxReauthAttempts {
			log.Warn().Int("attempts", MaxReauthAttempts).Msg("re-authentication ceiling reached")
			return resp, nil
		}

		_, failed, _ := ParseHeader(sent.Header.Get(HeaderAuthorization))
		log.Debug().Int("attempt", attempt).Msg("request unauthorized, re-authenticating")

		token, err := t.Tokens.Reauthenticate(ctx, failed)
		discard(resp)
		if err != nil {
			log.Warn().Err(err).Msg("re-authentication failed")
			return nil, err
		}

		body, err := replayBody(req)
		if err != nil {
			return nil, fmt.Errorf("replaying request body: %w", err)
		}
		sent = t.authorize(req, body, token)
		resp, err = t.base().RoundTrip(sent)
		if err != nil || resp.StatusCode != http.StatusUnauthorized {
			return resp, err
		}
	}
}

// authorize clones req with body and the auth headers applied.
// An empty token leaves the Authorization header off.
func (t *Transport) authorize(req *http.Request, body io.ReadCloser, token string) *http.Request {
	out := req.Clone(req.Context())
	out.Body = body
	if token != "" {
		out.Header.Set(HeaderAuthorization, BuildHeader(SchemeBearer, token))
	} else {
		out.Header.Del(HeaderAuthorization)
	}
	if t.ClientID != "" {
		out.Header.Set(HeaderClientID, t.ClientID)
	}
	return out
}

func replayable(req *http.Request) bool {
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}

func replayBody(req *http.Request) (io.ReadCloser, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return req.Body, nil
	}
	return req.GetBody()
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}

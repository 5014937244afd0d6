package twitch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
)

func newSupplier(url string) *TokenSupplier {
	s := NewTokenSupplier("my-client", "my-secret", url, nil)
	s.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return s
}

func TestTokenSupplier_FetchRemote(t *testing.T) {
	var form map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = map[string]string{
			"client_id":     r.PostForm.Get("client_id"),
			"client_secret": r.PostForm.Get("client_secret"),
			"grant_type":    r.PostForm.Get("grant_type"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"abc","expires_in":5011271,"token_type":"bearer"}`))
	}))
	defer server.Close()

	creds, err := newSupplier(server.URL).FetchRemote(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "abc", creds.AccessToken)
	assert.Equal(t, "bearer", creds.TokenType)
	assert.Equal(t, int64(5011271), creds.TokenTTLSeconds)
	assert.Equal(t, int64(1_700_000_000_000+5011271*1000-604_800_000), creds.ExpiresAt)
	assert.Equal(t, "my-client", form["client_id"])
	assert.Equal(t, "my-secret", form["client_secret"])
	assert.Equal(t, "client_credentials", form["grant_type"])
}

func TestTokenSupplier_FetchRemoteErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "invalid secret",
			status: http.StatusForbidden,
			body:   `{"status":403,"message":"invalid client secret"}`,
			check: func(t *testing.T, err error) {
				var httpErr *domain.HTTPError
				require.ErrorAs(t, err, &httpErr)
				assert.Equal(t, http.StatusForbidden, httpErr.Code)
				assert.Equal(t, "invalid client secret", httpErr.Message)
			},
		},
		{
			name:   "oauth error fields",
			status: http.StatusBadRequest,
			body:   `{"error":"invalid_client","error_description":"unknown client"}`,
			check: func(t *testing.T, err error) {
				var httpErr *domain.HTTPError
				require.ErrorAs(t, err, &httpErr)
				assert.Equal(t, http.StatusBadRequest, httpErr.Code)
				assert.Equal(t, "unknown client", httpErr.Message)
			},
		},
		{
			name:   "missing token",
			status: http.StatusOK,
			body:   `{"expires_in":100,"token_type":"bearer"}`,
			check: func(t *testing.T, err error) {
				var unknown *domain.UnknownError
				assert.ErrorAs(t, err, &unknown)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newSupplier(server.URL).FetchRemote(context.Background())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestTokenSupplier_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newSupplier(url).FetchRemote(context.Background())

	var netErr *domain.NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestNewTokenSupplier_Defaults(t *testing.T) {
	s := NewTokenSupplier("id", "secret", "", nil)
	assert.Equal(t, DefaultTokenURL, s.config.TokenURL)
	assert.NotNil(t, s.client)
}

package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gamefeed-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
	"github.com/custodia-labs/gamefeed-cli/internal/core/services"
)

// countingSupplier issues "token-<n>" on the n-th call.
type countingSupplier struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (s *countingSupplier) FetchRemote(_ context.Context) (domain.Credentials, error) {
	n := s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return domain.Credentials{}, s.err
	}
	return domain.NewCredentials("token-"+strconv.Itoa(int(n)), domain.TokenTypeBearer, 60*24*3600, time.Now()), nil
}

// apiServer accepts requests carrying the token returned by valid.
type apiServer struct {
	*httptest.Server
	hits   atomic.Int32
	mu     sync.Mutex
	valid  string
	bodies []string
	seen   []http.Header
}

func newAPIServer(t *testing.T, valid string) *apiServer {
	t.Helper()
	s := &apiServer{valid: valid}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		body, _ := io.ReadAll(r.Body)

		s.mu.Lock()
		s.bodies = append(s.bodies, string(body))
		s.seen = append(s.seen, r.Header.Clone())
		valid := s.valid
		s.mu.Unlock()

		if valid == "" || r.Header.Get(HeaderAuthorization) != BuildHeader(SchemeBearer, valid) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"invalid token"}`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(s.Close)
	return s
}

func newPipeline(t *testing.T, stored string, supplier *countingSupplier) (*http.Client, *services.CredentialsService) {
	t.Helper()
	creds := services.NewCredentialsService(memory.NewCredentialsStore())
	if stored != "" {
		require.NoError(t, creds.Save(context.Background(),
			domain.NewCredentials(stored, domain.TokenTypeBearer, 60*24*3600, time.Now())))
	}
	authenticator := services.NewAuthenticator(creds, supplier)
	return &http.Client{Transport: NewTransport(nil, authenticator, "client-1")}, creds
}

func get(t *testing.T, client *http.Client, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, http.NoBody)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func TestTransport_ValidTokenNoRefresh(t *testing.T) {
	server := newAPIServer(t, "good")
	supplier := &countingSupplier{}
	client, _ := newPipeline(t, "good", supplier)

	resp := get(t, client, server.URL)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(0), supplier.calls.Load())
	assert.Equal(t, int32(1), server.hits.Load())
	assert.Equal(t, "client-1", server.seen[0].Get(HeaderClientID))
	assert.Equal(t, "Bearer good", server.seen[0].Get(HeaderAuthorization))
}

func TestTransport_NoStoredTokenOmitsHeader(t *testing.T) {
	server := newAPIServer(t, "token-1")
	supplier := &countingSupplier{}
	client, creds := newPipeline(t, "", supplier)

	resp := get(t, client, server.URL)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, server.seen[0].Get(HeaderAuthorization))
	assert.Equal(t, "Bearer token-1", server.seen[1].Get(HeaderAuthorization))
	assert.Equal(t, int32(1), supplier.calls.Load())

	stored, err := creds.GetLocal(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "token-1", stored.AccessToken)
}

func TestTransport_ConcurrentStaleRequestsRefreshOnce(t *testing.T) {
	server := newAPIServer(t, "token-1")
	supplier := &countingSupplier{delay: 20 * time.Millisecond}
	client, _ := newPipeline(t, "stale", supplier)

	const n = 5
	var wg sync.WaitGroup
	codes := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, http.NoBody)
			if err != nil {
				return
			}
			resp, err := client.Do(req)
			if err != nil {
				return
			}
			codes[i] = resp.StatusCode
			resp.Body.Close()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), supplier.calls.Load())
	for i := range codes {
		assert.Equal(t, http.StatusOK, codes[i], "request %d", i)
	}
}

func TestTransport_CeilingReturnsLast401(t *testing.T) {
	server := newAPIServer(t, "")
	supplier := &countingSupplier{}
	client, _ := newPipeline(t, "stale", supplier)

	resp := get(t, client, server.URL)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "invalid token")
	assert.Equal(t, int32(MaxReauthAttempts), supplier.calls.Load())
	assert.Equal(t, int32(MaxReauthAttempts+1), server.hits.Load())
}

func TestTransport_ReauthFailureIsTerminal(t *testing.T) {
	server := newAPIServer(t, "token-1")
	supplier := &countingSupplier{err: errors.New("boom")}
	client, creds := newPipeline(t, "stale", supplier)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)
	resp, err := client.Do(req)
	if resp != nil {
		resp.Body.Close()
	}

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTokenRefreshFailed)
	assert.True(t, domain.IsUnauthorized(err))
	assert.Equal(t, int32(1), server.hits.Load())

	stored, err := creds.GetLocal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stale", stored.AccessToken)
}

func TestTransport_ReplaysBody(t *testing.T) {
	server := newAPIServer(t, "token-1")
	supplier := &countingSupplier{}
	client, _ := newPipeline(t, "stale", supplier)

	const query = "fields name; limit 10;"
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, server.URL, strings.NewReader(query))
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, server.bodies, 2)
	assert.Equal(t, query, server.bodies[0])
	assert.Equal(t, query, server.bodies[1])
}

// onceReader is an io.Reader http.NewRequest cannot snapshot.
type onceReader struct{ r io.Reader }

func (o *onceReader) Read(p []byte) (int, error) { return o.r.Read(p) }

func TestTransport_UnreplayableBodyNotRetried(t *testing.T) {
	server := newAPIServer(t, "token-1")
	supplier := &countingSupplier{}
	client, _ := newPipeline(t, "stale", supplier)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, server.URL,
		&onceReader{r: strings.NewReader("body")})
	require.NoError(t, err)
	require.Nil(t, req.GetBody)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int32(0), supplier.calls.Load())
	assert.Equal(t, int32(1), server.hits.Load())
}

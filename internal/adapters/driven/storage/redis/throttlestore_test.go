package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
)

func newTestStore(t *testing.T, ttl time.Duration) (*ThrottleStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	store, err := NewThrottleStore(context.Background(), Config{Addr: mr.Addr(), TTL: ttl})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestThrottleStore_Lifecycle(t *testing.T) {
	store, mr := newTestStore(t, 0)
	ctx := context.Background()
	key := domain.KeyFor(domain.CategoryPopular, domain.Page{Limit: 20})

	_, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, domain.ThrottleRecord{Key: key, LastRefreshedAtUnixMillis: 1_700_000_000_000}))

	rec, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, key, rec.Key)
	assert.Equal(t, int64(1_700_000_000_000), rec.LastRefreshedAtUnixMillis)

	raw, err := mr.Get(DefaultPrefix + string(key))
	require.NoError(t, err)
	assert.Equal(t, "1700000000000", raw)
}

func TestThrottleStore_TTL(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()
	key := domain.RefreshKey("news:offset=0:limit=20")

	require.NoError(t, store.Put(ctx, domain.ThrottleRecord{Key: key, LastRefreshedAtUnixMillis: 1}))
	assert.Equal(t, time.Hour, mr.TTL(DefaultPrefix+string(key)))

	mr.FastForward(2 * time.Hour)
	_, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestThrottleStore_CorruptValueAllowsRefresh(t *testing.T) {
	store, mr := newTestStore(t, 0)
	key := domain.RefreshKey("popular:offset=0:limit=20")
	require.NoError(t, mr.Set(DefaultPrefix+string(key), "not-a-number"))

	_, ok, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestThrottleStore_ServerDown(t *testing.T) {
	store, mr := newTestStore(t, 0)
	mr.Close()

	_, _, err := store.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, store.Put(context.Background(), domain.ThrottleRecord{Key: "k"}))
}

func TestNewThrottleStore_Errors(t *testing.T) {
	_, err := NewThrottleStore(context.Background(), Config{})
	assert.Error(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_, err = NewThrottleStore(ctx, Config{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}

// Package redis provides a durable refresh throttle store, so several gamefeed
// processes (or restarts of one) share throttle decisions.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
	"github.com/custodia-labs/gamefeed-cli/internal/core/ports/driven"
)

// DefaultPrefix namespaces throttle keys.
const DefaultPrefix = "gamefeed:throttle:"

// Ensure ThrottleStore implements the interface.
var _ driven.ThrottleStore = (*ThrottleStore)(nil)

// Config configures the redis connection.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	// TTL expires records no interval could still be gating. Zero keeps them forever.
	TTL time.Duration
}

// ThrottleStore stores each record as the unix-millisecond timestamp under
// prefix+key.
type ThrottleStore struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewThrottleStore connects to redis and checks the connection.
func NewThrottleStore(ctx context.Context, cfg Config) (*ThrottleStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address required")
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &ThrottleStore{client: client, prefix: prefix, ttl: cfg.TTL}, nil
}

func (s *ThrottleStore) key(k domain.RefreshKey) string {
	return s.prefix + string(k)
}

// Get returns the record for key.
func (s *ThrottleStore) Get(ctx context.Context, key domain.RefreshKey) (domain.ThrottleRecord, bool, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return domain.ThrottleRecord{}, false, nil
	}
	if err != nil {
		return domain.ThrottleRecord{}, false, fmt.Errorf("reading throttle record: %w", err)
	}

	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// A corrupt value must not block refreshes forever.
		return domain.ThrottleRecord{}, false, nil
	}
	return domain.ThrottleRecord{Key: key, LastRefreshedAtUnixMillis: millis}, true, nil
}

// Put overwrites the record for its key.
func (s *ThrottleStore) Put(ctx context.Context, rec domain.ThrottleRecord) error {
	value := strconv.FormatInt(rec.LastRefreshedAtUnixMillis, 10)
	if err := s.client.Set(ctx, s.key(rec.Key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("writing throttle record: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (s *ThrottleStore) Close() error {
	return s.client.Close()
}

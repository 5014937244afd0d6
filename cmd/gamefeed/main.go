// Command gamefeed browses game releases, ratings and news from the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/custodia-labs/gamefeed-cli/internal/adapters/driven/auth"
	"github.com/custodia-labs/gamefeed-cli/internal/adapters/driven/gamespot"
	"github.com/custodia-labs/gamefeed-cli/internal/adapters/driven/igdb"
	"github.com/custodia-labs/gamefeed-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/gamefeed-cli/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/gamefeed-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/gamefeed-cli/internal/adapters/driven/twitch"
	"github.com/custodia-labs/gamefeed-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/gamefeed-cli/internal/config"
	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
	"github.com/custodia-labs/gamefeed-cli/internal/core/ports/driven"
	"github.com/custodia-labs/gamefeed-cli/internal/core/services"
	"github.com/custodia-labs/gamefeed-cli/internal/logger"
)

// Set by the release build with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.Execute(version, build); err != nil {
		os.Exit(1)
	}
}

// build wires the adapters and services for one command invocation.
func build(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.DataDir != "" {
		cfg.Storage.DataDir = opts.DataDir
	}
	logger.SetJSON(cfg.Log.Format == "json")

	dataDir, err := cfg.DataDir()
	if err != nil {
		return nil, err
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	closers := []func() error{store.Close}
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	throttleStore, err := newThrottleStore(ctx, cfg)
	if err != nil {
		_ = closeAll()
		return nil, err
	}
	if c, ok := throttleStore.(interface{ Close() error }); ok {
		closers = append(closers, c.Close)
	}

	intervals := make(map[domain.Category]time.Duration)
	for _, c := range append(append([]domain.Category{}, domain.GameCategories...), domain.CategorySearch, domain.CategoryNews) {
		intervals[c] = cfg.Interval(c)
	}
	throttler := services.NewRefreshThrottler(throttleStore, intervals)
	fetchTimeout := cfg.Sync.FetchTimeout.Std()

	credentials := services.NewCredentialsService(store.CredentialsStore())
	httpClient := &http.Client{Timeout: fetchTimeout}

	var supplier driven.TokenSupplier
	if cfg.RequireGamesAPI() == nil {
		supplier = twitch.NewTokenSupplier(cfg.IGDB.ClientID, cfg.IGDB.ClientSecret, cfg.IGDB.TokenURL, httpClient)
	}
	authenticator := services.NewAuthenticator(credentials, supplier)

	var games driven.GamesAPI
	if supplier != nil {
		authed := &http.Client{
			Transport: auth.NewTransport(nil, authenticator, cfg.IGDB.ClientID),
			Timeout:   fetchTimeout,
		}
		games = igdb.NewClient(authed, cfg.IGDB.BaseURL, cfg.IGDB.RequestsPerSecond)
	} else {
		logger.Debug("igdb credentials not configured, serving cached games only")
	}

	var articles driven.ArticlesAPI
	if cfg.RequireNewsAPI() == nil {
		articles = gamespot.NewClient(httpClient, cfg.GameSpot.BaseURL, cfg.GameSpot.APIKey)
	}

	catalog := services.NewCatalogService(games, store.GameStore(), throttler, fetchTimeout)
	news := services.NewNewsService(articles, store.ArticleStore(), throttler, fetchTimeout)
	prefetch := services.NewPrefetchService(catalog, news, cfg.Sync.PageSize)

	// Without client credentials there is no token to keep fresh.
	schedule := domain.Schedule{domain.TaskIDCatalogPrefetch: cfg.Scheduler.PrefetchInterval.Std()}
	if supplier != nil {
		schedule[domain.TaskIDCredentialsRefresh] = cfg.Scheduler.CredentialsInterval.Std()
	}
	scheduler := services.NewScheduler(schedule, store.SchedulerStore(), authenticator, prefetch)

	return &cli.Services{
		Config:     cfg,
		ConfigPath: opts.ConfigPath,
		Catalog:    catalog,
		News:       news,
		Auth:       authenticator,
		Prefetcher: prefetch,
		Scheduler:  scheduler,
		Watch:      store.WatchExternalChanges,
		Close:      closeAll,
	}, nil
}

func newThrottleStore(ctx context.Context, cfg *config.Config) (driven.ThrottleStore, error) {
	if cfg.Throttle.Backend != config.ThrottleBackendRedis {
		return memory.NewThrottleStore(), nil
	}

	// Records only matter for the longest interval; older ones always allow a refresh.
	var ttl time.Duration
	for _, d := range cfg.Throttle.Intervals {
		ttl = max(ttl, d.Std())
	}
	store, err := redis.NewThrottleStore(ctx, redis.Config{
		Addr: cfg.Throttle.RedisAddr,
		DB:   cfg.Throttle.RedisDB,
		TTL:  ttl,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting throttle store: %w", err)
	}
	return store, nil
}

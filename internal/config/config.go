// Package config loads gamefeed configuration.
//
// Sources, lowest priority first:
//  1. built-in defaults (Default);
//  2. the TOML file (~/.gamefeed/config.toml or --config);
//  3. environment variables (IGDB_CLIENT_ID, GAMESPOT_API_KEY, GAMEFEED_*).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
)

const (
	// DefaultIGDBBaseURL is the games API root.
	DefaultIGDBBaseURL = "https://api.igdb.com/v4"
	// DefaultTokenURL is the client-credentials token endpoint for the games API.
	DefaultTokenURL = "https://id.twitch.tv/oauth2/token"
	// DefaultGameSpotBaseURL is the news API root.
	DefaultGameSpotBaseURL = "https://www.gamespot.com/api"

	// ThrottleBackendMemory keeps throttle records for the process lifetime.
	ThrottleBackendMemory = "memory"
	// ThrottleBackendRedis keeps throttle records in redis.
	ThrottleBackendRedis = "redis"
)

// Config is the root configuration.
type Config struct {
	IGDB      IGDBConfig      `toml:"igdb"`
	GameSpot  GameSpotConfig  `toml:"gamespot"`
	Storage   StorageConfig   `toml:"storage"`
	Throttle  ThrottleConfig  `toml:"throttle"`
	Sync      SyncConfig      `toml:"sync"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Log       LogConfig       `toml:"log"`
}

// IGDBConfig configures the authenticated games API.
type IGDBConfig struct {
	ClientID          string  `toml:"client_id"           env:"IGDB_CLIENT_ID"`
	ClientSecret      string  `toml:"client_secret"       env:"IGDB_CLIENT_SECRET"`
	BaseURL           string  `toml:"base_url"            env:"GAMEFEED_IGDB_BASE_URL"`
	TokenURL          string  `toml:"token_url"           env:"GAMEFEED_IGDB_TOKEN_URL"`
	RequestsPerSecond float64 `toml:"requests_per_second" env:"GAMEFEED_IGDB_RPS"`
}

// GameSpotConfig configures the news API.
type GameSpotConfig struct {
	APIKey  string `toml:"api_key"  env:"GAMESPOT_API_KEY"`
	BaseURL string `toml:"base_url" env:"GAMEFEED_GAMESPOT_BASE_URL"`
}

// StorageConfig configures the local store.
type StorageConfig struct {
	DataDir string `toml:"data_dir" env:"GAMEFEED_DATA_DIR"`
}

// ThrottleConfig configures the refresh throttler.
type ThrottleConfig struct {
	Backend   string              `toml:"backend"    env:"GAMEFEED_THROTTLE_BACKEND"`
	RedisAddr string              `toml:"redis_addr" env:"GAMEFEED_REDIS_ADDR"`
	RedisDB   int                 `toml:"redis_db"   env:"GAMEFEED_REDIS_DB"`
	Intervals map[string]Duration `toml:"intervals"`
}

// SyncConfig configures category reads.
type SyncConfig struct {
	FetchTimeout Duration `toml:"fetch_timeout" env:"GAMEFEED_FETCH_TIMEOUT"`
	PageSize     int      `toml:"page_size"     env:"GAMEFEED_PAGE_SIZE"`
}

// SchedulerConfig configures the background daemon.
type SchedulerConfig struct {
	Enabled             bool     `toml:"enabled"              env:"GAMEFEED_SCHEDULER_ENABLED"`
	PrefetchInterval    Duration `toml:"prefetch_interval"    env:"GAMEFEED_PREFETCH_INTERVAL"`
	CredentialsInterval Duration `toml:"credentials_interval" env:"GAMEFEED_CREDENTIALS_INTERVAL"`
}

// LogConfig configures log output.
type LogConfig struct {
	Format string `toml:"format" env:"GAMEFEED_LOG_FORMAT"`
}

// Default returns the built-in configuration.
func Default() *Config {
	sched := domain.DefaultSchedule()
	return &Config{
		IGDB: IGDBConfig{
			BaseURL:           DefaultIGDBBaseURL,
			TokenURL:          DefaultTokenURL,
			RequestsPerSecond: 4,
		},
		GameSpot: GameSpotConfig{
			BaseURL: DefaultGameSpotBaseURL,
		},
		Throttle: ThrottleConfig{
			Backend:   ThrottleBackendMemory,
			Intervals: DefaultIntervals(),
		},
		Sync: SyncConfig{
			FetchTimeout: Duration(30 * time.Second),
			PageSize:     domain.DefaultPageSize,
		},
		Scheduler: SchedulerConfig{
			Enabled:             true,
			PrefetchInterval:    Duration(sched[domain.TaskIDCatalogPrefetch]),
			CredentialsInterval: Duration(sched[domain.TaskIDCredentialsRefresh]),
		},
		Log: LogConfig{Format: "console"},
	}
}

// DefaultIntervals returns the minimum time between refreshes per category.
func DefaultIntervals() map[string]Duration {
	return map[string]Duration{
		domain.CategoryPopular.String():          Duration(24 * time.Hour),
		domain.CategoryRecentlyReleased.String(): Duration(6 * time.Hour),
		domain.CategoryComingSoon.String():       Duration(12 * time.Hour),
		domain.CategoryMostAnticipated.String():  Duration(12 * time.Hour),
		domain.CategorySearch.String():           Duration(time.Hour),
		domain.CategoryNews.String():             Duration(30 * time.Minute),
	}
}

// Dir returns ~/.gamefeed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".gamefeed"), nil
}

// DefaultPath returns ~/.gamefeed/config.toml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the configuration. A missing file is not an error.
// Environment variables override the file.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	cfg.fillDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads only the file layer over the defaults. Use it when the result
// is written back with Save, so environment overrides are not persisted.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg.fillDefaults()
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// fillDefaults restores defaults for values a partial file left empty.
func (c *Config) fillDefaults() {
	def := Default()
	if c.IGDB.BaseURL == "" {
		c.IGDB.BaseURL = def.IGDB.BaseURL
	}
	if c.IGDB.TokenURL == "" {
		c.IGDB.TokenURL = def.IGDB.TokenURL
	}
	if c.IGDB.RequestsPerSecond <= 0 {
		c.IGDB.RequestsPerSecond = def.IGDB.RequestsPerSecond
	}
	if c.GameSpot.BaseURL == "" {
		c.GameSpot.BaseURL = def.GameSpot.BaseURL
	}
	if c.Throttle.Backend == "" {
		c.Throttle.Backend = ThrottleBackendMemory
	}
	if c.Throttle.Intervals == nil {
		c.Throttle.Intervals = map[string]Duration{}
	}
	for k, v := range def.Throttle.Intervals {
		if _, ok := c.Throttle.Intervals[k]; !ok {
			c.Throttle.Intervals[k] = v
		}
	}
	if c.Sync.FetchTimeout <= 0 {
		c.Sync.FetchTimeout = def.Sync.FetchTimeout
	}
	if c.Sync.PageSize <= 0 {
		c.Sync.PageSize = def.Sync.PageSize
	}
	if c.Scheduler.PrefetchInterval <= 0 {
		c.Scheduler.PrefetchInterval = def.Scheduler.PrefetchInterval
	}
	if c.Scheduler.CredentialsInterval <= 0 {
		c.Scheduler.CredentialsInterval = def.Scheduler.CredentialsInterval
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}

// validate checks values that are wrong regardless of the command being run.
func (c *Config) validate() error {
	switch c.Throttle.Backend {
	case ThrottleBackendMemory:
	case ThrottleBackendRedis:
		if c.Throttle.RedisAddr == "" {
			return fmt.Errorf("throttle.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("throttle.backend must be %q or %q", ThrottleBackendMemory, ThrottleBackendRedis)
	}
	for name, interval := range c.Throttle.Intervals {
		if !domain.Category(name).IsValid() {
			return fmt.Errorf("throttle.intervals: %w: %q", domain.ErrUnsupportedCategory, name)
		}
		if interval < 0 {
			return fmt.Errorf("throttle.intervals.%s must not be negative", name)
		}
	}
	if c.Sync.PageSize > domain.MaxPageSize {
		return fmt.Errorf("sync.page_size must be <= %d", domain.MaxPageSize)
	}
	return nil
}

// RequireGamesAPI reports ErrAuthRequired when client credentials are missing.
func (c *Config) RequireGamesAPI() error {
	if c.IGDB.ClientID == "" || c.IGDB.ClientSecret == "" {
		return fmt.Errorf("%w: set igdb.client_id and igdb.client_secret (or IGDB_CLIENT_ID / IGDB_CLIENT_SECRET)",
			domain.ErrAuthRequired)
	}
	return nil
}

// RequireNewsAPI reports an error when the news API key is missing.
func (c *Config) RequireNewsAPI() error {
	if c.GameSpot.APIKey == "" {
		return fmt.Errorf("%w: set gamespot.api_key (or GAMESPOT_API_KEY)", domain.ErrInvalidInput)
	}
	return nil
}

// Interval returns the refresh interval configured for a category.
func (c *Config) Interval(category domain.Category) time.Duration {
	if d, ok := c.Throttle.Intervals[category.String()]; ok {
		return d.Std()
	}
	return DefaultIntervals()[category.String()].Std()
}

// DataDir returns the configured data directory or ~/.gamefeed/data.
func (c *Config) DataDir() (string, error) {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}

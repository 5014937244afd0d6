// Package cli provides the cobra commands of the gamefeed binary.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gamefeed-cli/internal/config"
	"github.com/custodia-labs/gamefeed-cli/internal/core/ports/driving"
	"github.com/custodia-labs/gamefeed-cli/internal/logger"
)

// Options are the global flags handed to the Builder.
type Options struct {
	ConfigPath string
	DataDir    string
	Verbose    bool
}

// Services holds everything the commands use. The composition root builds it
// once the global flags are parsed.
type Services struct {
	Config     *config.Config
	ConfigPath string
	Catalog    driving.CatalogService
	News       driving.NewsService
	Auth       driving.AuthService
	Prefetcher driving.Prefetcher
	Scheduler  driving.Scheduler
	// Watch blocks, waking local observers when another process writes the store.
	Watch func(ctx context.Context) error
	// Close releases the store and other resources.
	Close func() error
}

// Builder constructs Services from the global flags.
type Builder func(ctx context.Context, opts Options) (*Services, error)

// Annotation keys controlling bootstrap.
const (
	annotationBootstrap = "bootstrap"
	bootstrapNone       = "none"
	bootstrapConfig     = "config"
)

// Service instances used by commands.
var (
	cfg            *config.Config
	cfgPath        string
	catalogService driving.CatalogService
	newsService    driving.NewsService
	authService    driving.AuthService
	prefetcher     driving.Prefetcher
	scheduler      driving.Scheduler
	watchStore     func(ctx context.Context) error
	closeServices  func() error
)

var (
	version = "dev"
	builder Builder

	flagVerbose bool
	flagConfig  string
	flagDataDir string
)

var rootCmd = &cobra.Command{
	Use:   "gamefeed",
	Short: "Game releases, ratings and news from your terminal",
	Long: `gamefeed keeps a local copy of the IGDB game catalogue and GameSpot news.

Every listing is served from the local store first; the network is only hit when
the category's refresh interval has passed. When the network fails, the cached
data is still shown together with a warning.`,
	SilenceUsage:       true,
	PersistentPreRunE:  bootstrap,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.gamefeed/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.gamefeed/data)")
}

// Execute runs the root command until it finishes or SIGINT/SIGTERM arrives.
func Execute(v string, b Builder) error {
	if v != "" {
		version = v
	}
	builder = b

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// SetServices installs services directly, bypassing the Builder.
func SetServices(s *Services) {
	cfg = s.Config
	cfgPath = s.ConfigPath
	catalogService = s.Catalog
	newsService = s.News
	authService = s.Auth
	prefetcher = s.Prefetcher
	scheduler = s.Scheduler
	watchStore = s.Watch
	closeServices = s.Close
}

func bootstrap(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(flagVerbose)

	switch cmd.Annotations[annotationBootstrap] {
	case bootstrapNone:
		return nil
	case bootstrapConfig:
		if cfg != nil {
			return nil
		}
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
		cfgPath = flagConfig
		return nil
	}

	if builder == nil || catalogService != nil {
		return nil
	}
	services, err := builder(cmd.Context(), Options{
		ConfigPath: flagConfig,
		DataDir:    flagDataDir,
		Verbose:    flagVerbose,
	})
	if err != nil {
		return err
	}
	SetServices(services)
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}

// commandContext returns the command's context, or Background outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

var errNotConfigured = errors.New("not configured")

func requireService(name string, ok bool) error {
	if !ok {
		return fmt.Errorf("%s service %w", name, errNotConfigured)
	}
	return nil
}

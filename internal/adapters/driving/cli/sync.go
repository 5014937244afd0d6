package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Refresh every category now",
	Long: `Refreshes the first page of every game category and the news feed.
Categories refreshed within their interval are skipped.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if err := requireService("prefetch", prefetcher != nil); err != nil {
		return err
	}

	cmd.Println("Refreshing all categories...")
	start := time.Now()

	refreshed, err := prefetcher.PrefetchAll(commandContext(cmd))
	if err != nil {
		cmd.Printf("Refreshed %d categories, some failed:\n", len(refreshed))
		printCategories(cmd, refreshed)
		return fmt.Errorf("sync failed: %w", err)
	}

	cmd.Printf("Refreshed %d categories in %s.\n", len(refreshed), time.Since(start).Round(time.Millisecond))
	printCategories(cmd, refreshed)
	return nil
}

func printCategories(cmd *cobra.Command, categories []domain.Category) {
	if len(categories) == 0 {
		return
	}
	cmd.Printf("  %s\n", joinCategories(categories))
}

func joinCategories(categories []domain.Category) string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

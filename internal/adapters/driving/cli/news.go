package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
)

var newsFlags pageFlags

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "List the latest gaming news",
	Long: `Lists GameSpot articles from the local store, newest first.
Articles are refreshed from GameSpot when the news refresh interval has passed.`,
	Args: cobra.NoArgs,
	RunE: runNews,
}

func init() {
	newsFlags.register(newsCmd, true)
	rootCmd.AddCommand(newsCmd)
}

func runNews(cmd *cobra.Command, _ []string) error {
	if err := requireService("news", newsService != nil); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()
	if newsFlags.watch {
		startWatcher(ctx)
	}

	page := newsFlags.page()
	updates := newsService.Articles(ctx, page)
	return consume(ctx, cmd, updates, newsFlags.watch, func(articles []domain.Article) error {
		return printArticles(cmd, articles, page.Offset, newsFlags.json)
	})
}

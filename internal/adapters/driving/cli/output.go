package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
	"github.com/custodia-labs/gamefeed-cli/internal/logger"
)

// pageFlags are the pagination flags shared by listing commands.
type pageFlags struct {
	offset int
	limit  int
	watch  bool
	json   bool
}

func (f *pageFlags) register(cmd *cobra.Command, watch bool) {
	cmd.Flags().IntVar(&f.offset, "offset", 0, "number of items to skip")
	cmd.Flags().IntVarP(&f.limit, "limit", "n", 0, "maximum number of items (default from sync.page_size)")
	cmd.Flags().BoolVar(&f.json, "json", false, "output as JSON")
	if watch {
		cmd.Flags().BoolVarP(&f.watch, "watch", "w", false, "keep printing the list whenever it changes")
	}
}

func (f *pageFlags) reset() {
	*f = pageFlags{}
}

func (f *pageFlags) page() domain.Page {
	limit := f.limit
	if limit <= 0 && cfg != nil {
		limit = cfg.Sync.PageSize
	}
	return domain.Page{Offset: f.offset, Limit: limit}.Normalize()
}

// consume prints a category stream. Refresh errors are printed as warnings and
// the local view is still shown. Without watch it stops after the first list.
func consume[T any](
	ctx context.Context,
	cmd *cobra.Command,
	updates <-chan domain.Update[T],
	watch bool,
	show func(items []T) error,
) error {
	var lastErr error
	shown := false
	for u := range updates {
		if u.IsError() {
			lastErr = u.Err
			cmd.PrintErrf("warning: %s\n", describe(u.Err))
			continue
		}
		if err := show(u.Items); err != nil {
			return err
		}
		shown = true
		if !watch {
			return nil
		}
	}
	if ctx.Err() != nil || shown {
		return nil
	}
	return lastErr
}

// startWatcher wakes local observers on writes from other gamefeed processes.
func startWatcher(ctx context.Context) {
	if watchStore == nil {
		return
	}
	go func() {
		if err := watchStore(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("watching store: %v", err)
		}
	}()
}

// describe renders an error for humans.
func describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrAuthRequired):
		return fmt.Sprintf("%v; run 'gamefeed config set-credentials'", err)
	case domain.IsUnauthorized(err):
		return fmt.Sprintf("games API rejected our credentials (%v); run 'gamefeed auth login'", err)
	default:
		return fmt.Sprintf("refresh failed, showing cached data: %v", err)
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printGames(cmd *cobra.Command, games []domain.Game, offset int, asJSON bool) error {
	if asJSON {
		return printJSON(cmd, games)
	}
	if len(games) == 0 {
		cmd.Println("No games found.")
		return nil
	}
	for i := range games {
		g := &games[i]
		cmd.Printf("  [%d] %s\n", offset+i+1, g.Name)
		details := gameDetails(g)
		if details != "" {
			cmd.Printf("      %s\n", details)
		}
	}
	cmd.Println()
	return nil
}

func gameDetails(g *domain.Game) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("#%d", g.ID))
	if g.ReleaseDate != nil {
		parts = append(parts, g.ReleaseDate.Format(time.DateOnly))
	}
	if g.TotalRating != nil {
		parts = append(parts, fmt.Sprintf("rating %.0f (%d)", *g.TotalRating, g.TotalRatingCount))
	}
	if g.Hypes > 0 {
		parts = append(parts, fmt.Sprintf("%d hypes", g.Hypes))
	}
	if len(g.Platforms) > 0 {
		parts = append(parts, strings.Join(g.Platforms, ", "))
	}
	return strings.Join(parts, " | ")
}

func printArticles(cmd *cobra.Command, articles []domain.Article, offset int, asJSON bool) error {
	if asJSON {
		return printJSON(cmd, articles)
	}
	if len(articles) == 0 {
		cmd.Println("No articles found.")
		return nil
	}
	for i := range articles {
		a := &articles[i]
		cmd.Printf("  [%d] %s\n", offset+i+1, a.Title)
		cmd.Printf("      %s | %s\n", a.PublishedAt.Local().Format("2006-01-02 15:04"), a.URL)
		if a.Lede != "" {
			cmd.Printf("      %s\n", a.Lede)
		}
	}
	cmd.Println()
	return nil
}

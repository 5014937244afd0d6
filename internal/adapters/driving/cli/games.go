package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
)

var gamesFlags pageFlags

var gamesCmd = &cobra.Command{
	Use:   "games [popular|recent|coming-soon|anticipated]",
	Short: "List games in a category",
	Long: `Lists a category of games from the local store.

The category is refreshed from IGDB first when its refresh interval has
passed. With --watch the list is printed again whenever the local store
changes, including writes made by another gamefeed process.

Examples:
  gamefeed games popular
  gamefeed games coming-soon --limit 50
  gamefeed games recent --watch`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"popular", "recent", "coming-soon", "anticipated"},
	RunE:      runGames,
}

var searchFlags pageFlags

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search games by title",
	Long: `Searches IGDB for games matching the query and stores the results locally.
Results already stored are shown when the network is unavailable.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var gameJSON bool

var gameCmd = &cobra.Command{
	Use:   "game [id]",
	Short: "Show details of one game",
	Args:  cobra.ExactArgs(1),
	RunE:  runGame,
}

func init() {
	gamesFlags.register(gamesCmd, true)
	searchFlags.register(searchCmd, false)
	gameCmd.Flags().BoolVar(&gameJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(gamesCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(gameCmd)
}

func runGames(cmd *cobra.Command, args []string) error {
	if err := requireService("catalog", catalogService != nil); err != nil {
		return err
	}

	category, err := domain.ParseCategory(args[0])
	if err != nil {
		return err
	}
	if !category.IsGameCategory() || category == domain.CategorySearch {
		return fmt.Errorf("%w: %q is not a game list", domain.ErrUnsupportedCategory, args[0])
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()
	if gamesFlags.watch {
		startWatcher(ctx)
	}

	page := gamesFlags.page()
	updates := catalogService.Games(ctx, category, page)
	return consume(ctx, cmd, updates, gamesFlags.watch, func(games []domain.Game) error {
		if gamesFlags.watch && !gamesFlags.json {
			cmd.Printf("%s (%d)\n", category, len(games))
		}
		return printGames(cmd, games, page.Offset, gamesFlags.json)
	})
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := requireService("catalog", catalogService != nil); err != nil {
		return err
	}

	query := strings.Join(args, " ")
	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	page := searchFlags.page()
	updates := catalogService.SearchGames(ctx, query, page)
	return consume(ctx, cmd, updates, false, func(games []domain.Game) error {
		return printGames(cmd, games, page.Offset, searchFlags.json)
	})
}

func runGame(cmd *cobra.Command, args []string) error {
	if err := requireService("catalog", catalogService != nil); err != nil {
		return err
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("%w: game id must be a positive number", domain.ErrInvalidInput)
	}

	game, err := catalogService.GetGame(commandContext(cmd), id)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("game %d not found", id)
	}
	if err != nil {
		return fmt.Errorf("getting game: %w", err)
	}

	if gameJSON {
		return printJSON(cmd, game)
	}
	printGameDetails(cmd, game)
	return nil
}

func printGameDetails(cmd *cobra.Command, g *domain.Game) {
	cmd.Printf("%s\n", g.Name)
	cmd.Printf("  %s\n", gameDetails(g))
	if len(g.Genres) > 0 {
		cmd.Printf("  Genres:     %s\n", strings.Join(g.Genres, ", "))
	}
	if len(g.Developers) > 0 {
		cmd.Printf("  Developers: %s\n", strings.Join(g.Developers, ", "))
	}
	if len(g.Publishers) > 0 {
		cmd.Printf("  Publishers: %s\n", strings.Join(g.Publishers, ", "))
	}
	if cover := g.CoverURL(""); cover != "" {
		cmd.Printf("  Cover:      %s\n", cover)
	}
	if g.URL != "" {
		cmd.Printf("  URL:        %s\n", g.URL)
	}
	if g.Summary != "" {
		cmd.Println()
		cmd.Println(g.Summary)
	}
	if g.Storyline != "" {
		cmd.Println()
		cmd.Println(g.Storyline)
	}
}

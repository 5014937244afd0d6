package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
	"github.com/custodia-labs/gamefeed-cli/internal/core/ports/driven"
)

// gameStore implements driven.GameStore.
type gameStore struct {
	store *Store
}

var _ driven.GameStore = (*gameStore)(nil)

const gameColumns = `id, name, summary, storyline, total_rating, total_rating_count, hypes,
	release_date, cover_image_id, genres, platforms, developers, publishers, url, updated_at`

// SaveGames upserts games by ID in a single transaction.
func (s *gameStore) SaveGames(ctx context.Context, games []domain.Game) error {
	if len(games) == 0 {
		return nil
	}
	return s.save(ctx, games, nil)
}

// SaveWindow upserts games and records them as the query's window in remote
// order, in one transaction. An empty page clears the window.
func (s *gameStore) SaveWindow(ctx context.Context, query domain.GameQuery, games []domain.Game) error {
	list, err := gameListKey(query)
	if err != nil {
		return err
	}
	page := query.Page.Normalize()
	return s.save(ctx, games, func(tx *sql.Tx) error {
		ids := make([]int64, len(games))
		for i, g := range games {
			ids[i] = g.ID
		}
		return replaceWindow(ctx, tx, list, page, ids)
	})
}

// save upserts games and runs also inside the same transaction when set.
func (s *gameStore) save(ctx context.Context, games []domain.Game, also func(*sql.Tx) error) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO games (`+gameColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			summary = excluded.summary,
			storyline = excluded.storyline,
			total_rating = excluded.total_rating,
			total_rating_count = excluded.total_rating_count,
			hypes = excluded.hypes,
			release_date = excluded.release_date,
			cover_image_id = excluded.cover_image_id,
			genres = excluded.genres,
			platforms = excluded.platforms,
			developers = excluded.developers,
			publishers = excluded.publishers,
			url = excluded.url,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("preparing game upsert: %w", err)
	}
	defer stmt.Close()

	updatedAt := s.store.now().UnixMilli()
	for i := range games {
		g := &games[i]
		if g.ID <= 0 {
			return fmt.Errorf("%w: game without id", domain.ErrInvalidInput)
		}
		lists, err := encodeLists(g.Genres, g.Platforms, g.Developers, g.Publishers)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			g.ID, g.Name, g.Summary, g.Storyline,
			nullFloat(g.TotalRating), g.TotalRatingCount, g.Hypes,
			nullUnix(g.ReleaseDate), g.CoverImageID,
			lists[0], lists[1], lists[2], lists[3],
			g.URL, updatedAt,
		); err != nil {
			return fmt.Errorf("saving game %d: %w", g.ID, err)
		}
	}

	if also != nil {
		if err := also(tx); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing games: %w", err)
	}
	s.store.changes.publish(topicGames)
	return nil
}

// ObserveGames emits the query's window now and after every change to games.
func (s *gameStore) ObserveGames(ctx context.Context, query domain.GameQuery) (<-chan []domain.Game, error) {
	sqlText, args, err := s.windowQuery(query)
	if err != nil {
		return nil, err
	}
	return observe(ctx, s.store.changes, topicGames, func(ctx context.Context) ([]domain.Game, error) {
		return s.list(ctx, sqlText, args(s.store.now())...)
	})
}

// GetGame retrieves a game by ID.
func (s *gameStore) GetGame(ctx context.Context, id int64) (*domain.Game, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ?`, id)
	game, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return game, nil
}

// windowQuery returns the SQL of a query's window and a function building its
// arguments at a given instant. Rows come in the order the remote returned
// them; date-based categories also drop games that have since moved out.
func (s *gameStore) windowQuery(q domain.GameQuery) (string, func(now time.Time) []any, error) {
	list, err := gameListKey(q)
	if err != nil {
		return "", nil, err
	}
	page := q.Page.Normalize()
	base := positionedFrom(gameColumns, "games")
	window := func(extra ...any) []any {
		return append([]any{list, page.Offset, page.Offset + page.Limit}, extra...)
	}

	switch q.Category {
	case domain.CategoryRecentlyReleased:
		return base + ` AND release_date > ? AND release_date <= ?` + positionOrder,
			func(now time.Time) []any {
				return window(now.Add(-domain.RecentlyReleasedWindow).Unix(), now.Unix())
			}, nil
	case domain.CategoryComingSoon, domain.CategoryMostAnticipated:
		return base + ` AND release_date > ?` + positionOrder,
			func(now time.Time) []any { return window(now.Unix()) }, nil
	}
	return base + positionOrder, func(time.Time) []any { return window() }, nil
}

func (s *gameStore) list(ctx context.Context, query string, args ...any) ([]domain.Game, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying games: %w", err)
	}
	defer rows.Close()

	games := []domain.Game{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating games: %w", err)
	}
	return games, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*domain.Game, error) {
	var g domain.Game
	var rating sql.NullFloat64
	var release sql.NullInt64
	var genres, platforms, developers, publishers string
	var updatedAt int64
	if err := row.Scan(&g.ID, &g.Name, &g.Summary, &g.Storyline, &rating, &g.TotalRatingCount,
		&g.Hypes, &release, &g.CoverImageID, &genres, &platforms, &developers, &publishers,
		&g.URL, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning game: %w", err)
	}

	if rating.Valid {
		v := rating.Float64
		g.TotalRating = &v
	}
	if release.Valid {
		t := time.Unix(release.Int64, 0).UTC()
		g.ReleaseDate = &t
	}
	g.Genres = decodeList(genres)
	g.Platforms = decodeList(platforms)
	g.Developers = decodeList(developers)
	g.Publishers = decodeList(publishers)
	g.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &g, nil
}

// ==================== Helper Functions ====================

func encodeLists(lists ...[]string) ([]string, error) {
	out := make([]string, len(lists))
	for i, l := range lists {
		if l == nil {
			l = []string{}
		}
		b, err := json.Marshal(l)
		if err != nil {
			return nil, fmt.Errorf("encoding list: %w", err)
		}
		out[i] = string(b)
	}
	return out, nil
}

// decodeList returns nil for empty or malformed lists.
func decodeList(s string) []string {
	var l []string
	if err := json.Unmarshal([]byte(s), &l); err != nil || len(l) == 0 {
		return nil
	}
	return l
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullUnix(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
)

// newsList is the list key of the news feed.
const newsList = "news"

// gameListKey names the remote list a game query reads. Each search query
// has its own list so results of different queries never mix.
func gameListKey(q domain.GameQuery) (string, error) {
	switch q.Category {
	case domain.CategoryPopular, domain.CategoryRecentlyReleased,
		domain.CategoryComingSoon, domain.CategoryMostAnticipated:
		return string(q.Category), nil
	case domain.CategorySearch:
		text := strings.ToLower(strings.TrimSpace(q.Text))
		if text == "" {
			return "", fmt.Errorf("%w: empty search text", domain.ErrInvalidInput)
		}
		return string(domain.CategorySearch) + ":" + text, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedCategory, q.Category)
}

// replaceWindow records ids as the remote order of page within list. The
// whole window is rewritten, so positions the remote stopped returning go away.
func replaceWindow(ctx context.Context, tx *sql.Tx, list string, page domain.Page, ids []int64) error {
	end := page.Offset + max(page.Limit, len(ids))
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM list_positions WHERE list_key = ? AND position >= ? AND position < ?`,
		list, page.Offset, end,
	); err != nil {
		return fmt.Errorf("clearing %s window: %w", list, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO list_positions (list_key, position, item_id) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing position insert: %w", err)
	}
	defer stmt.Close()

	for i, id := range ids {
		if _, err := stmt.ExecContext(ctx, list, page.Offset+i, id); err != nil {
			return fmt.Errorf("recording %s position %d: %w", list, page.Offset+i, err)
		}
	}
	return nil
}

// positionedFrom selects the rows of table in one list window, ordered by
// remote position. Callers append extra predicates and then positionOrder.
func positionedFrom(columns, table string) string {
	return `SELECT ` + columns + ` FROM list_positions
		JOIN ` + table + ` ON ` + table + `.id = list_positions.item_id
		WHERE list_positions.list_key = ? AND list_positions.position >= ? AND list_positions.position < ?`
}

const positionOrder = ` ORDER BY list_positions.position`

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
	"github.com/custodia-labs/gamefeed-cli/internal/core/ports/driven"
)

// articleStore implements driven.ArticleStore.
type articleStore struct {
	store *Store
}

var _ driven.ArticleStore = (*articleStore)(nil)

const articleColumns = `id, title, lede, image_url, url, published_at, updated_at`

// SaveArticles upserts articles by ID and records them as the feed window of
// page in remote order, in a single transaction.
func (s *articleStore) SaveArticles(ctx context.Context, page domain.Page, articles []domain.Article) error {
	page = page.Normalize()
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO articles (`+articleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			lede = excluded.lede,
			image_url = excluded.image_url,
			url = excluded.url,
			published_at = excluded.published_at,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("preparing article upsert: %w", err)
	}
	defer stmt.Close()

	updatedAt := s.store.now().UnixMilli()
	ids := make([]int64, len(articles))
	for i, a := range articles {
		if a.ID <= 0 {
			return fmt.Errorf("%w: article without id", domain.ErrInvalidInput)
		}
		if _, err := stmt.ExecContext(ctx,
			a.ID, a.Title, a.Lede, a.ImageURL, a.URL, a.PublishedAt.UnixMilli(), updatedAt,
		); err != nil {
			return fmt.Errorf("saving article %d: %w", a.ID, err)
		}
		ids[i] = a.ID
	}
	if err := replaceWindow(ctx, tx, newsList, page, ids); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing articles: %w", err)
	}
	s.store.changes.publish(topicArticles)
	return nil
}

// ObserveArticles emits the feed window in remote order now and after every change.
func (s *articleStore) ObserveArticles(ctx context.Context, page domain.Page) (<-chan []domain.Article, error) {
	page = page.Normalize()
	return observe(ctx, s.store.changes, topicArticles, func(ctx context.Context) ([]domain.Article, error) {
		return s.list(ctx, page)
	})
}

// GetArticle retrieves an article by ID.
func (s *articleStore) GetArticle(ctx context.Context, id int64) (*domain.Article, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *articleStore) list(ctx context.Context, page domain.Page) ([]domain.Article, error) {
	rows, err := s.store.db.QueryContext(ctx,
		positionedFrom(articleColumns, "articles")+positionOrder,
		newsList, page.Offset, page.Offset+page.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	articles := []domain.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating articles: %w", err)
	}
	return articles, nil
}

func scanArticle(row rowScanner) (*domain.Article, error) {
	var a domain.Article
	var publishedAt, updatedAt int64
	if err := row.Scan(&a.ID, &a.Title, &a.Lede, &a.ImageURL, &a.URL, &publishedAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning article: %w", err)
	}
	a.PublishedAt = time.UnixMilli(publishedAt).UTC()
	a.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &a, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
	"github.com/custodia-labs/gamefeed-cli/internal/core/ports/driven"
)

// credentialsStore implements driven.CredentialsStore over a single row.
type credentialsStore struct {
	store *Store
}

var _ driven.CredentialsStore = (*credentialsStore)(nil)

// Save replaces the stored credentials.
func (s *credentialsStore) Save(ctx context.Context, creds domain.Credentials) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO credentials (id, access_token, token_type, token_ttl_seconds, expires_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			token_type = excluded.token_type,
			token_ttl_seconds = excluded.token_ttl_seconds,
			expires_at = excluded.expires_at
	`, creds.AccessToken, creds.TokenType, creds.TokenTTLSeconds, creds.ExpiresAt)
	if err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}
	return nil
}

// Get returns the stored credentials, or the zero value when none were saved.
func (s *credentialsStore) Get(ctx context.Context) (domain.Credentials, error) {
	var creds domain.Credentials
	err := s.store.db.QueryRowContext(ctx, `
		SELECT access_token, token_type, token_ttl_seconds, expires_at
		FROM credentials WHERE id = 1
	`).Scan(&creds.AccessToken, &creds.TokenType, &creds.TokenTTLSeconds, &creds.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Credentials{}, nil
	}
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("reading credentials: %w", err)
	}
	return creds, nil
}

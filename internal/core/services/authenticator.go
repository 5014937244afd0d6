package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
	"github.com/custodia-labs/gamefeed-cli/internal/core/ports/driven"
	"github.com/custodia-labs/gamefeed-cli/internal/core/ports/driving"
	"github.com/custodia-labs/gamefeed-cli/internal/logger"
)

// Ensure Authenticator implements the interface.
var _ driving.AuthService = (*Authenticator)(nil)

// Authenticator is the single-flight re-authentication core shared by every
// request of one HTTP pipeline.
//
// All token writes go through mu. A request that failed with a token that is
// no longer the stored one gets the stored token back without a network call,
// so a burst of N requests failing against the same stale token results in
// exactly one FetchRemote.
type Authenticator struct {
	creds    *CredentialsService
	supplier driven.TokenSupplier

	mu  sync.Mutex
	now func() time.Time
}

// NewAuthenticator creates an authenticator.
func NewAuthenticator(creds *CredentialsService, supplier driven.TokenSupplier) *Authenticator {
	return &Authenticator{
		creds:    creds,
		supplier: supplier,
		now:      time.Now,
	}
}

// CurrentToken returns the stored access token, or "" when none is stored.
func (a *Authenticator) CurrentToken(ctx context.Context) (string, error) {
	creds, err := a.creds.GetLocal(ctx)
	if err != nil {
		return "", err
	}
	if creds == nil {
		return "", nil
	}
	return creds.AccessToken, nil
}

// Reauthenticate is called after the API rejected failedToken.
// It returns the token the request should be retried with.
func (a *Authenticator) Reauthenticate(ctx context.Context, failedToken string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	current, err := a.creds.GetLocal(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: reading stored credentials: %w", domain.ErrTokenRefreshFailed, err)
	}
	if current != nil && current.AccessToken != failedToken {
		logger.Debug("auth: token already refreshed by another request")
		return current.AccessToken, nil
	}

	creds, err := a.fetchLocked(ctx)
	if err != nil {
		return "", err
	}
	return creds.AccessToken, nil
}

// EnsureValid fetches a new token only when the stored one is absent or expired.
func (a *Authenticator) EnsureValid(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	expired, err := a.creds.IsExpired(ctx)
	if err != nil {
		return fmt.Errorf("checking stored credentials: %w", err)
	}
	if !expired {
		return nil
	}
	_, err = a.fetchLocked(ctx)
	return err
}

// Login always fetches and stores a new token.
func (a *Authenticator) Login(ctx context.Context) (domain.Credentials, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fetchLocked(ctx)
}

// Status returns the stored credentials and whether they are expired.
func (a *Authenticator) Status(ctx context.Context) (*domain.Credentials, bool, error) {
	creds, err := a.creds.GetLocal(ctx)
	if err != nil {
		return nil, true, err
	}
	if creds == nil {
		return nil, true, nil
	}
	return creds, creds.IsExpiredAt(a.now()), nil
}

// fetchLocked must be called with mu held. The store is written only after a
// fully successful fetch.
func (a *Authenticator) fetchLocked(ctx context.Context) (domain.Credentials, error) {
	if a.supplier == nil {
		return domain.Credentials{}, fmt.Errorf("%w: %w", domain.ErrTokenRefreshFailed, domain.ErrAuthRequired)
	}

	logger.Debug("auth: fetching new access token")
	creds, err := a.supplier.FetchRemote(ctx)
	if err != nil {
		logger.Warn("auth: token fetch failed: %v", err)
		return domain.Credentials{}, fmt.Errorf("%w: %w", domain.ErrTokenRefreshFailed, domain.Classify(err))
	}
	if err := a.creds.Save(ctx, creds); err != nil {
		return domain.Credentials{}, fmt.Errorf("%w: saving credentials: %w", domain.ErrTokenRefreshFailed, err)
	}
	logger.Info("auth: stored new access token, expires %s", creds.ExpiresAtTime().Format(time.RFC3339))
	return creds, nil
}

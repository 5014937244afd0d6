package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
)

func TestCredentialsService_GetLocal_Empty(t *testing.T) {
	svc := NewCredentialsService(&mockCredentialsStore{})

	creds, err := svc.GetLocal(context.Background())
	require.NoError(t, err)
	assert.Nil(t, creds)
}

func TestCredentialsService_SaveAndGet(t *testing.T) {
	store := &mockCredentialsStore{}
	svc := NewCredentialsService(store)
	ctx := context.Background()

	want := domain.NewCredentials("abc", domain.TokenTypeBearer, 5000, time.UnixMilli(10000))
	require.NoError(t, svc.Save(ctx, want))

	got, err := svc.GetLocal(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestCredentialsService_SaveEmptyRejected(t *testing.T) {
	store := &mockCredentialsStore{}
	svc := NewCredentialsService(store)

	err := svc.Save(context.Background(), domain.Credentials{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, store.saves)
}

func TestCredentialsService_NilStore(t *testing.T) {
	svc := NewCredentialsService(nil)

	_, err := svc.GetLocal(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
	assert.ErrorIs(t, svc.Save(context.Background(), domain.Credentials{AccessToken: "x"}), domain.ErrNotImplemented)
}

func TestCredentialsService_IsExpired(t *testing.T) {
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	creds := domain.NewCredentials("abc", domain.TokenTypeBearer, 60*24*3600, issued)
	expiry := creds.ExpiresAtTime()

	tests := []struct {
		name   string
		stored domain.Credentials
		now    time.Time
		want   bool
	}{
		{"absent", domain.Credentials{}, issued, true},
		{"fresh", creds, issued, false},
		{"just before expiry", creds, expiry.Add(-time.Millisecond), false},
		{"at expiry", creds, expiry, true},
		{"after expiry", creds, expiry.Add(time.Hour), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewCredentialsService(&mockCredentialsStore{creds: tt.stored})
			svc.now = func() time.Time { return tt.now }

			expired, err := svc.IsExpired(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, expired)
		})
	}
}

func TestCredentialsService_IsExpired_StoreError(t *testing.T) {
	svc := NewCredentialsService(&mockCredentialsStore{getErr: errors.New("disk gone")})

	expired, err := svc.IsExpired(context.Background())
	assert.Error(t, err)
	assert.True(t, expired)
}

package service_test

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
	"github.com/aussiebroadwan/surveybasket/internal/auth/service"
)

func newLedgerUser(t *testing.T, e *env, id, email string) {
	t.Helper()
	require.NoError(t, e.store.Users().CreateUser(context.Background(), domain.User{ID: id, Email: email, PasswordHash: "h"}))
}

func TestIssueFormat(t *testing.T) {
	e := newEnv(t)
	newLedgerUser(t, e, "u1", testEmail)

	issued, err := e.ledger.Issue(context.Background(), "u1")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(issued.Token)
	require.NoError(t, err)
	require.Len(t, raw, 64)
	require.Equal(t, e.clock.Now().Add(14*24*time.Hour), issued.Record.ExpiresAt)
	require.NotEqual(t, issued.Token, issued.Record.TokenHash, "only the fingerprint is stored")
}

func TestRotateIsSingleUse(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	newLedgerUser(t, e, "u1", testEmail)

	first, err := e.ledger.Issue(ctx, "u1")
	require.NoError(t, err)

	second, err := e.ledger.Rotate(ctx, "u1", first.Token)
	require.NoError(t, err)
	require.NotEqual(t, first.Token, second.Token)

	_, err = e.ledger.Rotate(ctx, "u1", first.Token)
	require.ErrorIs(t, err, service.ErrInvalidRefreshToken)

	tokens, err := e.store.RefreshTokens().ListUserRefreshTokens(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	active := 0
	for _, tok := range tokens {
		if tok.IsActive(e.clock.Now()) {
			active++
		}
	}
	require.Equal(t, 1, active)
}

func TestRotateIsScopedToOwner(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	newLedgerUser(t, e, "u1", testEmail)
	newLedgerUser(t, e, "u2", "b@x.com")

	issued, err := e.ledger.Issue(ctx, "u1")
	require.NoError(t, err)

	_, err = e.ledger.Rotate(ctx, "u2", issued.Token)
	require.ErrorIs(t, err, service.ErrInvalidRefreshToken)
}

func TestExpiredTokenIsNotActive(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	newLedgerUser(t, e, "u1", testEmail)

	issued, err := e.ledger.Issue(ctx, "u1")
	require.NoError(t, err)

	e.clock.Advance(14*24*time.Hour + time.Second)
	require.False(t, issued.Record.IsActive(e.clock.Now()))

	_, err = e.ledger.Rotate(ctx, "u1", issued.Token)
	require.ErrorIs(t, err, service.ErrInvalidRefreshToken)
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	newLedgerUser(t, e, "u1", testEmail)

	issued, err := e.ledger.Issue(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, e.ledger.Revoke(ctx, "u1", issued.Token))
	require.ErrorIs(t, e.ledger.Revoke(ctx, "u1", issued.Token), service.ErrInvalidRefreshToken)
	require.ErrorIs(t, e.ledger.Revoke(ctx, "u1", ""), service.ErrInvalidRefreshToken)

	_, err = e.ledger.Rotate(ctx, "u1", issued.Token)
	require.ErrorIs(t, err, service.ErrInvalidRefreshToken)
}

func TestConcurrentRotationHasOneWinner(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	newLedgerUser(t, e, "u1", testEmail)

	issued, err := e.ledger.Issue(ctx, "u1")
	require.NoError(t, err)

	const attempts = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		rejected int
	)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.ledger.Rotate(ctx, "u1", issued.Token)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, service.ErrInvalidRefreshToken):
				rejected++
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins)
	require.Equal(t, attempts-1, rejected)
}

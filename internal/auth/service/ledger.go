package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
	"github.com/aussiebroadwan/surveybasket/internal/auth/store"
	"github.com/aussiebroadwan/surveybasket/pkg/cryptox"
	"github.com/aussiebroadwan/surveybasket/pkg/idx"
	"github.com/aussiebroadwan/surveybasket/pkg/jwtx"
)

// RefreshTokenLedger keeps each user's refresh token history. A presented
// token is matched by fingerprint against the user's own entries only.
type RefreshTokenLedger struct {
	Store store.Store
	TTL   time.Duration
	Now   func() time.Time
}

// NewRefreshTokenLedger returns a ledger with the 14 day lifetime.
func NewRefreshTokenLedger(s store.Store) *RefreshTokenLedger {
	return &RefreshTokenLedger{Store: s, TTL: jwtx.DefaultRefreshTokenTTL, Now: time.Now}
}

func (l *RefreshTokenLedger) now() time.Time {
	if l.Now == nil {
		return time.Now().UTC()
	}
	return l.Now().UTC()
}

// Issue appends a fresh token to the user's history.
func (l *RefreshTokenLedger) Issue(ctx context.Context, userID string) (domain.IssuedRefreshToken, error) {
	return l.issue(ctx, l.Store, userID, l.now())
}

func (l *RefreshTokenLedger) issue(ctx context.Context, s store.Store, userID string, now time.Time) (domain.IssuedRefreshToken, error) {
	opaque, err := cryptox.GenerateStdToken(cryptox.TokenSize512)
	if err != nil {
		return domain.IssuedRefreshToken{}, err
	}
	rec := domain.RefreshToken{
		ID:        idx.NewAt(now).String(),
		UserID:    userID,
		TokenHash: cryptox.FingerprintToken(opaque),
		CreatedAt: now,
		ExpiresAt: now.Add(l.TTL),
	}
	if err := s.RefreshTokens().CreateRefreshToken(ctx, rec); err != nil {
		return domain.IssuedRefreshToken{}, err
	}
	return domain.IssuedRefreshToken{Token: opaque, Record: rec}, nil
}

// Rotate revokes the presented token and issues its successor atomically.
// Of two concurrent rotations of one token exactly one succeeds.
func (l *RefreshTokenLedger) Rotate(ctx context.Context, userID, presented string) (domain.IssuedRefreshToken, error) {
	var next domain.IssuedRefreshToken
	err := l.Store.WithTx(ctx, func(tx store.Tx) error {
		now := l.now()
		if err := l.revoke(ctx, tx, userID, presented, now); err != nil {
			return err
		}
		var err error
		next, err = l.issue(ctx, tx, userID, now)
		return err
	})
	if err != nil {
		return domain.IssuedRefreshToken{}, err
	}
	return next, nil
}

// Revoke ends the presented token without a successor.
func (l *RefreshTokenLedger) Revoke(ctx context.Context, userID, presented string) error {
	return l.Store.WithTx(ctx, func(tx store.Tx) error {
		return l.revoke(ctx, tx, userID, presented, l.now())
	})
}

func (l *RefreshTokenLedger) revoke(ctx context.Context, s store.Store, userID, presented string, now time.Time) error {
	active, err := l.findActive(ctx, s, userID, presented, now)
	if err != nil {
		return err
	}
	if err := s.RefreshTokens().RevokeRefreshToken(ctx, active.ID, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidRefreshToken
		}
		return err
	}
	return nil
}

func (l *RefreshTokenLedger) findActive(ctx context.Context, s store.Store, userID, presented string, now time.Time) (domain.RefreshToken, error) {
	if presented == "" {
		return domain.RefreshToken{}, ErrInvalidRefreshToken
	}
	tokens, err := s.RefreshTokens().ListUserRefreshTokens(ctx, userID)
	if err != nil {
		return domain.RefreshToken{}, err
	}
	fp := []byte(cryptox.FingerprintToken(presented))
	for _, t := range tokens {
		if subtle.ConstantTimeCompare([]byte(t.TokenHash), fp) == 1 && t.IsActive(now) {
			return t, nil
		}
	}
	return domain.RefreshToken{}, ErrInvalidRefreshToken
}

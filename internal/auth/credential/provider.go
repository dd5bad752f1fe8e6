// Package credential owns everything that touches a user's secrets: password
// verification with lockout accounting, and single-use action codes for email
// confirmation and password reset.
package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
	"github.com/aussiebroadwan/surveybasket/internal/auth/store"
	"github.com/aussiebroadwan/surveybasket/pkg/cryptox"
	"github.com/aussiebroadwan/surveybasket/pkg/idx"
	"github.com/aussiebroadwan/surveybasket/pkg/slogx"
)

var (
	ErrPasswordMismatch = errors.New("credential: password mismatch")
	ErrLockedOut        = errors.New("credential: locked out")
	ErrInvalidCode      = errors.New("credential: invalid code")
	ErrAlreadyConfirmed = errors.New("credential: email already confirmed")
)

const (
	DefaultMaxFailedAccess = 5
	DefaultLockoutDuration = 5 * time.Minute
	DefaultActionCodeTTL   = 24 * time.Hour
)

// Provider is the seam between the auth core and credential storage.
type Provider interface {
	// HashPassword encodes a new password for storage.
	HashPassword(password string) (string, error)

	// VerifyPassword checks password against u and updates its lockout
	// counters. A locked account returns ErrLockedOut without checking.
	VerifyPassword(ctx context.Context, u domain.User, password string) error

	IsDisabled(u domain.User) bool
	IsLockedOut(u domain.User) bool

	// Unlock clears the failure counter and any lockout window.
	Unlock(ctx context.Context, userID string) error

	// SetPassword replaces the password hash and clears lockout.
	SetPassword(ctx context.Context, userID, password string) error

	// GenerateConfirmationCode and GenerateResetCode return an opaque code.
	// Earlier unused codes of the same purpose stop working.
	GenerateConfirmationCode(ctx context.Context, userID string) (string, error)
	GenerateResetCode(ctx context.Context, userID string) (string, error)

	// ConfirmEmail consumes a confirmation code. An already confirmed user
	// gets ErrAlreadyConfirmed and the code is left untouched.
	ConfirmEmail(ctx context.Context, userID, code string) error

	// ResetPassword consumes a reset code and sets password.
	ResetPassword(ctx context.Context, userID, code, password string) error
}

// StoreProvider implements Provider on top of the auth store.
type StoreProvider struct {
	Store  store.Store
	Hasher *cryptox.PasswordHasher

	MaxFailedAccess int
	LockoutDuration time.Duration
	ActionCodeTTL   time.Duration

	Now func() time.Time
}

var _ Provider = (*StoreProvider)(nil)

// NewStoreProvider returns a provider with default lockout and code settings.
func NewStoreProvider(s store.Store, hasher *cryptox.PasswordHasher) *StoreProvider {
	return &StoreProvider{
		Store:           s,
		Hasher:          hasher,
		MaxFailedAccess: DefaultMaxFailedAccess,
		LockoutDuration: DefaultLockoutDuration,
		ActionCodeTTL:   DefaultActionCodeTTL,
		Now:             time.Now,
	}
}

func (p *StoreProvider) now() time.Time {
	if p.Now == nil {
		return time.Now().UTC()
	}
	return p.Now().UTC()
}

func (p *StoreProvider) HashPassword(password string) (string, error) {
	return p.Hasher.Hash(password)
}

func (p *StoreProvider) VerifyPassword(ctx context.Context, u domain.User, password string) error {
	now := p.now()
	if u.IsLockedOut(now) {
		return ErrLockedOut
	}

	err := p.Hasher.Verify(password, u.PasswordHash)
	if err == nil {
		if u.AccessFailedCount > 0 || u.LockoutEnd != nil {
			if err := p.Store.Users().UpdateLockout(ctx, u.ID, 0, nil); err != nil {
				return err
			}
		}
		return nil
	}
	if !errors.Is(err, cryptox.ErrPasswordMismatch) {
		return fmt.Errorf("verify password: %w", err)
	}

	err = p.Store.WithTx(ctx, func(tx store.Tx) error {
		failed, err := tx.Users().RecordFailedAccess(ctx, u.ID)
		if err != nil {
			return err
		}
		if p.MaxFailedAccess <= 0 || failed < p.MaxFailedAccess {
			return nil
		}
		end := now.Add(p.LockoutDuration)
		slogx.FromContext(ctx).Warn("account locked out",
			slog.String("user_id", u.ID),
			slog.Time("until", end),
		)
		return tx.Users().UpdateLockout(ctx, u.ID, 0, &end)
	})
	if err != nil {
		return fmt.Errorf("record failed access: %w", err)
	}
	return ErrPasswordMismatch
}

func (p *StoreProvider) IsDisabled(u domain.User) bool {
	return u.Disabled
}

func (p *StoreProvider) IsLockedOut(u domain.User) bool {
	return u.IsLockedOut(p.now())
}

func (p *StoreProvider) Unlock(ctx context.Context, userID string) error {
	return p.Store.Users().UpdateLockout(ctx, userID, 0, nil)
}

func (p *StoreProvider) SetPassword(ctx context.Context, userID, password string) error {
	return p.Store.WithTx(ctx, func(tx store.Tx) error {
		return p.setPassword(ctx, tx, userID, password)
	})
}

func (p *StoreProvider) setPassword(ctx context.Context, s store.Store, userID, password string) error {
	hash, err := p.Hasher.Hash(password)
	if err != nil {
		return err
	}
	if err := s.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}
	return s.Users().UpdateLockout(ctx, userID, 0, nil)
}

func (p *StoreProvider) GenerateConfirmationCode(ctx context.Context, userID string) (string, error) {
	return p.generate(ctx, userID, domain.PurposeConfirmEmail)
}

func (p *StoreProvider) GenerateResetCode(ctx context.Context, userID string) (string, error) {
	return p.generate(ctx, userID, domain.PurposeResetPassword)
}

func (p *StoreProvider) generate(ctx context.Context, userID string, purpose domain.ActionPurpose) (string, error) {
	code, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}

	now := p.now()
	err = p.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.ActionCodes().SupersedeActionCodes(ctx, userID, purpose, now); err != nil {
			return err
		}
		return tx.ActionCodes().CreateActionCode(ctx, domain.ActionCode{
			ID:        idx.NewAt(now).String(),
			UserID:    userID,
			Purpose:   purpose,
			CodeHash:  cryptox.FingerprintToken(code),
			CreatedAt: now,
			ExpiresAt: now.Add(p.ActionCodeTTL),
		})
	})
	if err != nil {
		return "", fmt.Errorf("create %s code: %w", purpose, err)
	}
	return code, nil
}

// consume marks the code used. It must run inside tx so the caller's state
// change commits with it.
func (p *StoreProvider) consume(ctx context.Context, tx store.Tx, userID, code string, purpose domain.ActionPurpose) error {
	if code == "" {
		return ErrInvalidCode
	}
	ac, err := tx.ActionCodes().GetActionCodeByHash(ctx, cryptox.FingerprintToken(code))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidCode
		}
		return err
	}

	now := p.now()
	if ac.UserID != userID || ac.Purpose != purpose || !ac.Usable(now) {
		return ErrInvalidCode
	}
	if err := tx.ActionCodes().MarkActionCodeUsed(ctx, ac.ID, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidCode
		}
		return err
	}
	return nil
}

func (p *StoreProvider) ConfirmEmail(ctx context.Context, userID, code string) error {
	return p.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := p.consume(ctx, tx, userID, code, domain.PurposeConfirmEmail); err != nil {
			return err
		}
		changed, err := tx.Users().ConfirmEmail(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidCode
			}
			return err
		}
		if !changed {
			return ErrAlreadyConfirmed
		}
		return nil
	})
}

func (p *StoreProvider) ResetPassword(ctx context.Context, userID, code, password string) error {
	return p.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := p.consume(ctx, tx, userID, code, domain.PurposeResetPassword); err != nil {
			return err
		}
		return p.setPassword(ctx, tx, userID, password)
	})
}

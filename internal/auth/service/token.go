package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/surveybasket/internal/auth/credential"
	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
	"github.com/aussiebroadwan/surveybasket/internal/auth/store"
	"github.com/aussiebroadwan/surveybasket/pkg/obs"
	"github.com/aussiebroadwan/surveybasket/pkg/slogx"
)

// TokenService implements login, refresh and refresh token revocation.
type TokenService struct {
	Store       store.Store
	Credentials credential.Provider
	Issuer      *TokenIssuer
	Ledger      *RefreshTokenLedger
	Permissions *PermissionResolver
	Metrics     *obs.Metrics
}

// Login verifies email and password and returns a fresh token pair.
func (s *TokenService) Login(ctx context.Context, email, password string) (domain.AuthResponse, error) {
	resp, err := s.login(ctx, email, password)
	s.Metrics.AuthEvent("login", outcome(err))
	return resp, err
}

func (s *TokenService) login(ctx context.Context, email, password string) (domain.AuthResponse, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.AuthResponse{}, ErrInvalidCredentials
		}
		return domain.AuthResponse{}, err
	}
	if err := s.Credentials.VerifyPassword(ctx, u, password); err != nil {
		switch {
		case errors.Is(err, credential.ErrLockedOut):
			return domain.AuthResponse{}, ErrLockedUser
		case errors.Is(err, credential.ErrPasswordMismatch):
			l.Info("login rejected", slog.String("user_id", u.ID))
			return domain.AuthResponse{}, ErrInvalidCredentials
		default:
			return domain.AuthResponse{}, err
		}
	}
	if s.Credentials.IsDisabled(u) {
		return domain.AuthResponse{}, ErrDisabledUser
	}
	if !u.EmailConfirmed {
		return domain.AuthResponse{}, ErrEmailNotConfirmed
	}

	access, err := s.mint(ctx, u)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	refresh, err := s.Ledger.Issue(ctx, u.ID)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	return respond(u, access, refresh), nil
}

// Refresh rotates refreshToken and mints a new access token. The access
// token identifies the user and must still be valid.
func (s *TokenService) Refresh(ctx context.Context, accessToken, refreshToken string) (domain.AuthResponse, error) {
	resp, err := s.refresh(ctx, accessToken, refreshToken)
	s.Metrics.AuthEvent("refresh", outcome(err))
	return resp, err
}

func (s *TokenService) refresh(ctx context.Context, accessToken, refreshToken string) (domain.AuthResponse, error) {
	u, err := s.userFromAccessToken(ctx, accessToken)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	if s.Credentials.IsDisabled(u) {
		return domain.AuthResponse{}, ErrDisabledUser
	}
	if s.Credentials.IsLockedOut(u) {
		return domain.AuthResponse{}, ErrLockedUser
	}

	// Mint before rotating so a failure leaves the presented token usable.
	access, err := s.mint(ctx, u)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	next, err := s.Ledger.Rotate(ctx, u.ID, refreshToken)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	return respond(u, access, next), nil
}

// Revoke ends refreshToken for the user named by accessToken.
func (s *TokenService) Revoke(ctx context.Context, accessToken, refreshToken string) error {
	err := s.revoke(ctx, accessToken, refreshToken)
	s.Metrics.AuthEvent("revoke", outcome(err))
	return err
}

func (s *TokenService) revoke(ctx context.Context, accessToken, refreshToken string) error {
	u, err := s.userFromAccessToken(ctx, accessToken)
	if err != nil {
		return err
	}
	return s.Ledger.Revoke(ctx, u.ID, refreshToken)
}

func (s *TokenService) userFromAccessToken(ctx context.Context, accessToken string) (domain.User, error) {
	userID, err := s.Issuer.Validate(accessToken)
	if err != nil {
		return domain.User{}, err
	}
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidJwtToken
		}
		return domain.User{}, err
	}
	return u, nil
}

type mintedToken struct {
	token     string
	expiresIn int
}

func (s *TokenService) mint(ctx context.Context, u domain.User) (mintedToken, error) {
	perms, err := s.Permissions.Resolve(ctx, u.Roles)
	if err != nil {
		return mintedToken{}, err
	}
	token, expiresIn, err := s.Issuer.Mint(u, u.Roles, perms)
	if err != nil {
		return mintedToken{}, err
	}
	return mintedToken{token: token, expiresIn: expiresIn}, nil
}

func respond(u domain.User, access mintedToken, refresh domain.IssuedRefreshToken) domain.AuthResponse {
	return domain.AuthResponse{
		ID:                     u.ID,
		Email:                  u.Email,
		FirstName:              u.FirstName,
		LastName:               u.LastName,
		Token:                  access.token,
		ExpiresIn:              access.expiresIn,
		RefreshToken:           refresh.Token,
		RefreshTokenExpiration: refresh.Record.ExpiresAt,
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return "rejected"
}

package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aussiebroadwan/surveybasket/internal/auth/credential"
	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
	"github.com/aussiebroadwan/surveybasket/internal/auth/store"
	"github.com/aussiebroadwan/surveybasket/pkg/idx"
	"github.com/aussiebroadwan/surveybasket/pkg/slogx"
)

type BootstrapService struct {
	Store       store.Store
	Credentials credential.Provider
	Token       string // pre-configured bootstrap token; empty disables bootstrap

	// Roles are created on bootstrap. Empty means domain.DefaultRoles.
	Roles []domain.RoleDefinition
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	userEmpty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	roleEmpty, err := s.Store.Roles().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !userEmpty || !roleEmpty, nil
}

// Bootstrap creates the seed roles and a confirmed admin holding the Admin
// role. It only succeeds once.
func (s *BootstrapService) Bootstrap(ctx context.Context, token string, req domain.BootstrapData) (string, error) {
	l := slogx.FromContext(ctx)

	if s.Token == "" {
		return "", ErrBootstrapDisabled
	}
	if bootstrapped, err := s.IsBootstrapped(ctx); err != nil {
		return "", err
	} else if bootstrapped {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return "", ErrBootstrapAlready
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
		l.Warn("unauthorized bootstrap attempt")
		return "", ErrBootstrapUnauthorized
	}

	if err := errors.Join(
		domain.ValidateEmail(req.AdminEmail),
		domain.ValidatePassword(req.AdminPassword),
		domain.ValidateName("adminFirstName", req.AdminFirstName),
		domain.ValidateName("adminLastName", req.AdminLastName),
	); err != nil {
		return "", err
	}

	roles := req.Roles
	if len(roles) == 0 {
		roles = s.Roles
	}
	if len(roles) == 0 {
		roles = domain.DefaultRoles()
	}
	for _, def := range roles {
		for _, p := range def.Permissions {
			if !domain.IsKnownPermission(p) {
				return "", ErrInvalidPermissions
			}
		}
	}

	hash, err := s.Credentials.HashPassword(req.AdminPassword)
	if err != nil {
		return "", err
	}

	adminID := idx.New().String()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		var adminRoleID string
		for _, def := range roles {
			id := idx.New().String()
			if err := tx.Roles().CreateRole(ctx, domain.Role{
				ID:               id,
				Name:             def.Name,
				ConcurrencyStamp: uuid.NewString(),
				IsDefault:        def.Default,
				Permissions:      def.Permissions,
			}); err != nil {
				l.Error("failed to create role", slog.String("role_name", def.Name), slog.Any("error", err))
				return err
			}
			if def.Name == domain.RoleAdmin {
				adminRoleID = id
			}
		}
		if adminRoleID == "" {
			return ErrInvalidRoles
		}

		if err := tx.Users().CreateUser(ctx, domain.User{
			ID:             adminID,
			Email:          req.AdminEmail,
			FirstName:      req.AdminFirstName,
			LastName:       req.AdminLastName,
			PasswordHash:   hash,
			EmailConfirmed: true,
		}); err != nil {
			return err
		}
		return tx.Users().SetUserRoles(ctx, adminID, []string{adminRoleID})
	})
	if err != nil {
		return "", err
	}

	l.Info("successfully bootstrapped system", slog.String("admin_user_id", adminID), slog.Int("roles", len(roles)))
	return adminID, nil
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/aussiebroadwan/surveybasket/internal/auth/credential"
	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
	"github.com/aussiebroadwan/surveybasket/internal/auth/store"
	"github.com/aussiebroadwan/surveybasket/pkg/idx"
)

type UserService struct {
	Store       store.Store
	Credentials credential.Provider
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// ListUsers returns every user with their role names.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}

// UpdateProfile changes the caller's names.
func (s *UserService) UpdateProfile(ctx context.Context, userID, firstName, lastName string) error {
	if err := errors.Join(
		domain.ValidateName("firstName", firstName),
		domain.ValidateName("lastName", lastName),
	); err != nil {
		return err
	}
	err := s.Store.Users().UpdateProfile(ctx, userID, strings.TrimSpace(firstName), strings.TrimSpace(lastName))
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// ChangePassword requires the current password. A wrong one counts towards
// lockout like a failed login.
func (s *UserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}
	u, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.Credentials.VerifyPassword(ctx, u, currentPassword); err != nil {
		switch {
		case errors.Is(err, credential.ErrLockedOut):
			return ErrLockedUser
		case errors.Is(err, credential.ErrPasswordMismatch):
			return ErrInvalidCredentials
		default:
			return err
		}
	}
	return s.Credentials.SetPassword(ctx, u.ID, newPassword)
}

type CreateUserRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Roles     []string
}

// CreateUser adds a confirmed user with the named roles.
func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (domain.User, error) {
	if err := errors.Join(
		domain.ValidateEmail(req.Email),
		domain.ValidatePassword(req.Password),
		domain.ValidateName("firstName", req.FirstName),
		domain.ValidateName("lastName", req.LastName),
	); err != nil {
		return domain.User{}, err
	}
	if len(req.Roles) == 0 {
		return domain.User{}, ErrInvalidRoles
	}

	hash, err := s.Credentials.HashPassword(req.Password)
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:             idx.New().String(),
		Email:          strings.TrimSpace(req.Email),
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		PasswordHash:   hash,
		EmailConfirmed: true,
	}
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		roleIDs := make([]string, 0, len(req.Roles))
		for _, name := range dedupe(req.Roles) {
			role, err := tx.Roles().GetRoleByName(ctx, name)
			if errors.Is(err, store.ErrNotFound) || (err == nil && role.IsDeleted) {
				return ErrInvalidRoles
			}
			if err != nil {
				return err
			}
			roleIDs = append(roleIDs, role.ID)
		}

		if err := tx.Users().CreateUser(ctx, u); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailAlreadyExist
			}
			return err
		}
		return tx.Users().SetUserRoles(ctx, u.ID, roleIDs)
	})
	if err != nil {
		return domain.User{}, err
	}
	return s.GetUserByID(ctx, u.ID)
}

// ToggleStatus flips the disabled flag.
func (s *UserService) ToggleStatus(ctx context.Context, userID string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().GetUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		return tx.Users().SetDisabled(ctx, u.ID, !u.Disabled)
	})
}

// Unlock clears a lockout.
func (s *UserService) Unlock(ctx context.Context, userID string) error {
	if _, err := s.GetUserByID(ctx, userID); err != nil {
		return err
	}
	return s.Credentials.Unlock(ctx, userID)
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

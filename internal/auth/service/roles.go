package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
	"github.com/aussiebroadwan/surveybasket/internal/auth/store"
	"github.com/aussiebroadwan/surveybasket/pkg/idx"
)

type RolesService struct {
	Store store.Store
}

// RoleRequest names a role and the catalog permissions it grants.
type RoleRequest struct {
	Name        string
	Permissions []string
}

func (r RoleRequest) validate() ([]string, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" || len(name) > 256 {
		return nil, fmt.Errorf("%w: name is required and at most 256 characters", domain.ErrValidation)
	}
	perms := dedupe(r.Permissions)
	if len(perms) == 0 {
		return nil, ErrInvalidPermissions
	}
	for _, p := range perms {
		if !domain.IsKnownPermission(p) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPermissions, p)
		}
	}
	return perms, nil
}

// GetRoleByID fetches a role with its permissions.
func (s *RolesService) GetRoleByID(ctx context.Context, roleID string) (domain.Role, error) {
	r, err := s.Store.Roles().GetRoleByID(ctx, roleID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Role{}, ErrRoleNotFound
	}
	return r, err
}

// List returns roles, optionally including deleted ones.
func (s *RolesService) List(ctx context.Context, includeDeleted bool) ([]domain.Role, error) {
	return s.Store.Roles().ListRoles(ctx, includeDeleted)
}

// Add creates a role.
func (s *RolesService) Add(ctx context.Context, req RoleRequest) (domain.Role, error) {
	perms, err := req.validate()
	if err != nil {
		return domain.Role{}, err
	}
	r := domain.Role{
		ID:               idx.New().String(),
		Name:             strings.TrimSpace(req.Name),
		ConcurrencyStamp: uuid.NewString(),
		Permissions:      perms,
	}
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Roles().CreateRole(ctx, r)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Role{}, ErrRoleAlreadyExists
		}
		return domain.Role{}, err
	}
	return s.GetRoleByID(ctx, r.ID)
}

// Update rewrites name and grants. stamp must be the role's current
// concurrency stamp.
func (s *RolesService) Update(ctx context.Context, roleID, stamp string, req RoleRequest) error {
	perms, err := req.validate()
	if err != nil {
		return err
	}
	current, err := s.GetRoleByID(ctx, roleID)
	if err != nil {
		return err
	}
	current.Name = strings.TrimSpace(req.Name)
	current.Permissions = perms
	current.ConcurrencyStamp = uuid.NewString()

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Roles().UpdateRole(ctx, current, stamp)
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrRoleNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return ErrRoleAlreadyExists
	case errors.Is(err, store.ErrConcurrencyConflict):
		return ErrConcurrencyConflict
	}
	return err
}

// ToggleStatus flips the soft-delete flag. A deleted role grants nothing.
func (s *RolesService) ToggleStatus(ctx context.Context, roleID string) error {
	r, err := s.GetRoleByID(ctx, roleID)
	if err != nil {
		return err
	}
	err = s.Store.Roles().SetRoleDeleted(ctx, r.ID, !r.IsDeleted, uuid.NewString())
	if errors.Is(err, store.ErrNotFound) {
		return ErrRoleNotFound
	}
	return err
}

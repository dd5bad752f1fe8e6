package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
	"github.com/aussiebroadwan/surveybasket/internal/auth/service"
)

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.seed(t)

	req := service.CreateUserRequest{
		Email: "staff@x.com", Password: testPassword, FirstName: "Sam", LastName: "Staff",
		Roles: []string{domain.RoleAdmin, domain.RoleMember, domain.RoleAdmin},
	}
	u, err := e.users.CreateUser(ctx, req)
	require.NoError(t, err)
	require.True(t, u.EmailConfirmed)
	require.Equal(t, []string{domain.RoleAdmin, domain.RoleMember}, u.Roles)

	_, err = e.users.CreateUser(ctx, req)
	require.ErrorIs(t, err, service.ErrEmailAlreadyExist)

	req.Email = "other@x.com"
	req.Roles = []string{"Ghost"}
	_, err = e.users.CreateUser(ctx, req)
	require.ErrorIs(t, err, service.ErrInvalidRoles)

	req.Roles = nil
	_, err = e.users.CreateUser(ctx, req)
	require.ErrorIs(t, err, service.ErrInvalidRoles)

	_, err = e.users.GetUserByID(ctx, "missing")
	require.ErrorIs(t, err, service.ErrUserNotFound)

	users, err := e.users.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.seed(t)

	require.NoError(t, e.users.UpdateProfile(ctx, u.ID, " Augusta ", "King"))
	got, err := e.users.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Augusta", got.FirstName)
	require.Equal(t, "King", got.LastName)

	require.ErrorIs(t, e.users.UpdateProfile(ctx, u.ID, "", "King"), domain.ErrValidation)
	require.ErrorIs(t, e.users.UpdateProfile(ctx, "missing", "A", "B"), service.ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.seed(t)

	require.ErrorIs(t, e.users.ChangePassword(ctx, u.ID, "Wrong123!", "Newpass1!"), service.ErrInvalidCredentials)
	require.ErrorIs(t, e.users.ChangePassword(ctx, u.ID, testPassword, "weak"), domain.ErrValidation)
	require.NoError(t, e.users.ChangePassword(ctx, u.ID, testPassword, "Newpass1!"))

	_, err := e.tokens.Login(ctx, testEmail, "Newpass1!")
	require.NoError(t, err)
}

func TestUnlock(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.seed(t)

	for range e.credentials.MaxFailedAccess {
		_, _ = e.tokens.Login(ctx, testEmail, "Wrong123!")
	}
	_, err := e.tokens.Login(ctx, testEmail, testPassword)
	require.ErrorIs(t, err, service.ErrLockedUser)

	require.NoError(t, e.users.Unlock(ctx, u.ID))
	_, err = e.tokens.Login(ctx, testEmail, testPassword)
	require.NoError(t, err)

	require.ErrorIs(t, e.users.Unlock(ctx, "missing"), service.ErrUserNotFound)
}

func TestRoles(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.seed(t)

	t.Run("add validates the catalog", func(t *testing.T) {
		_, err := e.roles.Add(ctx, service.RoleRequest{Name: "Editors", Permissions: []string{"made:up"}})
		require.ErrorIs(t, err, service.ErrInvalidPermissions)

		_, err = e.roles.Add(ctx, service.RoleRequest{Name: "Editors"})
		require.ErrorIs(t, err, service.ErrInvalidPermissions)

		_, err = e.roles.Add(ctx, service.RoleRequest{Name: " ", Permissions: []string{domain.PermReadPolls}})
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	r, err := e.roles.Add(ctx, service.RoleRequest{
		Name:        "Editors",
		Permissions: []string{domain.PermAddPolls, domain.PermUpdatePolls, domain.PermAddPolls},
	})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{domain.PermAddPolls, domain.PermUpdatePolls}, r.Permissions)
	require.NotEmpty(t, r.ConcurrencyStamp)

	t.Run("duplicate name", func(t *testing.T) {
		_, err := e.roles.Add(ctx, service.RoleRequest{Name: "Editors", Permissions: []string{domain.PermReadPolls}})
		require.ErrorIs(t, err, service.ErrRoleAlreadyExists)
	})

	t.Run("update with stale stamp", func(t *testing.T) {
		req := service.RoleRequest{Name: "Editors", Permissions: []string{domain.PermReadPolls}}
		require.NoError(t, e.roles.Update(ctx, r.ID, r.ConcurrencyStamp, req))
		require.ErrorIs(t, e.roles.Update(ctx, r.ID, r.ConcurrencyStamp, req), service.ErrConcurrencyConflict)

		got, err := e.roles.GetRoleByID(ctx, r.ID)
		require.NoError(t, err)
		require.NotEqual(t, r.ConcurrencyStamp, got.ConcurrencyStamp)
		require.Equal(t, []string{domain.PermReadPolls}, got.Permissions)
	})

	t.Run("rename onto an existing name", func(t *testing.T) {
		got, err := e.roles.GetRoleByID(ctx, r.ID)
		require.NoError(t, err)
		err = e.roles.Update(ctx, r.ID, got.ConcurrencyStamp, service.RoleRequest{
			Name: domain.RoleAdmin, Permissions: []string{domain.PermReadPolls},
		})
		require.ErrorIs(t, err, service.ErrRoleAlreadyExists)
	})

	t.Run("toggle hides the role", func(t *testing.T) {
		require.NoError(t, e.roles.ToggleStatus(ctx, r.ID))

		active, err := e.roles.List(ctx, false)
		require.NoError(t, err)
		for _, role := range active {
			require.NotEqual(t, r.ID, role.ID)
		}
		all, err := e.roles.List(ctx, true)
		require.NoError(t, err)
		require.Len(t, all, len(active)+1)

		require.NoError(t, e.roles.ToggleStatus(ctx, r.ID))
	})

	t.Run("missing role", func(t *testing.T) {
		_, err := e.roles.GetRoleByID(ctx, "missing")
		require.ErrorIs(t, err, service.ErrRoleNotFound)
		require.ErrorIs(t, e.roles.ToggleStatus(ctx, "missing"), service.ErrRoleNotFound)
		require.ErrorIs(t, e.roles.Update(ctx, "missing", "s", service.RoleRequest{
			Name: "X", Permissions: []string{domain.PermReadPolls},
		}), service.ErrRoleNotFound)
	})
}

func TestDeletedRoleGrantsNothingAtLogin(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.seed(t)

	member, err := e.store.Roles().GetRoleByName(ctx, domain.RoleMember)
	require.NoError(t, err)
	require.NoError(t, e.roles.ToggleStatus(ctx, member.ID))

	resp, err := e.tokens.Login(ctx, testEmail, testPassword)
	require.NoError(t, err)
	claims, err := e.issuer.Verifier().Verify(resp.Token)
	require.NoError(t, err)
	require.Empty(t, claims.Roles)
	require.Empty(t, claims.Permissions)
}

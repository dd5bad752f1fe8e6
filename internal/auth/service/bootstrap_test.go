package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
	"github.com/aussiebroadwan/surveybasket/internal/auth/service"
)

func bootstrapData() domain.BootstrapData {
	return domain.BootstrapData{
		AdminEmail:     "admin@x.com",
		AdminFirstName: "Root",
		AdminLastName:  "Admin",
		AdminPassword:  "Admin123!",
	}
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	done, err := e.bootstrap.IsBootstrapped(ctx)
	require.NoError(t, err)
	require.False(t, done)

	_, err = e.bootstrap.Bootstrap(ctx, "wrong", bootstrapData())
	require.ErrorIs(t, err, service.ErrBootstrapUnauthorized)

	adminID, err := e.bootstrap.Bootstrap(ctx, "boot", bootstrapData())
	require.NoError(t, err)

	admin, err := e.store.Users().GetUserByID(ctx, adminID)
	require.NoError(t, err)
	require.True(t, admin.EmailConfirmed)
	require.Equal(t, []string{domain.RoleAdmin}, admin.Roles)

	member, err := e.store.Roles().GetDefaultRole(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.RoleMember, member.Name)

	resp, err := e.tokens.Login(ctx, "admin@x.com", "Admin123!")
	require.NoError(t, err)
	claims, err := e.issuer.Verifier().Verify(resp.Token)
	require.NoError(t, err)
	require.ElementsMatch(t, domain.AllPermissions(), []string(claims.Permissions))

	_, err = e.bootstrap.Bootstrap(ctx, "boot", bootstrapData())
	require.ErrorIs(t, err, service.ErrBootstrapAlready)
}

func TestBootstrapDisabledWithoutToken(t *testing.T) {
	e := newEnv(t)
	e.bootstrap.Token = ""
	_, err := e.bootstrap.Bootstrap(context.Background(), "", bootstrapData())
	require.ErrorIs(t, err, service.ErrBootstrapDisabled)
}

func TestBootstrapSeedRoles(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.bootstrap.Roles = []domain.RoleDefinition{
		{Name: domain.RoleAdmin, Permissions: []string{domain.PermReadUsers}},
		{Name: "Voter", Permissions: []string{domain.PermAddVotes}, Default: true},
	}

	_, err := e.bootstrap.Bootstrap(ctx, "boot", bootstrapData())
	require.NoError(t, err)

	def, err := e.store.Roles().GetDefaultRole(ctx)
	require.NoError(t, err)
	require.Equal(t, "Voter", def.Name)
}

func TestBootstrapRequiresAdminRole(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.bootstrap.Roles = []domain.RoleDefinition{{Name: "Voter", Permissions: []string{domain.PermAddVotes}}}

	_, err := e.bootstrap.Bootstrap(ctx, "boot", bootstrapData())
	require.ErrorIs(t, err, service.ErrInvalidRoles)

	empty, err := e.store.Roles().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty, "failed bootstrap rolls back")
}

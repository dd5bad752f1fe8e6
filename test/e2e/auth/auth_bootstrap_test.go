package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/surveybasket/pkg/authsdk"
)

func TestBootstrap(t *testing.T) {
	env := setupAuthContainer(t)
	ctx := t.Context()

	req := authsdk.BootstrapRequest{
		AdminEmail:     adminEmail,
		AdminPassword:  adminPassword,
		AdminFirstName: "Survey",
		AdminLastName:  "Admin",
	}

	_, err := env.Client.Bootstrap(ctx, "wrong-token", req)
	requireAPIError(t, err, authsdk.ErrBootstrapUnauthorized)

	adminID := env.bootstrap(t)

	_, err = env.Client.Bootstrap(ctx, bootstrapToken, req)
	requireAPIError(t, err, authsdk.ErrBootstrapAlready, "bootstrap runs once")

	admin := env.loginAdmin(t)
	require.Equal(t, adminID, admin.UserID())
	require.True(t, admin.HasRole("Admin"))
	require.True(t, admin.HasPermission("roles:update"))

	roles, err := admin.ListRoles(ctx, false)
	require.NoError(t, err)
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	require.ElementsMatch(t, []string{"Admin", "Member"}, names)
}

func TestBootstrapCustomRoles(t *testing.T) {
	env := setupAuthContainer(t)

	_, err := env.Client.Bootstrap(t.Context(), bootstrapToken, authsdk.BootstrapRequest{
		AdminEmail:     adminEmail,
		AdminPassword:  adminPassword,
		AdminFirstName: "Survey",
		AdminLastName:  "Admin",
		Roles: []authsdk.RoleDefinition{
			{Name: "Admin", Permissions: []string{"users:read", "users:add", "roles:read"}},
			{Name: "Voter", Permissions: []string{"polls:read", "votes:add"}, Default: true},
		},
	})
	require.NoError(t, err)

	admin := env.loginAdmin(t)
	require.True(t, admin.HasPermission("users:add"))
	require.False(t, admin.HasPermission("roles:update"))

	require.NoError(t, env.Client.Register(t.Context(), authsdk.RegisterRequest{
		Email: "voter@surveybasket.test", Password: memberPassword, FirstName: "Vo", LastName: "Ter",
	}))
	users, err := admin.ListUsers(t.Context())
	require.NoError(t, err)
	for _, u := range users {
		if u.Email == "voter@surveybasket.test" {
			require.Equal(t, []string{"Voter"}, u.Roles, "registrations join the default role")
		}
	}
}

func TestBootstrapDisabledWithoutToken(t *testing.T) {
	env := startContainer(t, map[string]string{"BOOTSTRAP_TOKEN": ""})

	_, err := env.Client.Bootstrap(t.Context(), "anything", authsdk.BootstrapRequest{
		AdminEmail:     adminEmail,
		AdminPassword:  adminPassword,
		AdminFirstName: "Survey",
		AdminLastName:  "Admin",
	})
	requireAPIError(t, err, authsdk.ErrBootstrapDisabled)
}

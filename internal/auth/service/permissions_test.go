package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
)

func TestResolveUnionsRoles(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	require.NoError(t, e.store.Roles().CreateRole(ctx, domain.Role{ID: "ra", Name: "A", ConcurrencyStamp: "s", Permissions: []string{"p1", "p2"}}))
	require.NoError(t, e.store.Roles().CreateRole(ctx, domain.Role{ID: "rb", Name: "B", ConcurrencyStamp: "s", Permissions: []string{"p2", "p3"}}))

	perms, err := e.resolver.Resolve(ctx, []string{"A", "B"})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"p1", "p2", "p3"}, perms)

	perms, err = e.resolver.Resolve(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, perms)

	perms, err = e.resolver.Resolve(ctx, []string{"Unknown"})
	require.NoError(t, err)
	require.Empty(t, perms)
}

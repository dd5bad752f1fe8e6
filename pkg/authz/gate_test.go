package authz_test

import (
	"sync"
	"testing"

	"github.com/aussiebroadwan/surveybasket/pkg/authz"
	"github.com/stretchr/testify/require"
)

func newGate() *authz.Gate {
	return authz.NewGate(
		[]string{"polls:read", "polls:add", "votes:add"},
		[]string{"Admin", "Member"},
	)
}

func TestAuthorizePermission(t *testing.T) {
	g := newGate()
	p := authz.NewPrincipal("user-1", []string{"Member"}, []string{"polls:read", "votes:add"})

	require.NoError(t, g.Authorize(p, authz.Permission("polls:read")))
	require.NoError(t, g.Authorize(p, authz.Permission("votes:add")))
	require.ErrorIs(t, g.Authorize(p, authz.Permission("polls:add")), authz.ErrForbidden)
}

func TestAuthorizeRole(t *testing.T) {
	g := newGate()
	member := authz.NewPrincipal("user-1", []string{"Member"}, nil)
	admin := authz.NewPrincipal("user-2", []string{"Admin"}, nil)

	require.NoError(t, g.Authorize(member, authz.Role("Member")))
	require.ErrorIs(t, g.Authorize(member, authz.Role("Admin")), authz.ErrForbidden)
	require.NoError(t, g.Authorize(admin, authz.Role("Admin")))
}

func TestAuthorizeKindsDoNotOverlap(t *testing.T) {
	g := authz.NewGate([]string{"Admin"}, []string{"Admin"})

	// A role claim named like a permission must not satisfy the permission.
	p := authz.NewPrincipal("user-1", []string{"Admin"}, nil)
	require.NoError(t, g.Authorize(p, authz.Role("Admin")))
	require.ErrorIs(t, g.Authorize(p, authz.Permission("Admin")), authz.ErrForbidden)
}

func TestAuthorizeUnknownPolicyDenies(t *testing.T) {
	g := newGate()
	p := authz.NewPrincipal("user-1", nil, []string{"made:up"})

	require.False(t, g.Has(authz.Permission("made:up")))
	require.ErrorIs(t, g.Authorize(p, authz.Permission("made:up")), authz.ErrUnknownPolicy)
}

func TestAuthorizeConcurrent(t *testing.T) {
	g := newGate()
	p := authz.NewPrincipal("user-1", []string{"Member"}, []string{"polls:read"})

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, g.Authorize(p, authz.Permission("polls:read")))
		}()
	}
	wg.Wait()
}

func TestRequirementString(t *testing.T) {
	require.Equal(t, "permission:polls:read", authz.Permission("polls:read").String())
	require.Equal(t, "role:Admin", authz.Role("Admin").String())
}

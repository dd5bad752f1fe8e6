package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/surveybasket/pkg/authsdk"
)

func TestLoginAndRefresh(t *testing.T) {
	env := setupAuthContainer(t)
	env.bootstrap(t)
	ctx := t.Context()

	auth, err := env.Client.Login(ctx, adminEmail, adminPassword)
	require.NoError(t, err)
	require.Equal(t, 1800, auth.ExpiresIn)
	require.Equal(t, adminEmail, auth.Email)
	require.False(t, auth.RefreshTokenExpiration.IsZero())

	next, err := env.Client.Refresh(ctx, auth.Token, auth.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, auth.RefreshToken, next.RefreshToken, "refresh rotates the token")

	t.Run("RotatedTokenIsSpent", func(t *testing.T) {
		_, err := env.Client.Refresh(ctx, auth.Token, auth.RefreshToken)
		requireAPIError(t, err, authsdk.ErrInvalidRefreshToken)
	})

	t.Run("ForeignRefreshToken", func(t *testing.T) {
		admin2, err := env.Client.Login(ctx, adminEmail, adminPassword)
		require.NoError(t, err)
		env.createMember(t, env.login(t, adminEmail, adminPassword), "mem@surveybasket.test")
		member, err := env.Client.Login(ctx, "mem@surveybasket.test", memberPassword)
		require.NoError(t, err)

		_, err = env.Client.Refresh(ctx, member.Token, admin2.RefreshToken)
		requireAPIError(t, err, authsdk.ErrInvalidRefreshToken, "a token only refreshes its owner")
	})

	t.Run("GarbageAccessToken", func(t *testing.T) {
		_, err := env.Client.Refresh(ctx, "not-a-jwt", next.RefreshToken)
		requireAPIError(t, err, authsdk.ErrInvalidJwtToken)
	})

	t.Run("Revoke", func(t *testing.T) {
		require.NoError(t, env.Client.RevokeRefreshToken(ctx, next.Token, next.RefreshToken))
		_, err := env.Client.Refresh(ctx, next.Token, next.RefreshToken)
		requireAPIError(t, err, authsdk.ErrInvalidRefreshToken)

		err = env.Client.RevokeRefreshToken(ctx, next.Token, next.RefreshToken)
		requireAPIError(t, err, authsdk.ErrInvalidRefreshToken, "revoking twice fails")
	})
}

func TestSessionRefresh(t *testing.T) {
	env := setupAuthContainer(t)
	env.bootstrap(t)

	session := env.loginAdmin(t)
	oldRefresh := session.RefreshToken()

	require.NoError(t, session.Refresh(t.Context()))
	require.NotEqual(t, oldRefresh, session.RefreshToken())

	me, err := session.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, adminEmail, me.Email)

	require.NoError(t, session.Revoke(t.Context()))
	requireAPIError(t, session.Refresh(t.Context()), authsdk.ErrInvalidRefreshToken)
}

package service_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
	"github.com/aussiebroadwan/surveybasket/internal/auth/service"
	"github.com/aussiebroadwan/surveybasket/pkg/jwtx"
)

func TestMintValidateRoundTrip(t *testing.T) {
	e := newEnv(t)
	u := domain.User{ID: "user-1", Email: testEmail, FirstName: "Ada", LastName: "Lovelace"}

	token, expiresIn, err := e.issuer.Mint(u, []string{"Member"}, []string{"polls:read"})
	require.NoError(t, err)
	require.Equal(t, 1800, expiresIn)

	sub, err := e.issuer.Validate(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", sub)

	claims, err := e.issuer.Verifier().Verify(token)
	require.NoError(t, err)
	require.Equal(t, []string{"polls:read"}, []string(claims.Permissions))
	require.Equal(t, 1800, claims.ExpiresIn())
}

func TestMintUsesFreshJTI(t *testing.T) {
	e := newEnv(t)
	u := domain.User{ID: "user-1"}

	a, _, err := e.issuer.Mint(u, nil, nil)
	require.NoError(t, err)
	b, _, err := e.issuer.Mint(u, nil, nil)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestValidateRejects(t *testing.T) {
	e := newEnv(t)
	token, _, err := e.issuer.Mint(domain.User{ID: "user-1"}, nil, nil)
	require.NoError(t, err)

	t.Run("tampered", func(t *testing.T) {
		parts := strings.Split(token, ".")
		parts[1] = parts[1][:len(parts[1])-2] + "AA"
		_, err := e.issuer.Validate(strings.Join(parts, "."))
		require.ErrorIs(t, err, service.ErrInvalidJwtToken)
	})

	t.Run("other key", func(t *testing.T) {
		other, err := service.NewTokenIssuer([]byte("ffffffffffffffffffffffffffffffff"), jwtx.DefaultIssuer, jwtx.DefaultAudience, e.clock.Now)
		require.NoError(t, err)
		_, err = other.Validate(token)
		require.ErrorIs(t, err, service.ErrInvalidJwtToken)
	})

	t.Run("other audience", func(t *testing.T) {
		other, err := service.NewTokenIssuer(testKey, jwtx.DefaultIssuer, "someone else", e.clock.Now)
		require.NoError(t, err)
		_, err = other.Validate(token)
		require.ErrorIs(t, err, service.ErrInvalidJwtToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := e.issuer.Validate("garbage")
		require.ErrorIs(t, err, service.ErrInvalidJwtToken)
	})

	t.Run("expired", func(t *testing.T) {
		e.clock.Advance(31 * time.Minute)
		_, err := e.issuer.Validate(token)
		require.ErrorIs(t, err, service.ErrInvalidJwtToken)
	})
}

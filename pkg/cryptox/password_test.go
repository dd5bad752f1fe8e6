package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// cheapHasher keeps the argon2 cost low so the suite stays fast.
func cheapHasher(pepper string) *PasswordHasher {
	return &PasswordHasher{Pepper: pepper, Memory: 64, Iterations: 1, Parallelism: 1}
}

func TestHashPassword(t *testing.T) {
	h := cheapHasher("pepper")

	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "Secret1!"},
		{"long password", strings.Repeat("a", 100)},
		{"empty password", ""},
		{"unicode password", "пароль🔒密码"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.Hash(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"), "hash should be in PHC format")
			require.Len(t, strings.Split(hash, "$"), 6)

			require.NoError(t, h.Verify(tt.password, hash))
			require.ErrorIs(t, h.Verify(tt.password+"x", hash), ErrPasswordMismatch)
		})
	}
}

func TestHashPassword_UniqueSalt(t *testing.T) {
	h := cheapHasher("pepper")

	a, err := h.Hash("Secret1!")
	require.NoError(t, err)
	b, err := h.Hash("Secret1!")
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}

func TestVerifyPassword_PepperMatters(t *testing.T) {
	hash, err := cheapHasher("one").Hash("Secret1!")
	require.NoError(t, err)

	require.ErrorIs(t, cheapHasher("two").Verify("Secret1!", hash), ErrPasswordMismatch)
}

func TestVerifyPassword_ReadsParamsFromHash(t *testing.T) {
	hash, err := cheapHasher("p").Hash("Secret1!")
	require.NoError(t, err)

	// A hasher configured with different costs still verifies older hashes.
	require.NoError(t, NewPasswordHasher("p").Verify("Secret1!", hash))
}

func TestVerifyPassword_InvalidFormat(t *testing.T) {
	h := cheapHasher("")

	for _, encoded := range []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=64,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=64,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$garbage$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=64,t=1,p=1$!!!$aGFzaA",
	} {
		err := h.Verify("Secret1!", encoded)
		require.Error(t, err, "encoded %q", encoded)
		require.NotErrorIs(t, err, ErrPasswordMismatch)
	}
}

func TestLoadOrCreatePepper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pepper")

	first, err := LoadOrCreatePepper(path)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := LoadOrCreatePepper(path)
	require.NoError(t, err)
	require.Equal(t, first, second, "pepper should persist across loads")

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadOrCreatePepper_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pepper")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))

	_, err := LoadOrCreatePepper(path)
	require.Error(t, err)
}

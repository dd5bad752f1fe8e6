package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
)

func TestParseSeed(t *testing.T) {
	roles, err := ParseSeed([]byte(`
roles:
  - name: Admin
  - name: Voter
    default: true
    permissions: [polls:read, votes:add]
`))
	require.NoError(t, err)
	require.Len(t, roles, 2)
	require.ElementsMatch(t, domain.AllPermissions(), roles[0].Permissions, "a bare Admin gets the whole catalog")
	require.True(t, roles[1].Default)
	require.Equal(t, []string{domain.PermReadPolls, domain.PermAddVotes}, roles[1].Permissions)
}

func TestParseSeedEmpty(t *testing.T) {
	roles, err := ParseSeed(nil)
	require.NoError(t, err)
	require.Nil(t, roles)

	roles, err = ParseSeed([]byte("roles: []\n"))
	require.NoError(t, err)
	require.Nil(t, roles)
}

func TestParseSeedRejects(t *testing.T) {
	cases := map[string]string{
		"unknown permission": "roles:\n  - name: Admin\n    permissions: [polls:fly]\n",
		"missing admin":      "roles:\n  - name: Member\n    permissions: [polls:read]\n",
		"duplicate name":     "roles:\n  - name: Admin\n  - name: admin\n",
		"two defaults":       "roles:\n  - name: Admin\n    default: true\n  - name: Member\n    default: true\n    permissions: [polls:read]\n",
		"nameless role":      "roles:\n  - name: Admin\n  - permissions: [polls:read]\n",
		"unknown field":      "roles:\n  - name: Admin\n    colour: red\n",
		"not yaml":           "roles: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSeed([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestLoadSeed(t *testing.T) {
	roles, err := LoadSeed("")
	require.NoError(t, err)
	require.Nil(t, roles)

	_, err = LoadSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("roles:\n  - name: Admin\n"), 0o600))
	roles, err = LoadSeed(path)
	require.NoError(t, err)
	require.Len(t, roles, 1)
}

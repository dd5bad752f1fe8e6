package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
)

// Seed is the YAML document read from AUTH_SEED_FILE:
//
//	roles:
//	  - name: Admin
//	    permissions: [polls:read, polls:add]
//	  - name: Member
//	    default: true
//	    permissions: [polls:read, votes:add]
//
// An Admin role without permissions is granted the whole catalog.
type Seed struct {
	Roles []domain.RoleDefinition `yaml:"roles"`
}

// LoadSeed reads role definitions from path. An empty path returns nil so
// bootstrap falls back to the built-in roles.
func LoadSeed(path string) ([]domain.RoleDefinition, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(raw)
}

func ParseSeed(raw []byte) ([]domain.RoleDefinition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var seed Seed
	if err := dec.Decode(&seed); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	seen := make(map[string]bool, len(seed.Roles))
	var hasAdmin bool
	var defaults int
	for i := range seed.Roles {
		def := &seed.Roles[i]
		def.Name = strings.TrimSpace(def.Name)
		if def.Name == "" {
			return nil, fmt.Errorf("seed role %d has no name", i)
		}
		key := strings.ToLower(def.Name)
		if seen[key] {
			return nil, fmt.Errorf("seed role %q is defined twice", def.Name)
		}
		seen[key] = true

		if def.Name == domain.RoleAdmin {
			hasAdmin = true
			if len(def.Permissions) == 0 {
				def.Permissions = domain.AllPermissions()
			}
		}
		if def.Default {
			defaults++
		}
		for _, p := range def.Permissions {
			if !domain.IsKnownPermission(p) {
				return nil, fmt.Errorf("seed role %q: unknown permission %q", def.Name, p)
			}
		}
	}

	if len(seed.Roles) == 0 {
		return nil, nil
	}
	if !hasAdmin {
		return nil, errors.New("seed must define the Admin role")
	}
	if defaults > 1 {
		return nil, errors.New("seed may mark at most one default role")
	}
	return seed.Roles, nil
}

// Package authz decides whether an authenticated principal may proceed.
//
// Decisions are made purely on the decoded access token: no storage is
// consulted. Every policy is built once by NewGate and looked up by
// requirement, so there is no per-request policy construction.
package authz

import (
	"errors"
	"fmt"
)

var (
	// ErrForbidden is returned when a known policy denies the principal.
	ErrForbidden = errors.New("authz: forbidden")

	// ErrUnknownPolicy is returned when no policy exists for a requirement.
	// The gate denies in that case.
	ErrUnknownPolicy = errors.New("authz: unknown policy")
)

// Kind distinguishes fine-grained permission checks from coarse role checks.
type Kind uint8

const (
	KindPermission Kind = iota + 1
	KindRole
)

func (k Kind) String() string {
	switch k {
	case KindPermission:
		return "permission"
	case KindRole:
		return "role"
	default:
		return "unknown"
	}
}

// Requirement names what an endpoint needs.
type Requirement struct {
	Kind Kind
	Name string
}

// Permission requires the named permission claim.
func Permission(name string) Requirement { return Requirement{Kind: KindPermission, Name: name} }

// Role requires the named role claim.
func Role(name string) Requirement { return Requirement{Kind: KindRole, Name: name} }

func (r Requirement) String() string { return r.Kind.String() + ":" + r.Name }

// Principal is the caller as described by its access token.
type Principal struct {
	Subject     string
	roles       map[string]struct{}
	permissions map[string]struct{}
}

// NewPrincipal builds lookup sets from the token's role and permission claims.
func NewPrincipal(subject string, roles, permissions []string) Principal {
	p := Principal{
		Subject:     subject,
		roles:       make(map[string]struct{}, len(roles)),
		permissions: make(map[string]struct{}, len(permissions)),
	}
	for _, r := range roles {
		p.roles[r] = struct{}{}
	}
	for _, perm := range permissions {
		p.permissions[perm] = struct{}{}
	}
	return p
}

func (p Principal) HasRole(name string) bool {
	_, ok := p.roles[name]
	return ok
}

func (p Principal) HasPermission(name string) bool {
	_, ok := p.permissions[name]
	return ok
}

// Policy reports whether p satisfies a single requirement.
type Policy func(p Principal) bool

// Gate holds the static requirement to policy mapping.
type Gate struct {
	policies map[Requirement]Policy
}

// NewGate registers one policy per known permission and role name.
func NewGate(permissions, roles []string) *Gate {
	g := &Gate{policies: make(map[Requirement]Policy, len(permissions)+len(roles))}
	for _, name := range permissions {
		g.policies[Permission(name)] = func(p Principal) bool { return p.HasPermission(name) }
	}
	for _, name := range roles {
		g.policies[Role(name)] = func(p Principal) bool { return p.HasRole(name) }
	}
	return g
}

// Has reports whether a policy is registered for req.
func (g *Gate) Has(req Requirement) bool {
	_, ok := g.policies[req]
	return ok
}

// Authorize returns nil if p satisfies req.
func (g *Gate) Authorize(p Principal, req Requirement) error {
	policy, ok := g.policies[req]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPolicy, req)
	}
	if !policy(p) {
		return fmt.Errorf("%w: requires %s", ErrForbidden, req)
	}
	return nil
}

package jwtx

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// DefaultAccessTokenTTL is the fixed lifetime of every access token.
	DefaultAccessTokenTTL = 30 * time.Minute

	// DefaultRefreshTokenTTL is the lifetime of an opaque refresh token.
	DefaultRefreshTokenTTL = 14 * 24 * time.Hour

	// DefaultIssuer and DefaultAudience are stamped into every token.
	DefaultIssuer   = "SurveyBasketApp"
	DefaultAudience = "SurveyBasketApp Users"
)

// Claims are the access token claims. Roles and permissions are arrays named
// after the singular claim type so that a consumer sees one "role" and one
// "permission" entry per grant.
type Claims struct {
	jwt.RegisteredClaims

	Email       string           `json:"email,omitempty"`
	GivenName   string           `json:"given_name,omitempty"`
	FamilyName  string           `json:"family_name,omitempty"`
	Roles       jwt.ClaimStrings `json:"role,omitempty"`
	Permissions jwt.ClaimStrings `json:"permission,omitempty"`
}

// Identity is the subject data embedded in an access token.
type Identity struct {
	Subject    string
	Email      string
	GivenName  string
	FamilyName string
}

// NewAccessClaims builds claims valid from now for ttl with a fresh jti.
func NewAccessClaims(
	id Identity,
	roles, permissions []string,
	issuer string,
	audience []string,
	ttl time.Duration,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.Subject,
			Audience:  jwt.ClaimStrings(audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Email:       id.Email,
		GivenName:   id.GivenName,
		FamilyName:  id.FamilyName,
		Roles:       jwt.ClaimStrings(roles),
		Permissions: jwt.ClaimStrings(permissions),
	}
}

// NewJTI returns a random UUID for the "jti" claim.
func NewJTI() string {
	return uuid.NewString()
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks if at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil
	}
	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}
	return ErrAudience
}

// ValidateExpiryAt checks exp and nbf against now with a clock skew leeway.
// A token without exp is rejected: every token this service mints carries one.
func (c *Claims) ValidateExpiryAt(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt == nil {
		return ErrExpired
	}
	if !now.Before(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}

// ExpiresIn returns the whole seconds between iat and exp.
func (c *Claims) ExpiresIn() int {
	if c.ExpiresAt == nil || c.IssuedAt == nil {
		return 0
	}
	return int(c.ExpiresAt.Sub(c.IssuedAt.Time) / time.Second)
}

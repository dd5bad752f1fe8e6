package service

import (
	"fmt"
	"time"

	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
	"github.com/aussiebroadwan/surveybasket/pkg/jwtx"
)

// TokenIssuer mints and validates HS256 access tokens. It never touches the
// store, so a disabled user keeps a valid token until it expires.
type TokenIssuer struct {
	signer   jwtx.Signer
	verifier jwtx.Verifier
	issuer   string
	audience []string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenIssuer builds an issuer for key. A nil now uses the wall clock.
func NewTokenIssuer(key []byte, issuer, audience string, now func() time.Time) (*TokenIssuer, error) {
	if now == nil {
		now = time.Now
	}
	signer, err := jwtx.NewSignerHS256(key)
	if err != nil {
		return nil, err
	}
	verifier, err := jwtx.NewVerifierHS256(key, jwtx.VerifyOptions{
		Issuer:   issuer,
		Audience: []string{audience},
		Now:      now,
	})
	if err != nil {
		return nil, err
	}
	return &TokenIssuer{
		signer:   signer,
		verifier: verifier,
		issuer:   issuer,
		audience: []string{audience},
		ttl:      jwtx.DefaultAccessTokenTTL,
		now:      now,
	}, nil
}

// Verifier exposes the validating half for request authentication.
func (i *TokenIssuer) Verifier() jwtx.Verifier { return i.verifier }

// Mint signs an access token for u and returns it with its lifetime in seconds.
func (i *TokenIssuer) Mint(u domain.User, roles, permissions []string) (string, int, error) {
	claims := jwtx.NewAccessClaims(
		jwtx.Identity{Subject: u.ID, Email: u.Email, GivenName: u.FirstName, FamilyName: u.LastName},
		roles,
		permissions,
		i.issuer,
		i.audience,
		i.ttl,
		i.now().UTC(),
	)
	token, err := i.signer.Sign(claims)
	if err != nil {
		return "", 0, fmt.Errorf("sign access token: %w", err)
	}
	return token, int(i.ttl / time.Second), nil
}

// Validate returns the subject of a well-formed, unexpired token issued by
// this service.
func (i *TokenIssuer) Validate(token string) (string, error) {
	claims, err := i.verifier.Verify(token)
	if err != nil || claims.Subject == "" {
		return "", ErrInvalidJwtToken
	}
	return claims.Subject, nil
}

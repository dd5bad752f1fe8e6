package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// MinHMACKeySize is the smallest accepted HS256 key, in bytes.
const MinHMACKeySize = 32

// ErrWeakKey is returned when an HMAC key is shorter than MinHMACKeySize.
var ErrWeakKey = errors.New("jwtx: hmac key too short")

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// HS256Signer signs tokens with a shared symmetric key.
type HS256Signer struct {
	key []byte
}

// NewSignerHS256 copies key and returns a signer for it.
func NewSignerHS256(key []byte) (*HS256Signer, error) {
	if len(key) < MinHMACKeySize {
		return nil, ErrWeakKey
	}
	return &HS256Signer{key: append([]byte(nil), key...)}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign turns claims into a compact JWS.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

package domain

import "time"

// RefreshToken is one entry of a user's refresh token history. Only the
// fingerprint of the opaque value is stored. Entries are revoked, never deleted.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string // base64url SHA-256 of the opaque value
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// IsActive is true while the token is unrevoked and unexpired at now.
func (t RefreshToken) IsActive(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

// IssuedRefreshToken pairs the opaque value, which leaves the process exactly
// once, with its stored record.
type IssuedRefreshToken struct {
	Token  string
	Record RefreshToken
}

// AuthResponse is returned by login and refresh.
type AuthResponse struct {
	ID                     string    `json:"id"`
	Email                  string    `json:"email"`
	FirstName              string    `json:"firstName"`
	LastName               string    `json:"lastName"`
	Token                  string    `json:"token"`
	ExpiresIn              int       `json:"expiresIn"`
	RefreshToken           string    `json:"refreshToken"`
	RefreshTokenExpiration time.Time `json:"refreshTokenExpiration"`
}

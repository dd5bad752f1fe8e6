package domain

import (
	"strings"
	"time"
)

type User struct {
	ID                string
	Email             string
	NormalizedEmail   string // upper-cased, used for uniqueness and lookup
	FirstName         string
	LastName          string
	PasswordHash      string // argon2id PHC string
	EmailConfirmed    bool
	Disabled          bool
	LockoutEnd        *time.Time
	AccessFailedCount int
	Roles             []string // role names, loaded with the user
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsLockedOut reports whether the lockout window is still open at now.
func (u *User) IsLockedOut(now time.Time) bool {
	return u.LockoutEnd != nil && u.LockoutEnd.After(now)
}

// NormalizeEmail folds an address for unique lookups.
func NormalizeEmail(email string) string {
	return strings.ToUpper(strings.TrimSpace(email))
}

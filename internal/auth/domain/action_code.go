package domain

import "time"

// ActionPurpose binds an action code to the one operation it may authorise.
type ActionPurpose string

const (
	PurposeConfirmEmail  ActionPurpose = "confirm_email"
	PurposeResetPassword ActionPurpose = "reset_password"
)

// ActionCode is a single-use secure code, stored by fingerprint.
type ActionCode struct {
	ID        string
	UserID    string
	Purpose   ActionPurpose
	CodeHash  string
	CreatedAt time.Time
	ExpiresAt time.Time
	UsedAt    *time.Time
}

func (c ActionCode) Usable(now time.Time) bool {
	return c.UsedAt == nil && now.Before(c.ExpiresAt)
}

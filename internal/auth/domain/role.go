package domain

import "time"

type Role struct {
	ID               string
	Name             string
	ConcurrencyStamp string // rotated on every write
	IsDefault        bool   // assigned to self-registered users
	IsDeleted        bool   // soft-disabled; grants nothing while set
	Permissions      []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

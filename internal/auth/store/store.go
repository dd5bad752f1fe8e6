package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
)

var (
	ErrNotFound            = errors.New("store: not found")
	ErrAlreadyExists       = errors.New("store: already exists")
	ErrConcurrencyConflict = errors.New("store: concurrency stamp mismatch")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Sub-repositories are methods so a Tx-scoped store hands out
// repos bound to the same transaction, and so nested transactions cannot be
// started by accident.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens
	Roles() Roles
	ActionCodes() ActionCodes

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user with its role names.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks up by normalized email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// ListUsers returns every user ordered by email.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// CreateUser inserts a user. A duplicate email returns ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	UpdateProfile(ctx context.Context, userID, firstName, lastName string) error
	UpdatePasswordHash(ctx context.Context, userID, hash string) error

	// ConfirmEmail flips email_confirmed only if it is still unset. It
	// returns false when the user was already confirmed.
	ConfirmEmail(ctx context.Context, userID string) (bool, error)

	SetDisabled(ctx context.Context, userID string, disabled bool) error

	// RecordFailedAccess increments the failed access counter in place and
	// returns the new value.
	RecordFailedAccess(ctx context.Context, userID string) (int, error)

	// UpdateLockout stores the failed access counter and lockout end.
	UpdateLockout(ctx context.Context, userID string, failedCount int, lockoutEnd *time.Time) error

	// SetUserRoles replaces the user's role memberships.
	SetUserRoles(ctx context.Context, userID string, roleIDs []string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type RefreshTokens interface {
	// CreateRefreshToken appends a token to the user's history.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// ListUserRefreshTokens returns the user's full history, oldest first.
	ListUserRefreshTokens(ctx context.Context, userID string) ([]domain.RefreshToken, error)

	// RevokeRefreshToken sets revoked_at only if it is unset. Returns
	// ErrNotFound if the token is unknown or was already revoked, which is
	// how two concurrent rotations of one token are told apart.
	RevokeRefreshToken(ctx context.Context, id string, at time.Time) error
}

type Roles interface {
	// GetRoleByID returns a role with its permissions.
	GetRoleByID(ctx context.Context, id string) (domain.Role, error)

	GetRoleByName(ctx context.Context, name string) (domain.Role, error)

	// GetDefaultRole returns the first non-deleted role flagged default.
	GetDefaultRole(ctx context.Context) (domain.Role, error)

	// ListRoles returns roles ordered by name, optionally including deleted ones.
	ListRoles(ctx context.Context, includeDeleted bool) ([]domain.Role, error)

	// CreateRole inserts a role and its grants. A duplicate name returns
	// ErrAlreadyExists.
	CreateRole(ctx context.Context, r domain.Role) error

	// UpdateRole rewrites name, stamp and grants only if the stored stamp
	// equals expectedStamp, otherwise ErrConcurrencyConflict.
	UpdateRole(ctx context.Context, r domain.Role, expectedStamp string) error

	// SetRoleDeleted toggles the soft-delete flag and rotates the stamp.
	SetRoleDeleted(ctx context.Context, roleID string, deleted bool, newStamp string) error

	// LoadRolePermissions returns the distinct permissions granted by the
	// named, non-deleted roles.
	LoadRolePermissions(ctx context.Context, roleNames []string) ([]string, error)

	// IsEmpty returns true if there are no roles.
	IsEmpty(ctx context.Context) (bool, error)
}

type ActionCodes interface {
	CreateActionCode(ctx context.Context, c domain.ActionCode) error

	// GetActionCodeByHash fetches a code by fingerprint, used or not.
	GetActionCodeByHash(ctx context.Context, hash string) (domain.ActionCode, error)

	// MarkActionCodeUsed sets used_at only if unset, otherwise ErrNotFound.
	MarkActionCodeUsed(ctx context.Context, id string, at time.Time) error

	// SupersedeActionCodes marks every unused code of that purpose as used.
	SupersedeActionCodes(ctx context.Context, userID string, purpose domain.ActionPurpose, at time.Time) error

	// DeleteStaleActionCodes removes codes that expired or were used before cutoff.
	DeleteStaleActionCodes(ctx context.Context, cutoff time.Time) (int64, error)
}

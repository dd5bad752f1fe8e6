package service

import "errors"

// Expected failures. Handlers translate these into wire errors; anything else
// is an internal error.
var (
	ErrInvalidCredentials     = errors.New("invalid email/password")
	ErrDisabledUser           = errors.New("user is disabled")
	ErrLockedUser             = errors.New("user is locked out")
	ErrEmailNotConfirmed      = errors.New("email is not confirmed")
	ErrInvalidJwtToken        = errors.New("invalid jwt token")
	ErrInvalidRefreshToken    = errors.New("invalid refresh token")
	ErrInvalidCode            = errors.New("invalid code")
	ErrDuplicatedConfirmation = errors.New("email already confirmed")
	ErrInvalidCreateAccount   = errors.New("invalid create account")
	ErrEmailAlreadyExist      = errors.New("email already exists")
	ErrInvalidRoles           = errors.New("invalid roles")

	ErrUserNotFound        = errors.New("user not found")
	ErrRoleNotFound        = errors.New("role not found")
	ErrRoleAlreadyExists   = errors.New("role already exists")
	ErrInvalidPermissions  = errors.New("invalid permissions")
	ErrConcurrencyConflict = errors.New("role was modified concurrently")

	ErrBootstrapAlready      = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
	ErrBootstrapDisabled     = errors.New("bootstrap is disabled")
)

package authsdk

import "time"

// ============================================================================
// Token Types
// ============================================================================

// LoginRequest is the body of POST /v1/auth.
type LoginRequest struct {
	Email    string `json:"email" example:"ada@example.com"`
	Password string `json:"password" example:"Secret1!"`
}

// RefreshTokenRequest is the body of POST /v1/auth/refresh and
// POST /v1/auth/revoke-refresh-token. Token is the caller's access token and
// must not have expired yet.
type RefreshTokenRequest struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse is returned by login and refresh.
type AuthResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`

	// Token is the HS256 signed access token.
	Token string `json:"token"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int `json:"expiresIn" example:"1800"`

	// RefreshToken is opaque and single use.
	RefreshToken           string    `json:"refreshToken"`
	RefreshTokenExpiration time.Time `json:"refreshTokenExpiration"`
}

// ============================================================================
// Account Types
// ============================================================================

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type ConfirmEmailRequest struct {
	UserID string `json:"userId"`
	Code   string `json:"code"`
}

// EmailRequest is the body of resend-confirmation-email and forget-password.
type EmailRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// ============================================================================
// Profile Types
// ============================================================================

// UserProfileResponse is returned by GET /v1/me.
type UserProfileResponse struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ============================================================================
// User Administration Types
// ============================================================================

type UserResponse struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	FirstName  string   `json:"firstName"`
	LastName   string   `json:"lastName"`
	IsDisabled bool     `json:"isDisabled"`
	IsLocked   bool     `json:"isLocked"`
	Roles      []string `json:"roles"`
}

type CreateUserRequest struct {
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Roles     []string `json:"roles"`
}

// ============================================================================
// Role Types
// ============================================================================

// RoleResponse is a role as listed by GET /v1/roles.
type RoleResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsDeleted bool   `json:"isDeleted"`
}

// RoleDetailResponse adds grants and the stamp needed to update the role.
type RoleDetailResponse struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	IsDeleted        bool     `json:"isDeleted"`
	ConcurrencyStamp string   `json:"concurrencyStamp"`
	Permissions      []string `json:"permissions"`
}

type RoleRequest struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// UpdateRoleRequest carries the stamp read with the role. A stale stamp is
// rejected with Role.ConcurrencyConflict.
type UpdateRoleRequest struct {
	Name             string   `json:"name"`
	Permissions      []string `json:"permissions"`
	ConcurrencyStamp string   `json:"concurrencyStamp"`
}

// ============================================================================
// Bootstrap Types
// ============================================================================

// BootstrapRequest is the one-time setup payload. The token may also be sent
// in the X-Bootstrap-Token header.
type BootstrapRequest struct {
	Token          string `json:"token,omitempty"`
	AdminEmail     string `json:"adminEmail"`
	AdminPassword  string `json:"adminPassword"`
	AdminFirstName string `json:"adminFirstName"`
	AdminLastName  string `json:"adminLastName"`

	// Roles replaces the built-in Admin and Member roles when set. One of
	// them must be named Admin.
	Roles []RoleDefinition `json:"roles,omitempty"`
}

type RoleDefinition struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
	Default     bool     `json:"default,omitempty"`
}

type BootstrapResponse struct {
	AdminUserID string `json:"adminUserId"`
}

// ============================================================================
// Health Types
// ============================================================================

type HealthResponse struct {
	// Status is "ok" or "degraded".
	Status string `json:"status"`

	Uptime  string `json:"uptime,omitempty"`
	Version string `json:"version,omitempty"`

	Checks *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
}

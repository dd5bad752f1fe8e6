package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// Permission names checked locally before admin calls.
const (
	PermReadUsers   = "users:read"
	PermAddUsers    = "users:add"
	PermUpdateUsers = "users:update"
	PermReadRoles   = "roles:read"
	PermAddRoles    = "roles:add"
	PermUpdateRoles = "roles:update"
)

// ============================================================================
// Users
// ============================================================================

// ListUsers requires users:read.
func (s *Session) ListUsers(ctx context.Context) ([]UserResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/users", nil, PermReadUsers)
	if err != nil {
		return nil, err
	}

	var users []UserResponse
	if err := decodeJSON(resp, &users, http.StatusOK); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser requires users:read.
func (s *Session) GetUser(ctx context.Context, id string) (*UserResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(id), nil, PermReadUsers)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser adds a confirmed user. Requires users:add.
func (s *Session) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/users", req, PermAddUsers)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusCreated); err != nil {
		return nil, err
	}
	return &user, nil
}

// ToggleUserStatus enables or disables a user. Requires users:update.
func (s *Session) ToggleUserStatus(ctx context.Context, id string) error {
	return s.put(ctx, "/v1/users/"+url.PathEscape(id)+"/toggle-status", nil, PermUpdateUsers)
}

// UnlockUser clears a lockout. Requires users:update.
func (s *Session) UnlockUser(ctx context.Context, id string) error {
	return s.put(ctx, "/v1/users/"+url.PathEscape(id)+"/unlock", nil, PermUpdateUsers)
}

// ============================================================================
// Roles
// ============================================================================

// ListRoles requires roles:read. Deleted roles are included when
// includeDisabled is set.
func (s *Session) ListRoles(ctx context.Context, includeDisabled bool) ([]RoleResponse, error) {
	path := "/v1/roles"
	if includeDisabled {
		path += "?includeDisabled=true"
	}
	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil, PermReadRoles)
	if err != nil {
		return nil, err
	}

	var roles []RoleResponse
	if err := decodeJSON(resp, &roles, http.StatusOK); err != nil {
		return nil, err
	}
	return roles, nil
}

// GetRole requires roles:read.
func (s *Session) GetRole(ctx context.Context, id string) (*RoleDetailResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/roles/"+url.PathEscape(id), nil, PermReadRoles)
	if err != nil {
		return nil, err
	}

	var role RoleDetailResponse
	if err := decodeJSON(resp, &role, http.StatusOK); err != nil {
		return nil, err
	}
	return &role, nil
}

// CreateRole requires roles:add.
func (s *Session) CreateRole(ctx context.Context, req RoleRequest) (*RoleDetailResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/roles", req, PermAddRoles)
	if err != nil {
		return nil, err
	}

	var role RoleDetailResponse
	if err := decodeJSON(resp, &role, http.StatusCreated); err != nil {
		return nil, err
	}
	return &role, nil
}

// UpdateRole requires roles:update.
func (s *Session) UpdateRole(ctx context.Context, id string, req UpdateRoleRequest) error {
	return s.put(ctx, "/v1/roles/"+url.PathEscape(id), req, PermUpdateRoles)
}

// ToggleRoleStatus soft-deletes or restores a role. Requires roles:update.
func (s *Session) ToggleRoleStatus(ctx context.Context, id string) error {
	return s.put(ctx, "/v1/roles/"+url.PathEscape(id)+"/toggle-status", nil, PermUpdateRoles)
}

func (s *Session) put(ctx context.Context, path string, body any, perms ...string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPut, path, body, perms...)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusNoContent)
}

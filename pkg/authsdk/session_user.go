package authsdk

import (
	"context"
	"net/http"
)

// Me returns the caller's profile.
func (s *Session) Me(ctx context.Context) (*UserProfileResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/me", nil)
	if err != nil {
		return nil, err
	}

	var profile UserProfileResponse
	if err := decodeJSON(resp, &profile, http.StatusOK); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile changes the caller's names.
func (s *Session) UpdateProfile(ctx context.Context, req UpdateProfileRequest) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPut, "/v1/me/info", req)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusNoContent)
}

// ChangePassword replaces the caller's password. Existing tokens stay valid.
func (s *Session) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPut, "/v1/me/change-password", ChangePasswordRequest{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
	})
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusNoContent)
}

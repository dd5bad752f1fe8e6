package authsdk

import (
	"context"
	"net/http"
)

// Login exchanges email and password for a token pair.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	return c.requestToken(ctx, "/v1/auth", LoginRequest{Email: email, Password: password})
}

// Refresh rotates refreshToken. accessToken identifies the caller and must
// not have expired.
func (c *SDKClient) Refresh(ctx context.Context, accessToken, refreshToken string) (*AuthResponse, error) {
	return c.requestToken(ctx, "/v1/auth/refresh", RefreshTokenRequest{
		Token:        accessToken,
		RefreshToken: refreshToken,
	})
}

// RevokeRefreshToken ends refreshToken.
func (c *SDKClient) RevokeRefreshToken(ctx context.Context, accessToken, refreshToken string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/revoke-refresh-token", RefreshTokenRequest{
		Token:        accessToken,
		RefreshToken: refreshToken,
	}, nil)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusOK)
}

func (c *SDKClient) requestToken(ctx context.Context, path string, body any) (*AuthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, path, body, nil)
	if err != nil {
		return nil, err
	}

	var auth AuthResponse
	if err := decodeJSON(resp, &auth, http.StatusOK); err != nil {
		return nil, err
	}
	return &auth, nil
}

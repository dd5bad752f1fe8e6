package authsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the Survey Basket auth API. It provides the
// unauthenticated operations and creates authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// CheckPermissions makes a Session refuse calls locally when its access
	// token lacks the permission an endpoint needs. Tests turn it off to
	// exercise the server-side check.
	CheckPermissions bool
}

// NewSDKClient creates a client with local permission checks enabled.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		CheckPermissions: true,
	}
}

// AuthenticateWithPassword logs in and returns a session holding the token
// pair.
func (c *SDKClient) AuthenticateWithPassword(ctx context.Context, email, password string) (*Session, error) {
	auth, err := c.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return newSession(c, auth), nil
}

// NewSessionFromTokens creates a session from a previously obtained pair.
// The access token must still be valid for the session to refresh it.
func (c *SDKClient) NewSessionFromTokens(accessToken, refreshToken string, expiresIn int) *Session {
	return newSession(c, &AuthResponse{
		Token:        accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	})
}

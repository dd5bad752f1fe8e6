package authsdk

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/surveybasket/pkg/jwtx"
)

// refreshBuffer is how long before expiry a session rotates its tokens. The
// server only refreshes while the access token is still valid.
const refreshBuffer = 30 * time.Second

// Session represents an authenticated session with automatic token refresh.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	userID       string
	accessToken  string
	refreshToken string
	expiresAt    time.Time
	roles        map[string]bool
	permissions  map[string]bool
}

func newSession(client *SDKClient, auth *AuthResponse) *Session {
	s := &Session{client: client}
	s.apply(auth)
	return s
}

// apply stores a token pair. The caller holds the write lock or owns s.
func (s *Session) apply(auth *AuthResponse) {
	s.accessToken = auth.Token
	s.refreshToken = auth.RefreshToken
	s.expiresAt = time.Now().Add(time.Duration(auth.ExpiresIn)*time.Second - refreshBuffer)
	s.userID = auth.ID

	// The claims are only read for local checks; the server verifies.
	var claims jwtx.Claims
	if _, _, err := jwt.NewParser().ParseUnverified(auth.Token, &claims); err == nil {
		if s.userID == "" {
			s.userID = claims.Subject
		}
		s.roles = toSet(claims.Roles)
		s.permissions = toSet(claims.Permissions)
	} else {
		s.roles = map[string]bool{}
		s.permissions = map[string]bool{}
	}
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// Revoke revokes the current refresh token, ending this session.
func (s *Session) Revoke(ctx context.Context) error {
	s.mu.RLock()
	accessToken := s.accessToken
	refreshToken := s.refreshToken
	s.mu.RUnlock()

	if refreshToken == "" {
		return fmt.Errorf("no refresh token to revoke")
	}
	return s.client.RevokeRefreshToken(ctx, accessToken, refreshToken)
}

// Refresh rotates the token pair now, regardless of expiry.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Session) refreshLocked(ctx context.Context) error {
	if s.refreshToken == "" {
		return fmt.Errorf("no refresh token available")
	}
	auth, err := s.client.Refresh(ctx, s.accessToken, s.refreshToken)
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}
	s.apply(auth)
	return nil
}

// getValidToken returns the access token, rotating the pair first when it is
// within refreshBuffer of expiring.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed while we waited.
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}
	if err := s.refreshLocked(ctx); err != nil {
		return "", err
	}
	return s.accessToken, nil
}

func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// AccessToken returns the current access token without checking expiration.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// HasPermission reports whether the access token carries the permission claim.
func (s *Session) HasPermission(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permissions[name]
}

func (s *Session) HasRole(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roles[name]
}

// checkPermissions returns an error naming the missing permissions when local
// checks are enabled.
func (s *Session) checkPermissions(required ...string) error {
	if !s.client.CheckPermissions || len(required) == 0 {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var missing []string
	for _, p := range required {
		if !s.permissions[p] {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required permission(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

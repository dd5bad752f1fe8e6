package httpx

import (
	"context"

	"github.com/aussiebroadwan/surveybasket/pkg/authz"
	"github.com/aussiebroadwan/surveybasket/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyUserID    ctxKey = "user_id"
	CtxKeyClaims    ctxKey = "claims"
	CtxKeyPrincipal ctxKey = "principal"
	CtxKeyToken     ctxKey = "token"
)

// UserIDFromContext returns the subject of the verified access token.
func UserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeyUserID).(string)
	return v, ok && v != ""
}

// ClaimsFromContext returns the verified access token claims.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	v, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return v, ok
}

// PrincipalFromContext returns the authorization view of the caller.
func PrincipalFromContext(ctx context.Context) (authz.Principal, bool) {
	v, ok := ctx.Value(CtxKeyPrincipal).(authz.Principal)
	return v, ok
}

// BearerTokenFromContext returns the raw access token the caller presented.
func BearerTokenFromContext(ctx context.Context) string {
	v, _ := ctx.Value(CtxKeyToken).(string)
	return v
}

// ContextWithAuth injects verified claims for downstream handlers.
func ContextWithAuth(ctx context.Context, raw string, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	ctx = context.WithValue(ctx, CtxKeyPrincipal, authz.NewPrincipal(c.Subject, c.Roles, c.Permissions))
	ctx = context.WithValue(ctx, CtxKeyToken, raw)
	return ctx
}

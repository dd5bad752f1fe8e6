package service

import (
	"context"

	"github.com/aussiebroadwan/surveybasket/internal/auth/store"
)

// PermissionResolver expands role names into their granted permissions. It
// reads the store on every call so grant changes apply at the next login or
// refresh.
type PermissionResolver struct {
	Store store.Store
}

// Resolve returns the union of permissions granted to roleNames. Unknown and
// deleted roles contribute nothing.
func (r *PermissionResolver) Resolve(ctx context.Context, roleNames []string) ([]string, error) {
	if len(roleNames) == 0 {
		return nil, nil
	}
	return r.Store.Roles().LoadRolePermissions(ctx, roleNames)
}

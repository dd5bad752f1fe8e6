package sqlq

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
	"github.com/aussiebroadwan/surveybasket/internal/auth/store"
)

const roleColumns = `id, name, concurrency_stamp, is_default, is_deleted, created_at, updated_at`

type rolesRepo struct {
	q *queries
}

func scanRole(row rowScanner) (domain.Role, error) {
	var r domain.Role
	if err := row.Scan(&r.ID, &r.Name, &r.ConcurrencyStamp, &r.IsDefault, &r.IsDeleted, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return domain.Role{}, err
	}
	r.CreatedAt, r.UpdatedAt = r.CreatedAt.UTC(), r.UpdatedAt.UTC()
	return r, nil
}

func (r *rolesRepo) getOne(ctx context.Context, where string, args ...any) (domain.Role, error) {
	role, err := scanRole(r.q.queryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE `+where, args...))
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	if role.Permissions, err = r.grants(ctx, role.ID); err != nil {
		return domain.Role{}, err
	}
	return role, nil
}

func (r *rolesRepo) grants(ctx context.Context, roleID string) ([]string, error) {
	rows, err := r.q.query(ctx,
		`SELECT permission FROM role_permissions WHERE role_id = ? ORDER BY permission`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	perms := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

func (r *rolesRepo) GetRoleByID(ctx context.Context, id string) (domain.Role, error) {
	return r.getOne(ctx, `id = ?`, id)
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	return r.getOne(ctx, `name = ?`, name)
}

func (r *rolesRepo) GetDefaultRole(ctx context.Context) (domain.Role, error) {
	return r.getOne(ctx, `is_default = ? AND is_deleted = ? ORDER BY name LIMIT 1`, true, false)
}

func (r *rolesRepo) ListRoles(ctx context.Context, includeDeleted bool) ([]domain.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles`
	var args []any
	if !includeDeleted {
		query += ` WHERE is_deleted = ?`
		args = append(args, false)
	}
	query += ` ORDER BY name`

	rows, err := r.q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	_ = rows.Close()

	for i := range roles {
		if roles[i].Permissions, err = r.grants(ctx, roles[i].ID); err != nil {
			return nil, err
		}
	}
	return roles, nil
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	now := utc(time.Now())
	_, err := r.q.exec(ctx, `
		INSERT INTO roles (`+roleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		role.ID, role.Name, role.ConcurrencyStamp, role.IsDefault, role.IsDeleted, now, now,
	)
	if err != nil {
		return r.q.mapWriteErr(err)
	}
	return r.insertGrants(ctx, role.ID, role.Permissions)
}

func (r *rolesRepo) insertGrants(ctx context.Context, roleID string, perms []string) error {
	seen := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		if _, err := r.q.exec(ctx,
			`INSERT INTO role_permissions (role_id, permission) VALUES (?, ?)`, roleID, p); err != nil {
			return fmt.Errorf("grant %q: %w", p, r.q.mapWriteErr(err))
		}
	}
	return nil
}

func (r *rolesRepo) UpdateRole(ctx context.Context, role domain.Role, expectedStamp string) error {
	err := r.q.execOne(ctx, `
		UPDATE roles SET name = ?, concurrency_stamp = ?, updated_at = ?
		WHERE id = ? AND concurrency_stamp = ?`,
		role.Name, role.ConcurrencyStamp, utc(time.Now()), role.ID, expectedStamp)
	if errors.Is(err, store.ErrNotFound) {
		if _, getErr := r.GetRoleByID(ctx, role.ID); getErr != nil {
			return getErr
		}
		return store.ErrConcurrencyConflict
	}
	if err != nil {
		return r.q.mapWriteErr(err)
	}

	if _, err := r.q.exec(ctx, `DELETE FROM role_permissions WHERE role_id = ?`, role.ID); err != nil {
		return err
	}
	return r.insertGrants(ctx, role.ID, role.Permissions)
}

func (r *rolesRepo) SetRoleDeleted(ctx context.Context, roleID string, deleted bool, newStamp string) error {
	return r.q.execOne(ctx,
		`UPDATE roles SET is_deleted = ?, concurrency_stamp = ?, updated_at = ? WHERE id = ?`,
		deleted, newStamp, utc(time.Now()), roleID)
}

func (r *rolesRepo) LoadRolePermissions(ctx context.Context, roleNames []string) ([]string, error) {
	if len(roleNames) == 0 {
		return []string{}, nil
	}

	args := append([]any{false}, toArgs(roleNames)...)
	rows, err := r.q.query(ctx, `
		SELECT DISTINCT rp.permission
		FROM role_permissions rp
		JOIN roles ro ON ro.id = rp.role_id
		WHERE ro.is_deleted = ? AND ro.name IN (`+placeholders(len(roleNames))+`)`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	perms := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Sort(perms)
	return perms, nil
}

func (r *rolesRepo) IsEmpty(ctx context.Context) (bool, error) {
	n, err := r.q.count(ctx, `SELECT COUNT(*) FROM roles`)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

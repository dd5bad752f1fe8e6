package sqlq

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
	"github.com/aussiebroadwan/surveybasket/internal/auth/store"
)

const userColumns = `id, email, normalized_email, first_name, last_name, password_hash,
	email_confirmed, disabled, lockout_end, access_failed_count, created_at, updated_at`

type usersRepo struct {
	q *queries
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u          domain.User
		lockoutEnd sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.NormalizedEmail, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.EmailConfirmed, &u.Disabled, &lockoutEnd, &u.AccessFailedCount, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	u.LockoutEnd = mapNullTimePtr(lockoutEnd)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

func (r *usersRepo) getOne(ctx context.Context, where string, arg any) (domain.User, error) {
	u, err := scanUser(r.q.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	if u.Roles, err = r.roleNames(ctx, u.ID); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.getOne(ctx, `id = ?`, id)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `normalized_email = ?`, domain.NormalizeEmail(email))
}

// roleNames returns the user's active role names.
func (r *usersRepo) roleNames(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.q.query(ctx, `
		SELECT ro.name FROM user_roles ur
		JOIN roles ro ON ro.id = ur.role_id
		WHERE ur.user_id = ? AND ro.is_deleted = ?
		ORDER BY ro.name`, userID, false)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.q.query(ctx, `SELECT `+userColumns+` FROM users ORDER BY normalized_email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	index := make(map[string]int)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		index[u.ID] = len(users)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	memberships, err := r.q.query(ctx, `
		SELECT ur.user_id, ro.name FROM user_roles ur
		JOIN roles ro ON ro.id = ur.role_id
		WHERE ro.is_deleted = ?
		ORDER BY ro.name`, false)
	if err != nil {
		return nil, err
	}
	defer memberships.Close()

	for memberships.Next() {
		var userID, name string
		if err := memberships.Scan(&userID, &name); err != nil {
			return nil, err
		}
		if i, ok := index[userID]; ok {
			users[i].Roles = append(users[i].Roles, name)
		}
	}
	return users, memberships.Err()
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := utc(time.Now())
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	_, err := r.q.exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, domain.NormalizeEmail(u.Email), u.FirstName, u.LastName, u.PasswordHash,
		u.EmailConfirmed, u.Disabled, mapOptionalTime(u.LockoutEnd), u.AccessFailedCount,
		utc(u.CreatedAt), utc(u.CreatedAt),
	)
	return r.q.mapWriteErr(err)
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID, firstName, lastName string) error {
	return r.q.execOne(ctx,
		`UPDATE users SET first_name = ?, last_name = ?, updated_at = ? WHERE id = ?`,
		firstName, lastName, utc(time.Now()), userID)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	return r.q.execOne(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, utc(time.Now()), userID)
}

func (r *usersRepo) ConfirmEmail(ctx context.Context, userID string) (bool, error) {
	res, err := r.q.exec(ctx,
		`UPDATE users SET email_confirmed = ?, updated_at = ? WHERE id = ? AND email_confirmed = ?`,
		true, utc(time.Now()), userID, false)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 1 {
		return true, nil
	}

	// Distinguish "already confirmed" from "no such user".
	exists, err := r.q.count(ctx, `SELECT COUNT(*) FROM users WHERE id = ?`, userID)
	if err != nil {
		return false, err
	}
	if exists == 0 {
		return false, store.ErrNotFound
	}
	return false, nil
}

func (r *usersRepo) SetDisabled(ctx context.Context, userID string, disabled bool) error {
	return r.q.execOne(ctx,
		`UPDATE users SET disabled = ?, updated_at = ? WHERE id = ?`,
		disabled, utc(time.Now()), userID)
}

func (r *usersRepo) RecordFailedAccess(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.q.queryRow(ctx,
		`UPDATE users SET access_failed_count = access_failed_count + 1, updated_at = ? WHERE id = ? RETURNING access_failed_count`,
		utc(time.Now()), userID).Scan(&count)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return count, nil
}

func (r *usersRepo) UpdateLockout(ctx context.Context, userID string, failedCount int, lockoutEnd *time.Time) error {
	return r.q.execOne(ctx,
		`UPDATE users SET access_failed_count = ?, lockout_end = ?, updated_at = ? WHERE id = ?`,
		failedCount, mapOptionalTime(lockoutEnd), utc(time.Now()), userID)
}

func (r *usersRepo) SetUserRoles(ctx context.Context, userID string, roleIDs []string) error {
	if _, err := r.q.exec(ctx, `DELETE FROM user_roles WHERE user_id = ?`, userID); err != nil {
		return err
	}
	for _, roleID := range roleIDs {
		if _, err := r.q.exec(ctx,
			`INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)`, userID, roleID); err != nil {
			return r.q.mapWriteErr(err)
		}
	}
	return nil
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	n, err := r.q.count(ctx, `SELECT COUNT(*) FROM users`)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

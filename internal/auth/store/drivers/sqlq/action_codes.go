package sqlq

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
)

type actionCodesRepo struct {
	q *queries
}

func (r *actionCodesRepo) CreateActionCode(ctx context.Context, c domain.ActionCode) error {
	_, err := r.q.exec(ctx, `
		INSERT INTO action_codes (id, user_id, purpose, code_hash, created_at, expires_at, used_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, string(c.Purpose), c.CodeHash, utc(c.CreatedAt), utc(c.ExpiresAt), mapOptionalTime(c.UsedAt),
	)
	return r.q.mapWriteErr(err)
}

func (r *actionCodesRepo) GetActionCodeByHash(ctx context.Context, hash string) (domain.ActionCode, error) {
	var (
		c       domain.ActionCode
		purpose string
		usedAt  sql.NullTime
	)
	err := r.q.queryRow(ctx, `
		SELECT id, user_id, purpose, code_hash, created_at, expires_at, used_at
		FROM action_codes WHERE code_hash = ?`, hash,
	).Scan(&c.ID, &c.UserID, &purpose, &c.CodeHash, &c.CreatedAt, &c.ExpiresAt, &usedAt)
	if err != nil {
		return domain.ActionCode{}, mapNotFound(err)
	}
	c.Purpose = domain.ActionPurpose(purpose)
	c.CreatedAt, c.ExpiresAt = c.CreatedAt.UTC(), c.ExpiresAt.UTC()
	c.UsedAt = mapNullTimePtr(usedAt)
	return c, nil
}

func (r *actionCodesRepo) MarkActionCodeUsed(ctx context.Context, id string, at time.Time) error {
	return r.q.execOne(ctx,
		`UPDATE action_codes SET used_at = ? WHERE id = ? AND used_at IS NULL`,
		utc(at), id)
}

func (r *actionCodesRepo) SupersedeActionCodes(
	ctx context.Context,
	userID string,
	purpose domain.ActionPurpose,
	at time.Time,
) error {
	_, err := r.q.exec(ctx,
		`UPDATE action_codes SET used_at = ? WHERE user_id = ? AND purpose = ? AND used_at IS NULL`,
		utc(at), userID, string(purpose))
	return err
}

func (r *actionCodesRepo) DeleteStaleActionCodes(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.exec(ctx,
		`DELETE FROM action_codes WHERE expires_at < ? OR (used_at IS NOT NULL AND used_at < ?)`,
		utc(cutoff), utc(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

package sqlq

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
)

type refreshTokensRepo struct {
	q *queries
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.q.exec(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token_hash, created_at, expires_at, revoked_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.TokenHash, utc(t.CreatedAt), utc(t.ExpiresAt), mapOptionalTime(t.RevokedAt),
	)
	return r.q.mapWriteErr(err)
}

func (r *refreshTokensRepo) ListUserRefreshTokens(ctx context.Context, userID string) ([]domain.RefreshToken, error) {
	rows, err := r.q.query(ctx, `
		SELECT id, user_id, token_hash, created_at, expires_at, revoked_at
		FROM refresh_tokens WHERE user_id = ?
		ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RefreshToken
	for rows.Next() {
		var (
			t         domain.RefreshToken
			revokedAt sql.NullTime
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.CreatedAt, &t.ExpiresAt, &revokedAt); err != nil {
			return nil, err
		}
		t.CreatedAt, t.ExpiresAt = t.CreatedAt.UTC(), t.ExpiresAt.UTC()
		t.RevokedAt = mapNullTimePtr(revokedAt)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, id string, at time.Time) error {
	return r.q.execOne(ctx,
		`UPDATE refresh_tokens SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL`,
		utc(at), id)
}

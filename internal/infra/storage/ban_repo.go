package storage

import (
	"context"
	"database/sql"

	pq "github.com/lib/pq"
)

type BanRepo struct{ db *sql.DB }

func NewBanRepo(db *sql.DB) *BanRepo { return &BanRepo{db: db} }

// Insert guarda el ban junto al snapshot de roles del baneado.
func (r *BanRepo) Insert(ctx context.Context, b BanRecord) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
INSERT INTO bans (banner_id, user_id, reason, role_ids, role_names)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`, b.BannerID, b.UserID, b.Reason, pq.Array(b.RoleIDs), pq.Array(b.RoleNames)).Scan(&id)
	return id, err
}

func (r *BanRepo) CountForUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bans WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

// LastForUser: el ban más reciente, con su snapshot de roles.
func (r *BanRepo) LastForUser(ctx context.Context, userID string) (BanRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, banner_id, user_id, reason, role_ids, role_names, created_at
  FROM bans
 WHERE user_id = $1
 ORDER BY created_at DESC
 LIMIT 1
`, userID)
	var b BanRecord
	err := row.Scan(&b.ID, &b.BannerID, &b.UserID, &b.Reason,
		pq.Array(&b.RoleIDs), pq.Array(&b.RoleNames), &b.CreatedAt)
	if err == sql.ErrNoRows {
		return BanRecord{}, ErrNotFound
	}
	return b, err
}

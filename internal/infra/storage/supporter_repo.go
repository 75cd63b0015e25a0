package storage

import (
	"context"
	"database/sql"
)

type SupporterRepo struct{ db *sql.DB }

func NewSupporterRepo(db *sql.DB) *SupporterRepo { return &SupporterRepo{db: db} }

// GetByDiscordID: devuelve ErrNotFound si nunca fue parte del equipo.
func (r *SupporterRepo) GetByDiscordID(ctx context.Context, discordID string) (Supporter, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, discord_id, left_at
  FROM supporters
 WHERE discord_id = $1
`, discordID)
	var s Supporter
	err := row.Scan(&s.ID, &s.DiscordID, &s.LeftAt)
	if err == sql.ErrNoRows {
		return Supporter{}, ErrNotFound
	}
	return s, err
}

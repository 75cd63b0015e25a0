package storage

import (
	"context"
	"database/sql"
)

type DeletionRepo struct{ db *sql.DB }

func NewDeletionRepo(db *sql.DB) *DeletionRepo { return &DeletionRepo{db: db} }

func (r *DeletionRepo) Insert(ctx context.Context, d MessageDeletion) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO message_deletions
  (content, reference_id, msg_created_at, author_id, channel_id,
   attachment_count, sticker_count, flags, log_message_url, deleted_by)
VALUES
  ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`, d.Content, d.ReferenceID, d.CreatedAt, d.AuthorID, d.ChannelID,
		d.AttachmentCount, d.StickerCount, d.Flags, d.LogMessageURL, d.DeletedBy)
	return err
}

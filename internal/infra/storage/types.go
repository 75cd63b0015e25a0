package storage

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// BanRecord: ban con snapshot de roles para un unban más fácil.
type BanRecord struct {
	ID        int64
	BannerID  string
	UserID    string
	Reason    string
	RoleIDs   []string
	RoleNames []string
	CreatedAt time.Time
}

// MessageDeletion: auditoría de un borrado manual de mensaje.
type MessageDeletion struct {
	ID              int64
	Content         string
	ReferenceID     *string // mensaje al que respondía, si era una respuesta
	CreatedAt       time.Time
	AuthorID        string
	ChannelID       string
	AttachmentCount int
	StickerCount    int
	Flags           int64
	LogMessageURL   string
	DeletedBy       string
}

// Supporter: miembro del equipo de moderación; left_at marca ex-miembros.
type Supporter struct {
	ID        int64
	DiscordID string
	LeftAt    *time.Time
}

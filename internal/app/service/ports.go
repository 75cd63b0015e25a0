package service

import (
	"context"
	"time"

	"factionwarden/internal/infra/storage"
)

// ChatGateway: lo que el core necesita del gateway de chat.
// Lo implementa internal/adapters/discord.Gateway.
type ChatGateway interface {
	// ReplyTransient responde al mensaje con un aviso que se auto-borra tras ttl.
	ReplyTransient(ctx context.Context, channelID, messageID, content string, ttl time.Duration) error
	// DeleteMessage tolera que el mensaje ya no exista.
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	// DeleteMessageAfter agenda el borrado sin bloquear al caller.
	DeleteMessageAfter(channelID, messageID string, d time.Duration)
	AddReaction(ctx context.Context, channelID, messageID, emoji string) error
	GrantRole(ctx context.Context, guildID, userID, roleID, reason string) error
	RevokeRole(ctx context.Context, guildID, userID, roleID, reason string) error
	// RoleExists: el role ID configurado sigue resolviendo en el guild.
	RoleExists(guildID, roleID string) bool
	// SendAuditLine manda una línea al canal de log, sin expandir mentions.
	SendAuditLine(ctx context.Context, channelID, line string) error
	// PurgeChannel limpia el historial completo del canal.
	PurgeChannel(ctx context.Context, channelID string) error
}

// BanStore: persistencia de bans con snapshot de roles.
// Lo implementa internal/infra/storage.BanRepo.
type BanStore interface {
	Insert(ctx context.Context, b storage.BanRecord) (int64, error)
	CountForUser(ctx context.Context, userID string) (int, error)
}

// DeletionStore: auditoría de borrados manuales de mensajes.
type DeletionStore interface {
	Insert(ctx context.Context, d storage.MessageDeletion) error
}

// SupporterStore: lookup de miembros (actuales o ex) del equipo.
type SupporterStore interface {
	GetByDiscordID(ctx context.Context, discordID string) (storage.Supporter, error)
}

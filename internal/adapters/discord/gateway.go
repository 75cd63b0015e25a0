package discord

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Gateway implementa service.ChatGateway sobre una sesión de discordgo.
type Gateway struct {
	s *discordgo.Session
}

func NewGateway(s *discordgo.Session) *Gateway { return &Gateway{s: s} }

// ReplyTransient: responde con un embed que se auto-borra tras ttl.
func (g *Gateway) ReplyTransient(ctx context.Context, channelID, messageID, content string, ttl time.Duration) error {
	msg, err := g.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embed: &discordgo.MessageEmbed{Description: content},
		Reference: &discordgo.MessageReference{
			MessageID: messageID,
			ChannelID: channelID,
		},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}, discordgo.WithContext(ctx))
	if err != nil {
		log.Printf("ReplyTransient error: %v", err)
		return err
	}
	g.DeleteMessageAfter(channelID, msg.ID, ttl)
	return nil
}

// DeleteMessage borra tolerando que el mensaje ya no exista.
func (g *Gateway) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	err := g.s.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil && !isNotFound(err) {
		log.Printf("DeleteMessage error: %v", err)
		return err
	}
	return nil
}

func (g *Gateway) DeleteMessageAfter(channelID, messageID string, d time.Duration) {
	time.AfterFunc(d, func() {
		_ = g.DeleteMessage(context.Background(), channelID, messageID)
	})
}

func (g *Gateway) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	return g.s.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx))
}

func (g *Gateway) GrantRole(ctx context.Context, guildID, userID, roleID, reason string) error {
	return g.s.GuildMemberRoleAdd(guildID, userID, roleID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
}

func (g *Gateway) RevokeRole(ctx context.Context, guildID, userID, roleID, reason string) error {
	return g.s.GuildMemberRoleRemove(guildID, userID, roleID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
}

func (g *Gateway) RoleExists(guildID, roleID string) bool {
	if r, err := g.s.State.Role(guildID, roleID); err == nil && r != nil {
		return true
	}
	roles, err := g.s.GuildRoles(guildID)
	if err != nil {
		return false
	}
	for _, r := range roles {
		if r.ID == roleID {
			return true
		}
	}
	return false
}

// SendAuditLine: una línea al canal de log, mentions deshabilitadas.
func (g *Gateway) SendAuditLine(ctx context.Context, channelID, line string) error {
	_, err := g.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:         line,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}, discordgo.WithContext(ctx))
	if err != nil {
		log.Printf("SendAuditLine error: %v", err)
	}
	return err
}

// PurgeChannel limpia el historial del canal en tandas de 100.
// Bulk-delete no acepta mensajes de más de 14 días; esos van de a uno.
func (g *Gateway) PurgeChannel(ctx context.Context, channelID string) error {
	for i := 0; i < 20; i++ { // máximo 2000 mensajes por purge
		msgs, err := g.s.ChannelMessages(channelID, 100, "", "", "", discordgo.WithContext(ctx))
		if err != nil {
			return err
		}
		if len(msgs) == 0 {
			return nil
		}
		ids := make([]string, 0, len(msgs))
		for _, m := range msgs {
			ids = append(ids, m.ID)
		}
		if err := g.s.ChannelMessagesBulkDelete(channelID, ids, discordgo.WithContext(ctx)); err != nil {
			for _, id := range ids {
				if derr := g.DeleteMessage(ctx, channelID, id); derr != nil {
					return derr
				}
			}
		}
	}
	return nil
}

func isNotFound(err error) bool {
	var rest *discordgo.RESTError
	return errors.As(err, &rest) && rest.Response != nil && rest.Response.StatusCode == 404
}

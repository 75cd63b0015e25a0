package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"factionwarden/internal/domain"
)

const (
	ApproveEmoji = "✅"
	CancelEmoji  = "❌"

	defaultNoticeTTL  = 7 * time.Second
	defaultPendingTTL = 600 * time.Second
)

// Resolution: qué pasó con una reacción sobre un pedido de fracción.
type Resolution int

const (
	ResolutionIgnored Resolution = iota
	ResolutionApproved
	ResolutionCancelled
	ResolutionExpired
	ResolutionUnauthorized
	ResolutionStaleRematch
	ResolutionFailed
)

func (r Resolution) String() string {
	switch r {
	case ResolutionApproved:
		return "approved"
	case ResolutionCancelled:
		return "cancelled"
	case ResolutionExpired:
		return "expired"
	case ResolutionUnauthorized:
		return "unauthorized"
	case ResolutionStaleRematch:
		return "stale-rematch"
	case ResolutionFailed:
		return "failed"
	default:
		return "ignored"
	}
}

// FactionService maneja el canal de fracciones: clasifica mensajes,
// trackea pedidos pendientes y resuelve reacciones de aprobación.
type FactionService struct {
	reg     *domain.Registry
	gw      ChatGateway
	pending *PendingRequests
	guildID string

	// configurables para tests
	NoticeTTL  time.Duration
	PendingTTL time.Duration
}

func NewFactionService(reg *domain.Registry, gw ChatGateway, pending *PendingRequests, guildID string) *FactionService {
	return &FactionService{
		reg:        reg,
		gw:         gw,
		pending:    pending,
		guildID:    guildID,
		NoticeTTL:  defaultNoticeTTL,
		PendingTTL: defaultPendingTTL,
	}
}

// Reset limpia el estado del canal de fracciones; se llama al conectar.
func (s *FactionService) Reset(ctx context.Context) {
	s.pending.Clear()
	if err := s.gw.PurgeChannel(ctx, s.reg.FactionChatID); err != nil {
		log.Printf("[factions] purge channel: %v", err)
	}
}

// HandleMessage procesa un mensaje nuevo en el canal de fracciones y
// aplica los efectos que correspondan a su clasificación.
func (s *FactionService) HandleMessage(ctx context.Context, m domain.Message) domain.Classification {
	c := domain.Classify(s.reg, m)
	switch c.Kind {
	case domain.ClassFiltered, domain.ClassNoMatch, domain.ClassTooMany, domain.ClassInvalidMention:
		s.noticeAndDelete(ctx, m, c.Notice)

	case domain.ClassRemovalRequest:
		s.handleRemoval(ctx, m, c)

	case domain.ClassPendingGrant:
		s.registerPending(ctx, m)
	}
	return c
}

// noticeAndDelete: aviso transitorio (si hay) y borrado del mensaje.
// Sin aviso el borrado es inmediato; con aviso tras la gracia de 7s.
func (s *FactionService) noticeAndDelete(ctx context.Context, m domain.Message, notice string) {
	if notice == "" {
		_ = s.gw.DeleteMessage(ctx, m.ChannelID, m.ID)
		return
	}
	_ = s.gw.ReplyTransient(ctx, m.ChannelID, m.ID, notice, s.NoticeTTL)
	s.gw.DeleteMessageAfter(m.ChannelID, m.ID, s.NoticeTTL)
}

func (s *FactionService) handleRemoval(ctx context.Context, m domain.Message, c domain.Classification) {
	f := c.Faction
	selfRemoval := c.Target == m.AuthorID
	if !selfRemoval && !m.AuthorAdmin && !s.reg.IsOG(m.AuthorRoles, f) {
		s.noticeAndDelete(ctx, m, fmt.Sprintf(":no_entry_sign: Du kannst <@%s> die Rolle nicht wegnehmen", c.Target))
		return
	}
	if !s.gw.RoleExists(m.GuildID, f.MemberRoleID) {
		log.Printf("[factions] role %s could not be found", f.MemberRoleID)
		return
	}
	reason := fmt.Sprintf("Hat die Fraktionsrolle von %s entfernt bekommen", m.AuthorID)
	if err := s.gw.RevokeRole(ctx, m.GuildID, c.Target, f.MemberRoleID, reason); err != nil {
		log.Printf("[factions] revoke role %s from %s: %v", f.MemberRoleID, c.Target, err)
		return
	}

	stamp := time.Now().Format("15:04:05")
	if selfRemoval {
		_ = s.gw.ReplyTransient(ctx, m.ChannelID, m.ID,
			fmt.Sprintf(":white_check_mark: Du hast dir die Rolle <@&%s> entfernt", f.MemberRoleID), s.NoticeTTL)
		_ = s.gw.SendAuditLine(ctx, s.reg.LogChannelID,
			fmt.Sprintf("`%s` :red_circle: <@%s> hat sich die Rolle <@&%s> entfernt",
				stamp, c.Target, f.MemberRoleID))
	} else {
		_ = s.gw.ReplyTransient(ctx, m.ChannelID, m.ID,
			fmt.Sprintf(":white_check_mark: Du hast <@%s> die Rolle <@&%s> entfernt", c.Target, f.MemberRoleID), s.NoticeTTL)
		_ = s.gw.SendAuditLine(ctx, s.reg.LogChannelID,
			fmt.Sprintf("`%s` :red_circle: <@%s> hat die Rolle <@&%s> entfernt bekommen von <@%s>",
				stamp, c.Target, f.MemberRoleID, m.AuthorID))
	}
	s.gw.DeleteMessageAfter(m.ChannelID, m.ID, s.NoticeTTL)
}

func (s *FactionService) registerPending(ctx context.Context, m domain.Message) {
	if err := s.gw.AddReaction(ctx, m.ChannelID, m.ID, ApproveEmoji); err != nil {
		log.Printf("[factions] add reaction: %v", err)
		return
	}
	if err := s.gw.AddReaction(ctx, m.ChannelID, m.ID, CancelEmoji); err != nil {
		log.Printf("[factions] add reaction: %v", err)
		return
	}
	channelID, messageID := m.ChannelID, m.ID
	ok := s.pending.Add(messageID, s.PendingTTL, func() {
		// el mensaje puede haber desaparecido hace rato; DeleteMessage lo tolera
		_ = s.gw.DeleteMessage(context.Background(), channelID, messageID)
		log.Printf("[factions] pending request %s: %s", messageID, ResolutionExpired)
	})
	if !ok {
		log.Printf("[factions] message %s already pending", messageID)
	}
}

// HandleReaction resuelve una reacción en el canal de fracciones.
func (s *FactionService) HandleReaction(ctx context.Context, r domain.Reaction) Resolution {
	if r.UserBot {
		return ResolutionIgnored
	}
	if r.Emoji != ApproveEmoji && r.Emoji != CancelEmoji {
		return ResolutionIgnored
	}

	// ❌ vale con o sin tracking: el autor o un admin pueden descartar
	if r.Emoji == CancelEmoji {
		if r.UserID != r.MessageAuthorID && !r.UserAdmin {
			return ResolutionIgnored
		}
		s.pending.Remove(r.MessageID)
		_ = s.gw.DeleteMessage(ctx, r.ChannelID, r.MessageID)
		return ResolutionCancelled
	}

	// ✅ sólo sobre pedidos trackeados
	if !s.pending.Contains(r.MessageID) {
		return ResolutionIgnored
	}

	// re-parseo del contenido vivo: el texto pudo cambiar desde el posteo
	matches, faction := domain.CountAliasMatches(s.reg, r.MessageContent)
	if matches != 1 {
		s.pending.Remove(r.MessageID)
		_ = s.gw.DeleteMessage(ctx, r.ChannelID, r.MessageID)
		return ResolutionStaleRematch
	}
	if !r.UserAdmin && !s.reg.IsOG(r.UserRoles, faction) {
		s.pending.Remove(r.MessageID)
		_ = s.gw.DeleteMessage(ctx, r.ChannelID, r.MessageID)
		return ResolutionUnauthorized
	}

	// fallas del gateway NO sacan la entrada: la limpia su expiry normal
	if !s.gw.RoleExists(r.GuildID, faction.MemberRoleID) {
		log.Printf("[factions] role %s could not be found", faction.MemberRoleID)
		return ResolutionFailed
	}
	reason := fmt.Sprintf("%s hat ihm die Fraktionsrolle zugewiesen", r.UserID)
	if err := s.gw.GrantRole(ctx, r.GuildID, r.MessageAuthorID, faction.MemberRoleID, reason); err != nil {
		log.Printf("[factions] grant role %s to %s: %v", faction.MemberRoleID, r.MessageAuthorID, err)
		return ResolutionFailed
	}

	_ = s.gw.SendAuditLine(ctx, s.reg.LogChannelID,
		fmt.Sprintf("`%s` :green_circle: <@%s> hat die Rolle <@&%s> bekommen von <@%s>",
			time.Now().Format("15:04:05"), r.MessageAuthorID, faction.MemberRoleID, r.UserID))

	s.pending.Remove(r.MessageID)
	_ = s.gw.DeleteMessage(ctx, r.ChannelID, r.MessageID)
	return ResolutionApproved
}

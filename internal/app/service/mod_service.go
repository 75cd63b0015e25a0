package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/mozillazg/go-unidecode"

	"factionwarden/internal/domain"
	"factionwarden/internal/infra/storage"
)

// minMuteSeconds: timeouts más cortos no tienen sentido contra el lag del gateway.
const minMuteSeconds = 5

const maxDeletableAge = 14 * 24 * time.Hour

// ModService: comandos de moderación (mute/unmute/ban/borrado auditado)
// y el watchdog de usernames prohibidos.
type ModService struct {
	s          *discordgo.Session
	bans       BanStore
	deletions  DeletionStore
	supporters SupporterStore

	guildID            string
	teamRoleIDs        []string
	muteLogChannelID   string
	deletionLogChannel string
	mainLogChannelID   string
	forbiddenUsernames []string
}

func NewModService(
	s *discordgo.Session,
	bans BanStore,
	deletions DeletionStore,
	supporters SupporterStore,
	guildID string,
	teamRoleIDs []string,
	muteLogChannelID, deletionLogChannel, mainLogChannelID string,
	forbiddenUsernames []string,
) *ModService {
	return &ModService{
		s:                  s,
		bans:               bans,
		deletions:          deletions,
		supporters:         supporters,
		guildID:            guildID,
		teamRoleIDs:        teamRoleIDs,
		muteLogChannelID:   muteLogChannelID,
		deletionLogChannel: deletionLogChannel,
		mainLogChannelID:   mainLogChannelID,
		forbiddenUsernames: forbiddenUsernames,
	}
}

// ---------- mute / unmute ----------

// Mute: respuestas en alemán para el usuario, error sólo en fallas internas.
func (m *ModService) Mute(ctx context.Context, actorID string, target *discordgo.Member, durationStr, reason string) (string, error) {
	if target == nil || target.User == nil {
		return "Benutzer nicht gefunden oder nicht auf dem Server", nil
	}
	if deny := m.muteTargetDenied(actorID, target); deny != "" {
		return deny, nil
	}

	dur, err := domain.ParseTimeoutDuration(durationStr, true)
	if err != nil {
		return "Ungültige Mute-Länge. Gültig sind z.B. `1d 30m` oder `17d`: " +
			"Zahl plus Zeitkürzel (**d**, **h**, **m**, **s**), frei kombinierbar.", nil
	}
	if dur.TotalSeconds() < minMuteSeconds {
		return "Die Mute-Dauer muss mindestens 5 Sekunden sein", nil
	}

	until := dur.ExpiresAt(time.Now())
	if cur := target.CommunicationDisabledUntil; cur != nil && !until.After(*cur) {
		return fmt.Sprintf("%s ist schon stumm geschaltet (bis <t:%d:F>)",
			target.User.Mention(), cur.Unix()), nil
	}

	if err := m.s.GuildMemberTimeout(m.guildID, target.User.ID, &until, discordgo.WithContext(ctx)); err != nil {
		log.Printf("[mod] cannot mute user %s: %v", target.User.ID, err)
		return fmt.Sprintf("%s konnte nicht stumm geschaltet werden", target.User.Mention()), nil
	}
	log.Printf("[mod] muted user %s for %s", target.User.ID, dur)

	m.sendModLog(ctx, m.muteLogChannelID, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s wurde stumm geschaltet", target.User.Username),
		Description: fmt.Sprintf("Timeout für %s\nBis: <t:%d:F>\nGestummt von <@%s>", dur, until.Unix(), actorID),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Grund", Value: reason},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "ID " + target.User.ID},
	})
	return fmt.Sprintf("Timeout für %s: %s", target.User.Mention(), dur), nil
}

func (m *ModService) Unmute(ctx context.Context, actorID string, target *discordgo.Member, reason string) (string, error) {
	if target == nil || target.User == nil {
		return "Benutzer nicht gefunden oder nicht auf dem Server", nil
	}
	if cur := target.CommunicationDisabledUntil; cur == nil || cur.Before(time.Now()) {
		return fmt.Sprintf("%s hat keinen Timeout", target.User.Mention()), nil
	}
	if err := m.s.GuildMemberTimeout(m.guildID, target.User.ID, nil, discordgo.WithContext(ctx)); err != nil {
		log.Printf("[mod] cannot unmute user %s: %v", target.User.ID, err)
		return fmt.Sprintf("%s konnte nicht entstummt werden", target.User.Mention()), nil
	}
	log.Printf("[mod] unmuted user %s", target.User.ID)

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s wurde entstummt", target.User.Username),
		Description: fmt.Sprintf("Entstummt von <@%s>", actorID),
		Footer:      &discordgo.MessageEmbedFooter{Text: "ID " + target.User.ID},
	}
	if reason != "" {
		embed.Fields = []*discordgo.MessageEmbedField{{Name: "Grund", Value: reason}}
	}
	m.sendModLog(ctx, m.muteLogChannelID, embed)
	return fmt.Sprintf("Timeout von %s entfernt", target.User.Mention()), nil
}

// muteTargetDenied: guardas previas al timeout; "" = permitido.
func (m *ModService) muteTargetDenied(actorID string, target *discordgo.Member) string {
	switch {
	case target.User.Bot || target.User.System:
		return "Du kannst diesen Benutzer nicht stumm schalten"
	case target.User.ID == actorID:
		return "Du kannst dich nicht selbst stumm schalten"
	case m.memberIsAdmin(target):
		return "Du kannst diesen Benutzer nicht stumm schalten"
	case hasAnyRole(target.Roles, m.teamRoleIDs):
		return "Du kannst keinen Moderator stumm schalten"
	}
	return ""
}

// ---------- ban ----------

func (m *ModService) Ban(ctx context.Context, actorID string, target *discordgo.User, targetMember *discordgo.Member, reason string) (string, error) {
	if target == nil {
		return "Benutzer nicht gefunden", nil
	}

	// sólo seguimos si todavía no está baneado
	if _, err := m.s.GuildBan(m.guildID, target.ID, discordgo.WithContext(ctx)); err == nil {
		return fmt.Sprintf("%s ist bereits gebannt", target.Mention()), nil
	} else if !isNotFound(err) {
		return "", fmt.Errorf("fetch ban: %w", err)
	}

	// snapshot de roles para un futuro unban; se toma antes del ban
	// porque después el member ya no está en el guild
	rec := storage.BanRecord{BannerID: actorID, UserID: target.ID, Reason: reason}
	if targetMember != nil {
		rec.RoleIDs = targetMember.Roles
		rec.RoleNames = m.roleNames(targetMember.Roles)
	}

	// el ban va primero: sin ban aplicado no se persiste nada
	if err := m.s.GuildBanCreateWithReason(m.guildID, target.ID, reason, 0, discordgo.WithContext(ctx)); err != nil {
		log.Printf("[mod] couldn't ban %s: %v", target.ID, err)
		return "", fmt.Errorf("ban: %w", err)
	}
	if _, err := m.bans.Insert(ctx, rec); err != nil {
		log.Printf("[mod] ban applied but not persisted for %s: %v", target.ID, err)
		return "", fmt.Errorf("persist ban: %w", err)
	}

	prior, err := m.bans.CountForUser(ctx, target.ID)
	if err != nil {
		prior = 0
	}
	m.sendModLog(ctx, m.muteLogChannelID, &discordgo.MessageEmbed{
		Title: fmt.Sprintf("[BAN] %s", target.Username),
		Color: 0x47b07f,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Nutzer", Value: target.Mention(), Inline: true},
			{Name: "Moderator", Value: "<@" + actorID + ">", Inline: true},
			{Name: "Bann-Grund", Value: reason},
			{Name: "Banns insgesamt", Value: fmt.Sprintf("%d", prior)},
		},
	})
	return fmt.Sprintf("%s wurde gebannt", target.Mention()), nil
}

// ---------- borrado auditado de mensajes ----------

func (m *ModService) DeleteMessage(ctx context.Context, actor *discordgo.Member, msg *discordgo.Message) (string, error) {
	if deny := m.deletionDenied(ctx, actor, msg); deny != "" {
		return deny, nil
	}

	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf(":wastebasket: Nachricht gelöscht von %s", actor.User.Username),
		Timestamp: time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "gesendet von", Value: msg.Author.Mention(), Inline: true},
			{Name: "Kanal", Value: "<#" + msg.ChannelID + ">", Inline: true},
			{Name: "gelöscht von", Value: actor.User.Mention(), Inline: true},
		},
	}
	if msg.MessageReference != nil {
		embed.Description = "↵ Antwort auf " + msg.MessageReference.MessageID
	}
	logMsg, err := m.s.ChannelMessageSendComplex(m.deletionLogChannel, &discordgo.MessageSend{
		Content:         msg.Content,
		Embed:           embed,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("deletion log: %w", err)
	}

	rec := storage.MessageDeletion{
		Content:         truncate(msg.Content, 6000),
		CreatedAt:       msg.Timestamp,
		AuthorID:        msg.Author.ID,
		ChannelID:       msg.ChannelID,
		AttachmentCount: len(msg.Attachments),
		StickerCount:    len(msg.StickerItems),
		Flags:           int64(msg.Flags),
		LogMessageURL:   messageURL(m.guildID, logMsg.ChannelID, logMsg.ID),
		DeletedBy:       actor.User.ID,
	}
	if msg.MessageReference != nil {
		ref := msg.MessageReference.MessageID
		rec.ReferenceID = &ref
	}
	if err := m.deletions.Insert(ctx, rec); err != nil {
		return "", fmt.Errorf("persist deletion: %w", err)
	}

	if err := m.s.ChannelMessageDelete(msg.ChannelID, msg.ID, discordgo.WithContext(ctx)); err != nil {
		log.Printf("[mod] couldn't delete message %s: %v", msg.ID, err)
		return "Fehler: Nachricht konnte nicht gelöscht werden", nil
	}
	return "Nachricht gelöscht", nil
}

// deletionDenied: las guardas del original, en el mismo orden; "" = permitido.
func (m *ModService) deletionDenied(ctx context.Context, actor *discordgo.Member, msg *discordgo.Message) string {
	switch {
	case msg.Pinned:
		return "Diese Nachricht kannst du nicht löschen, da sie angepinnt ist"
	case msg.Interaction != nil:
		return "Du kannst keine Nachrichten von Interaktionen löschen"
	case msg.Flags&discordgo.MessageFlagsCrossPosted != 0 || msg.Flags&discordgo.MessageFlagsIsCrossPosted != 0 || msg.Flags&discordgo.MessageFlagsUrgent != 0:
		return "Du kannst diese Art von Nachricht nicht löschen"
	case msg.WebhookID != "":
		return "Du kannst keine Nachrichten von Webhooks löschen"
	case msg.Author == nil || msg.Author.Bot || msg.Author.System:
		return "Nachrichten von Bots sind heilig und können nicht gelöscht werden"
	case time.Since(msg.Timestamp) > maxDeletableAge:
		return "Die Nachricht ist zu alt um gelöscht zu werden"
	}

	// teammitglieder (aktuelle und ehemalige) sind tabu
	sup, err := m.supporters.GetByDiscordID(ctx, msg.Author.ID)
	if err == nil {
		if sup.LeftAt != nil {
			return "Du kannst Nachrichten von ehemaligen Teammitgliedern nicht löschen"
		}
		return "Du kannst Nachrichten von Teammitgliedern nicht löschen"
	} else if !errors.Is(err, storage.ErrNotFound) {
		log.Printf("[mod] supporter lookup: %v", err)
	}

	if member, err := m.guildMember(msg.Author.ID); err == nil {
		switch {
		case m.memberIsAdmin(member):
			return "Du kannst keine Nachrichten von Administratoren löschen"
		case m.memberHasPermission(member, discordgo.PermissionManageMessages):
			return "Nachrichten von diesem Benutzer kannst du nicht löschen, da dieser auch Lösch-Berechtigung hat"
		case hasAnyRole(member.Roles, m.teamRoleIDs):
			return "Du kannst Nachrichten von Teammitgliedern nicht löschen"
		case m.topRolePosition(member) > m.topRolePosition(actor):
			return "Du kannst keine Nachrichten von Benutzern löschen, die im Rang über dir stehen"
		}
	}
	return ""
}

// ---------- forbidden usernames ----------

// EnforceUsernamePolicy kickea members con un username prohibido.
// Se corre en member-join y user-update.
func (m *ModService) EnforceUsernamePolicy(ctx context.Context, member *discordgo.Member) {
	if member == nil || member.User == nil || member.User.Bot {
		return
	}
	// transliteración primero: "ádmin" debe matchear "admin"
	decoded := strings.ToLower(unidecode.Unidecode(member.User.Username))

	var hit string
	for _, forbidden := range m.forbiddenUsernames {
		if forbidden != "" && strings.Contains(decoded, strings.ToLower(forbidden)) {
			hit = forbidden
			break
		}
	}
	if hit == "" {
		return
	}
	if hasAnyRole(member.Roles, m.teamRoleIDs) {
		return
	}

	log.Printf("[mod] %s will be kicked due to a forbidden username", member.User.ID)
	m.sendModLog(ctx, m.mainLogChannelID, &discordgo.MessageEmbed{
		Description: fmt.Sprintf("%s got kicked due to a forbidden username: `%s`", member.User.Mention(), hit),
		Footer:      &discordgo.MessageEmbedFooter{Text: "ID " + member.User.ID},
		Color:       0xed4245,
	})
	if err := m.s.GuildMemberDeleteWithReason(m.guildID, member.User.ID,
		"Automated kick due to a forbidden username", discordgo.WithContext(ctx)); err != nil {
		log.Printf("[mod] couldn't kick %s: %v", member.User.ID, err)
	}
}

// ---------- helpers ----------

func (m *ModService) sendModLog(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) {
	if channelID == "" {
		return
	}
	_, err := m.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embed:           embed,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}, discordgo.WithContext(ctx))
	if err != nil {
		log.Printf("[mod] cannot send to log channel %s: %v", channelID, err)
	}
}

func (m *ModService) guildMember(userID string) (*discordgo.Member, error) {
	if mem, err := m.s.State.Member(m.guildID, userID); err == nil && mem != nil {
		return mem, nil
	}
	return m.s.GuildMember(m.guildID, userID)
}

func (m *ModService) guildRoles() map[string]*discordgo.Role {
	out := map[string]*discordgo.Role{}
	g, err := m.s.State.Guild(m.guildID)
	if err != nil || g == nil {
		roles, err := m.s.GuildRoles(m.guildID)
		if err != nil {
			return out
		}
		for _, r := range roles {
			out[r.ID] = r
		}
		return out
	}
	for _, r := range g.Roles {
		out[r.ID] = r
	}
	return out
}

func (m *ModService) memberIsAdmin(member *discordgo.Member) bool {
	return m.memberHasPermission(member, discordgo.PermissionAdministrator)
}

func (m *ModService) memberHasPermission(member *discordgo.Member, perm int64) bool {
	roles := m.guildRoles()
	var perms int64
	for _, rid := range member.Roles {
		if r, ok := roles[rid]; ok {
			perms |= r.Permissions
		}
	}
	return perms&discordgo.PermissionAdministrator != 0 || perms&perm != 0
}

func (m *ModService) topRolePosition(member *discordgo.Member) int {
	roles := m.guildRoles()
	top := 0
	for _, rid := range member.Roles {
		if r, ok := roles[rid]; ok && r.Position > top {
			top = r.Position
		}
	}
	return top
}

func (m *ModService) roleNames(roleIDs []string) []string {
	roles := m.guildRoles()
	names := make([]string, 0, len(roleIDs))
	for _, rid := range roleIDs {
		if r, ok := roles[rid]; ok {
			names = append(names, r.Name)
		} else {
			names = append(names, rid)
		}
	}
	return names
}

func hasAnyRole(roles []string, wanted []string) bool {
	for _, r := range roles {
		for _, w := range wanted {
			if r == w {
				return true
			}
		}
	}
	return false
}

func isNotFound(err error) bool {
	var rest *discordgo.RESTError
	return errors.As(err, &rest) && rest.Response != nil && rest.Response.StatusCode == 404
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max > 2 {
		return s[:max-2] + ".."
	}
	return s[:max]
}

func messageURL(guildID, channelID, messageID string) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, messageID)
}

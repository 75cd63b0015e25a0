package discord

import (
	"context"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"factionwarden/internal/app/service"
	"factionwarden/internal/domain"
)

type Router struct {
	s       *discordgo.Session
	guildID string

	reg         *domain.Registry
	factions    *service.FactionService
	mod         *service.ModService
	teamRoleIDs []string

	// cooldowns por comando (estilo bucket por user)
	muteLimiter *userLimiter
	banLimiter  *userLimiter
	delLimiter  *userLimiter
}

func NewRouter(
	s *discordgo.Session,
	guildID string,
	reg *domain.Registry,
	factions *service.FactionService,
	mod *service.ModService,
	teamRoleIDs []string,
) *Router {
	return &Router{
		s:           s,
		guildID:     guildID,
		reg:         reg,
		factions:    factions,
		mod:         mod,
		teamRoleIDs: teamRoleIDs,
		muteLimiter: newUserLimiter(60 * time.Second),
		banLimiter:  newUserLimiter(2 * time.Minute),
		delLimiter:  newUserLimiter(1 * time.Second),
	}
}

func (r *Router) Register() error {
	appID := r.s.State.User.ID
	for _, cmd := range Commands {
		if _, err := r.s.ApplicationCommandCreate(appID, r.guildID, cmd); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) Handlers() {
	r.s.AddHandler(r.onReady)
	r.s.AddHandler(r.onMessageCreate)
	r.s.AddHandler(r.onReactionAdd)
	r.s.AddHandler(r.onMemberAdd)
	r.s.AddHandler(r.onMemberUpdate)
	r.s.AddHandler(r.onInteraction)
}

func (r *Router) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	log.Printf("✅ logged in as %s (%s)", s.State.User.Username, s.State.User.ID)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	r.factions.Reset(ctx)
}

// onMessageCreate: sólo el canal de fracciones pasa por el clasificador.
// Nuestros propios mensajes se saltean acá: los avisos transitorios del
// bot viven en el mismo canal y no deben re-clasificarse.
func (r *Router) onMessageCreate(s *discordgo.Session, mc *discordgo.MessageCreate) {
	if mc.GuildID != r.guildID || mc.ChannelID != r.reg.FactionChatID {
		return
	}
	if mc.Author == nil || mc.Author.ID == s.State.User.ID {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()

	r.factions.HandleMessage(ctx, r.domainMessage(mc.Message))
}

func (r *Router) onReactionAdd(s *discordgo.Session, ra *discordgo.MessageReactionAdd) {
	if ra.GuildID != r.guildID || ra.ChannelID != r.reg.FactionChatID {
		return
	}
	if ra.UserID == s.State.User.ID {
		return
	}
	if ra.Member != nil && ra.Member.User != nil && (ra.Member.User.Bot || ra.Member.User.System) {
		return
	}

	// el resolver necesita el contenido VIVO del mensaje, no el del posteo
	msg, err := r.liveMessage(ra.ChannelID, ra.MessageID)
	if err != nil || msg == nil || msg.Author == nil {
		return
	}

	var roles []string
	if ra.Member != nil {
		roles = ra.Member.Roles
	}
	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()

	res := r.factions.HandleReaction(ctx, domain.Reaction{
		MessageID:       ra.MessageID,
		ChannelID:       ra.ChannelID,
		GuildID:         ra.GuildID,
		Emoji:           ra.Emoji.Name,
		UserID:          ra.UserID,
		UserAdmin:       r.isAdmin(ra.GuildID, ra.UserID, roles),
		UserRoles:       roles,
		MessageAuthorID: msg.Author.ID,
		MessageContent:  msg.Content,
	})
	if res != service.ResolutionIgnored {
		log.Printf("reaction: msg=%s by=%s → %s", ra.MessageID, ra.UserID, res)
	}
}

func (r *Router) onMemberAdd(_ *discordgo.Session, ev *discordgo.GuildMemberAdd) {
	if ev.GuildID != r.guildID {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()
	r.mod.EnforceUsernamePolicy(ctx, ev.Member)
}

func (r *Router) onMemberUpdate(_ *discordgo.Session, ev *discordgo.GuildMemberUpdate) {
	if ev.GuildID != r.guildID {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()
	r.mod.EnforceUsernamePolicy(ctx, ev.Member)
}

// domainMessage traduce el evento del gateway al modelo del clasificador.
func (r *Router) domainMessage(m *discordgo.Message) domain.Message {
	mentions := make([]string, 0, len(m.Mentions))
	for _, u := range m.Mentions {
		mentions = append(mentions, u.ID)
	}
	var roles []string
	if m.Member != nil {
		roles = m.Member.Roles
	}
	return domain.Message{
		ID:          m.ID,
		ChannelID:   m.ChannelID,
		GuildID:     m.GuildID,
		AuthorID:    m.Author.ID,
		AuthorBot:   m.Author.Bot || m.Author.System,
		AuthorAdmin: r.isAdmin(m.GuildID, m.Author.ID, roles),
		AuthorRoles: roles,
		Content:     m.Content,
		Mentions:    mentions,
	}
}

// liveMessage: primero el state cache, después la API.
func (r *Router) liveMessage(channelID, messageID string) (*discordgo.Message, error) {
	if m, err := r.s.State.Message(channelID, messageID); err == nil && m != nil {
		return m, nil
	}
	return r.s.ChannelMessage(channelID, messageID)
}

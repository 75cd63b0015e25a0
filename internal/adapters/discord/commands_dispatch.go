package discord

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

func (r *Router) onInteraction(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	if ic.GuildID != r.guildID || ic.Member == nil || ic.Member.User == nil {
		return
	}
	if ic.Member.User.Bot {
		return
	}
	switch ic.Type {
	case discordgo.InteractionApplicationCommandAutocomplete:
		r.handleAutocomplete(s, ic)
	case discordgo.InteractionApplicationCommand:
		r.handleCommand(s, ic)
	}
}

func (r *Router) handleCommand(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	data := ic.ApplicationCommandData()
	log.Printf("cmd: /%s by=%s guild=%s", data.Name, ic.Member.User.ID, ic.GuildID)

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("panic in /%s: %v", data.Name, rec)
			ReplyEphemeral(s, ic, "⚠️ Ein interner Fehler ist aufgetreten. Bitte melde diesen Vorfall.")
		}
	}()

	_ = DeferEphemeral(s, ic)
	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()

	actorID := ic.Member.User.ID

	switch data.Name {
	case "mute":
		if !r.allowModCommand(s, ic, r.muteLimiter) {
			return
		}
		target, _ := r.optMember(ctx, ic, "user")
		msg, err := r.mod.Mute(ctx, actorID, target, optString(ic, "duration"), optString(ic, "reason"))
		if err != nil {
			log.Printf("/mute: %v", err)
			msg = "⚠️ Ein interner Fehler ist aufgetreten. Bitte melde diesen Vorfall."
		}
		ReplyEphemeral(s, ic, msg)

	case "unmute":
		if !r.allowModCommand(s, ic, r.muteLimiter) {
			return
		}
		target, _ := r.optMember(ctx, ic, "user")
		msg, err := r.mod.Unmute(ctx, actorID, target, optString(ic, "reason"))
		if err != nil {
			log.Printf("/unmute: %v", err)
			msg = "⚠️ Ein interner Fehler ist aufgetreten. Bitte melde diesen Vorfall."
		}
		ReplyEphemeral(s, ic, msg)

	case "ban":
		if !r.allowModCommand(s, ic, r.banLimiter) {
			return
		}
		user := optUser(s, ic, "user")
		member, _ := r.optMember(ctx, ic, "user")
		msg, err := r.mod.Ban(ctx, actorID, user, member, optString(ic, "reason"))
		if err != nil {
			log.Printf("/ban: %v", err)
			msg = "⚠️ Ein interner Fehler ist aufgetreten. Bitte melde diesen Vorfall."
		}
		ReplyEphemeral(s, ic, msg)

	case "fraktionen":
		names := r.reg.OGFactionNames(ic.Member.Roles)
		if len(names) == 0 {
			ReplyEphemeral(s, ic, "Du bist bei keiner Fraktion OG.")
			return
		}
		ReplyEphemeral(s, ic, "Du bist OG bei: **"+strings.Join(names, "**, **")+"**")

	case "frak-info":
		name := optString(ic, "fraktion")
		f := r.reg.FactionOGOfByName(ic.Member.Roles, name)
		if f == nil {
			ReplyEphemeral(s, ic, "Du musst OG dieser Fraktion sein um diesen Befehl benutzen zu können.")
			return
		}
		ogs := make([]string, 0, len(f.OGRoleIDs))
		for _, id := range f.OGRoleIDs {
			ogs = append(ogs, "<@&"+id+">")
		}
		ReplyEphemeral(s, ic, "", &discordgo.MessageEmbed{
			Title: f.Name(),
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Mitglieder-Rolle", Value: "<@&" + f.MemberRoleID + ">", Inline: true},
				{Name: "OG-Rollen", Value: strings.Join(ogs, " "), Inline: true},
				{Name: "Aliase", Value: "`" + strings.Join(f.Aliases, "` `") + "`"},
			},
		})

	case "Nachricht löschen":
		if !r.allowModCommand(s, ic, r.delLimiter) {
			return
		}
		msg := data.Resolved.Messages[data.TargetID]
		if msg == nil {
			ReplyEphemeral(s, ic, "Nachricht nicht gefunden")
			return
		}
		msg.ChannelID = ic.ChannelID
		out, err := r.mod.DeleteMessage(ctx, ic.Member, msg)
		if err != nil {
			log.Printf("delete message: %v", err)
			out = "⚠️ Ein interner Fehler ist aufgetreten. Bitte melde diesen Vorfall."
		}
		ReplyEphemeral(s, ic, out)
	}
}

func (r *Router) handleAutocomplete(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	data := ic.ApplicationCommandData()
	if data.Name != "frak-info" {
		return
	}
	names := r.reg.OGFactionNames(ic.Member.Roles)
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(names))
	for _, n := range names {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: n, Value: n})
	}
	err := s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
	if err != nil {
		log.Printf("autocomplete error: %v", err)
	}
}

// allowModCommand: team-role o admin, más el cooldown del comando.
func (r *Router) allowModCommand(s *discordgo.Session, ic *discordgo.InteractionCreate, lim *userLimiter) bool {
	if !r.hasTeamRole(ic.Member.Roles) && !r.isAdmin(ic.GuildID, ic.Member.User.ID, ic.Member.Roles) {
		ReplyEphemeral(s, ic, "🔒 Du hast dafür keine Berechtigung.")
		return false
	}
	if !lim.Allow(ic.Member.User.ID) {
		ReplyEphemeral(s, ic, "Du musst noch warten, bevor du diesen Befehl nochmal benutzen kannst.")
		return false
	}
	return true
}

// ---------- option helpers ----------

func optString(ic *discordgo.InteractionCreate, name string) string {
	for _, o := range ic.ApplicationCommandData().Options {
		if o.Name == name && o.Type == discordgo.ApplicationCommandOptionString {
			return o.StringValue()
		}
	}
	return ""
}

func optUser(s *discordgo.Session, ic *discordgo.InteractionCreate, name string) *discordgo.User {
	for _, o := range ic.ApplicationCommandData().Options {
		if o.Name == name && o.Type == discordgo.ApplicationCommandOptionUser {
			return o.UserValue(s)
		}
	}
	return nil
}

// optMember resuelve la opción user a un member del guild; nil si no está.
func (r *Router) optMember(ctx context.Context, ic *discordgo.InteractionCreate, name string) (*discordgo.Member, error) {
	u := optUser(r.s, ic, name)
	if u == nil {
		return nil, fmt.Errorf("option %q missing", name)
	}
	if m, err := r.s.State.Member(ic.GuildID, u.ID); err == nil && m != nil {
		return m, nil
	}
	return r.s.GuildMember(ic.GuildID, u.ID, discordgo.WithContext(ctx))
}

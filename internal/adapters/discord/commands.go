package discord

import "github.com/bwmarrin/discordgo"

var (
	permAdmin = int64(discordgo.PermissionAdministrator)
	permBan   = int64(discordgo.PermissionBanMembers)
)

var Commands = []*discordgo.ApplicationCommand{
	{
		Name:                     "mute",
		Description:              "Benutzer in Timeout schicken",
		DefaultMemberPermissions: &permAdmin,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "Der Benutzer",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "duration",
				Description: "Mute-Dauer (3d 10h 5m 29s)",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "reason",
				Description: "Mute-Grund",
				Required:    true,
			},
		},
	},
	{
		Name:                     "unmute",
		Description:              "Timeout von Benutzern entfernen",
		DefaultMemberPermissions: &permAdmin,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "Der Benutzer",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "reason",
				Description: "Grund der Entstummung",
			},
		},
	},
	{
		Name:                     "ban",
		Description:              "Bannt einen Benutzer. Speichert die Rollen für einen leichteren Unban.",
		DefaultMemberPermissions: &permBan,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "Der Benutzer",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "reason",
				Description: "Bann-Grund",
				Required:    true,
			},
		},
	},
	{
		Name:        "fraktionen",
		Description: "Liste der Fraktionen, bei denen du OG bist",
	},
	{
		Name:        "frak-info",
		Description: "Details einer Fraktion, bei der du OG bist",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:         discordgo.ApplicationCommandOptionString,
				Name:         "fraktion",
				Description:  "Eine Fraktion bei der du OG bist",
				Required:     true,
				Autocomplete: true,
			},
		},
	},
	{
		Name:                     "Nachricht löschen",
		Type:                     discordgo.MessageApplicationCommand,
		DefaultMemberPermissions: &permAdmin,
	},
}

package config

import (
	"log"
	"os"
	"strings"
)

type Config struct {
	DatabaseURL  string
	DiscordToken string
	DiscordGuild string

	// path al JSON con las fracciones (se parsea una vez al arranque)
	FactionsConfigPath string

	TeamRoleIDs          []string
	MuteLogChannelID     string
	MainLogChannelID     string
	DeletionLogChannelID string
	ForbiddenUsernames   []string
}

func Load() Config {
	get := func(k string, req bool) string {
		v := os.Getenv(k)
		if v == "" && req {
			log.Fatalf("faltante env %s", k)
		}
		return v
	}

	cfg := Config{
		DatabaseURL:          get("DATABASE_URL", true),
		DiscordToken:         get("DISCORD_BOT_TOKEN", true),
		DiscordGuild:         get("DISCORD_GUILD_ID", true),
		FactionsConfigPath:   get("FACTIONS_CONFIG", false),
		MuteLogChannelID:     get("MUTE_LOG_CHANNEL_ID", true),
		MainLogChannelID:     get("MAIN_LOG_CHANNEL_ID", true),
		DeletionLogChannelID: get("DELETION_LOG_CHANNEL_ID", true),
		TeamRoleIDs:          splitList(get("TEAM_ROLE_IDS", false)),
		ForbiddenUsernames:   splitList(get("FORBIDDEN_USERNAMES", false)),
	}
	if cfg.FactionsConfigPath == "" {
		cfg.FactionsConfigPath = "fraktionen-config.json"
	}
	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

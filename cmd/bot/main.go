package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"

	discordrouter "factionwarden/internal/adapters/discord"
	"factionwarden/internal/app/service"
	"factionwarden/internal/domain"
	"factionwarden/internal/infra/config"
	"factionwarden/internal/infra/storage"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	_ = godotenv.Load()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()

	// Registry de fracciones: se carga UNA vez, cualquier error aborta
	doc, err := os.ReadFile(cfg.FactionsConfigPath)
	if err != nil {
		log.Fatalf("fracciones: %v", err)
	}
	reg, err := domain.LoadRegistry(doc)
	if err != nil {
		log.Fatalf("fracciones: %v", err)
	}
	log.Printf("✅ %d fracciones cargadas", len(reg.Factions()))

	// DB
	db, err := storage.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := storage.Migrate(db); err != nil {
		log.Fatal("migrate:", err)
	}
	log.Println("✅ DB lista y migrada")

	// Repos
	banRepo := storage.NewBanRepo(db)
	deletionRepo := storage.NewDeletionRepo(db)
	supporterRepo := storage.NewSupporterRepo(db)

	// Discord session
	auth := cfg.DiscordToken
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(auth)), "bot ") {
		auth = "Bot " + strings.TrimSpace(auth)
	}
	s, err := discordgo.New(auth)
	if err != nil {
		log.Fatal(err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsGuildMembers |
		discordgo.IntentMessageContent

	// Services
	gw := discordrouter.NewGateway(s)
	pending := service.NewPendingRequests()
	factionSvc := service.NewFactionService(reg, gw, pending, cfg.DiscordGuild)
	modSvc := service.NewModService(
		s, banRepo, deletionRepo, supporterRepo,
		cfg.DiscordGuild, cfg.TeamRoleIDs,
		cfg.MuteLogChannelID, cfg.DeletionLogChannelID, cfg.MainLogChannelID,
		cfg.ForbiddenUsernames,
	)

	// Router (handlers antes del Open para no perder el Ready)
	r := discordrouter.NewRouter(s, cfg.DiscordGuild, reg, factionSvc, modSvc, cfg.TeamRoleIDs)
	r.Handlers()

	if err := s.Open(); err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	if err := r.Register(); err != nil {
		log.Fatalf("registrando comandos: %v", err)
	}
	log.Printf("✅ comandos registrados en guild %s", cfg.DiscordGuild)

	// Esperar señal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-stop
}

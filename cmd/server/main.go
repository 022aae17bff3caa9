package main

import (
	"bytes"
	"net/http"
	"os"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/helixtrack/core/internal/config"
	"github.com/helixtrack/core/internal/constants"
	"github.com/helixtrack/core/internal/database"
	"github.com/helixtrack/core/internal/handlers"
	"github.com/helixtrack/core/internal/logger"
	"github.com/helixtrack/core/internal/middleware"
	"github.com/helixtrack/core/internal/repository"
	"github.com/helixtrack/core/internal/seed"
	"github.com/helixtrack/core/internal/services"
	"github.com/spf13/pflag"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", false, os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	addr := pflag.String("addr", cfg.ListenAddr, "address to listen on")
	seedFile := pflag.String("seed", cfg.SeedFile, "YAML seed file applied after migrations")
	seedDefaults := pflag.Bool("seed-defaults", false, "apply the built-in statuses, types, permissions and workflow")
	migrateOnly := pflag.Bool("migrate-only", false, "run migrations and seeding, then exit")
	pflag.Parse()

	log := logger.New(cfg.LogLevel, cfg.LogPretty, os.Stdout)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	db := database.GetDB()

	// Run migrations
	if err := database.Migrate(db, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Initialize services
	ticketRepo := repository.NewTicketRepository(db)
	audit := services.NewAuditService(repository.NewAuditRepository(db), log)
	relations := services.NewRelationService(db, audit, log)
	workflows := services.NewWorkflowService(repository.NewWorkflowRepository(db), ticketRepo, audit, log)
	permissions := services.NewPermissionService(db, repository.NewPermissionRepository(db), audit, log)

	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	seeder := seed.NewSeeder(db, workflows, log)
	if *seedDefaults {
		f, err := seed.Parse(bytes.NewReader(seed.Defaults))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to parse built-in seed")
		}
		if _, err := seeder.Apply(f); err != nil {
			log.Fatal().Err(err).Msg("failed to apply built-in seed")
		}
	}
	if *seedFile != "" {
		f, err := seed.LoadFile(*seedFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", *seedFile).Msg("failed to load seed file")
		}
		if _, err := seeder.Apply(f); err != nil {
			log.Fatal().Err(err).Str("file", *seedFile).Msg("failed to apply seed file")
		}
	}
	if *migrateOnly {
		log.Info().Msg("migrations complete, exiting")
		return
	}

	// Initialize Gin router
	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,                        // Redis pool size
		"tcp",                     // network type
		redisAddr,                 // Redis address from config
		"",                        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatal().Err(err).Str("addr", redisAddr).Msg("failed to create Redis store")
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	handlers.RegisterRoutes(r, handlers.Dependencies{
		DB:          db,
		Auth:        services.NewAuthService(repository.NewUserRepository(db), audit, log),
		Tokens:      services.NewTokenService(cfg.JWTSecret, cfg.JWTTTL),
		Tickets:     services.NewTicketService(db, ticketRepo, workflows, relations, audit, aiService, log),
		Workflows:   workflows,
		Relations:   relations,
		Permissions: permissions,
		Audit:       audit,
		Guard:       middleware.NewPermissionGuard(permissions, cfg.PermissionsEnforced, log),
	})

	// Start server
	log.Info().Str("addr", *addr).Bool("permissions_enforced", cfg.PermissionsEnforced).Msg("server starting")
	if err := r.Run(*addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pillpal-backend/internal/analytics"
	"pillpal-backend/internal/config"
	"pillpal-backend/internal/handlers"
	"pillpal-backend/internal/middleware"
	"pillpal-backend/internal/repository"
	"pillpal-backend/internal/repository/memory"
	"pillpal-backend/internal/services"
	"pillpal-backend/internal/validation"
)

func Run() {
	// Load configuration
	path := os.Getenv("PILLPAL_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Stores: PostgreSQL with sample data fallback, or sample data only
	stores := memory.NewSampleStores(time.Now())
	var db *pgxpool.Pool
	if cfg.Database.Configured() {
		db, err = repository.Open(ctx, cfg.Database.DSN())
		if err != nil {
			log.Warn().Err(err).Msg("Database unavailable, serving sample data")
		} else {
			defer db.Close()
			log.Info().Msg("Database connection established")
			stores = repository.WithFallback(repository.NewPostgresStores(db), stores)
		}
	} else {
		log.Info().Msg("No database configured, serving sample data")
	}

	// Optional integrations
	var uploader services.PhotoUploader
	if cfg.AWS.S3Bucket != "" {
		s3Uploader, err := services.NewS3Uploader(ctx, cfg.AWS)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create S3 uploader")
		}
		uploader = s3Uploader
	}

	var push services.PushSender = services.LogPushSender{}
	if cfg.APNs.Enabled {
		apns, err := services.NewAPNsSender(cfg.APNs)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create APNs sender")
		}
		push = apns
	}

	var verifier *oidc.IDTokenVerifier
	if cfg.OIDC.Enabled {
		verifier, err = services.NewOIDCVerifier(ctx, cfg.OIDC)
		if err != nil {
			log.Fatal().Err(err).Str("issuer", cfg.OIDC.Issuer).Msg("Failed to discover OIDC provider")
		}
	}

	// Initialize services
	v := validation.New()
	loc := cfg.Analytics.Location()
	wsHub := services.NewWSHub()

	userService := services.NewUserService(stores.Users, stores.Profiles, cfg.JWT, verifier, v)
	medicationService := services.NewMedicationService(stores.Medications, wsHub, v)
	adherenceService := services.NewAdherenceService(stores.Adherence, stores.Medications, wsHub, v, loc)
	analyticsService := services.NewAnalyticsService(stores.Adherence, analytics.NewEngine(loc), cfg.Analytics.Window)
	notificationService := services.NewNotificationService(stores.Preferences, stores.Notifications, stores.Users, wsHub, push, v)
	verificationService := services.NewVerificationService(stores.Medications, adherenceService, uploader, wsHub, v, cfg.Verification)

	if cfg.Reminders.Enabled {
		reminders := services.NewReminderService(stores.Medications, notificationService, cfg.Reminders.Interval)
		go reminders.Run(ctx)
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	defer rateLimiter.Stop()

	var pinger handlers.Pinger
	if db != nil {
		pinger = db
	}

	// Setup router
	router := handlers.NewRouter(handlers.Routes{
		Users:         handlers.NewUserHandler(userService),
		Medications:   handlers.NewMedicationHandler(medicationService, adherenceService),
		Adherence:     handlers.NewAdherenceHandler(adherenceService),
		Analytics:     handlers.NewAnalyticsHandler(analyticsService),
		Notifications: handlers.NewNotificationHandler(notificationService),
		Verifications: handlers.NewVerificationHandler(verificationService),
		WebSocket:     handlers.NewWebSocketHandler(wsHub, userService, verificationService),
		Health:        handlers.NewHealthHandler(pinger),
		Tokens:        userService,
		RateLimiter:   rateLimiter,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	<-ctx.Done()

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	wsHub.Close()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

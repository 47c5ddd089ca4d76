package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/studiofit/gym-assistant-go/internal/agent"
	"github.com/studiofit/gym-assistant-go/internal/config"
	"github.com/studiofit/gym-assistant-go/internal/conversation"
	"github.com/studiofit/gym-assistant-go/internal/database"
	"github.com/studiofit/gym-assistant-go/internal/handler"
	"github.com/studiofit/gym-assistant-go/internal/jobs"
	"github.com/studiofit/gym-assistant-go/internal/llm"
	"github.com/studiofit/gym-assistant-go/internal/middleware"
	"github.com/studiofit/gym-assistant-go/internal/redis"
	"github.com/studiofit/gym-assistant-go/internal/repository"
	"github.com/studiofit/gym-assistant-go/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	if err := db.Migrate(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to apply schema")
	}
	if cfg.SeedDemoData {
		if err := db.SeedDemoData(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("failed to seed demo data")
		}
	}

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	memberRepo := repository.NewMemberRepository(db.DB)
	scheduleRepo := repository.NewScheduleRepository(db.DB)
	bookingRepo := repository.NewBookingRepository(db)

	convStore := conversation.NewStore(redisClient, cfg.HistoryLimit, cfg.HistoryTTL(), cfg.ProfileTTL())

	provider := llm.NewOpenAI(llm.OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Timeout: config.ModelCallTimeout,
	})

	scheduleService := service.NewScheduleService(scheduleRepo)
	bookingService := service.NewBookingService(bookingRepo)
	whatsappService := service.NewWhatsAppService(cfg)
	rateLimiter := service.NewRateLimiter(redisClient, cfg.RateLimitPerMin)

	registry := agent.BuildRegistry(scheduleService, bookingService)
	loop := agent.New(provider, registry, convStore, cfg.MaxToolRounds)

	signatureMiddleware := middleware.NewMetaSignatureMiddleware(cfg.MetaAppSecret)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)

	webhookHandler := handler.NewWebhookHandler(
		cfg.MetaVerifyToken, memberRepo, convStore, rateLimiter, loop, whatsappService,
	)
	calendarHandler := handler.NewCalendarHandler(bookingService)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Get("/webhook", webhookHandler.Verify)
	r.With(signatureMiddleware.Handler).Post("/webhook", webhookHandler.Receive)

	r.Get("/bookings/{bookingID}/calendar.ics", calendarHandler.Download)

	cleanupJob := jobs.NewCleanupJob(
		scheduleRepo, bookingRepo, cfg.SessionRetention(), config.CleanupJobInterval,
	)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
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

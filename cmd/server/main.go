package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/edumaster/edumaster-web/internal/config"
	"github.com/edumaster/edumaster-web/internal/edumaster"
	"github.com/edumaster/edumaster-web/internal/examflow"
	"github.com/edumaster/edumaster-web/internal/handler"
	"github.com/edumaster/edumaster-web/internal/logger"
	"github.com/edumaster/edumaster-web/internal/router"
	"github.com/edumaster/edumaster-web/internal/session"
	"github.com/edumaster/edumaster-web/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("api", cfg.APIBaseURL).
		Msg("Starting EduMaster Web")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Session Store (Redis or in-process) ───────────────────────────
	var store session.Store
	if cfg.RedisURL != "" {
		rdb, err := session.NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		store = session.NewRedisStore(rdb, cfg.SessionTTL)
	} else {
		log.Warn().Msg("REDIS_URL not set, sessions held in memory")
		store = session.NewMemoryStore(cfg.SessionTTL)
	}

	// ─── Remote API Client ─────────────────────────────────────────────
	api := edumaster.New(cfg.APIBaseURL, cfg.APITimeout, log)

	// ─── Services ──────────────────────────────────────────────────────
	sessions := session.NewManager(store, api, log)
	flow := examflow.NewManager(func(token string) examflow.ExamAPI {
		return api.WithToken(token)
	}, cfg.DefaultExamMinutes, log)

	// ─── Handlers ──────────────────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(sessions, api, cfg, log),
		Lesson:   handler.NewLessonHandler(sessions, api, cfg, log),
		Exam:     handler.NewExamHandler(sessions, api, cfg, log),
		TakeExam: handler.NewTakeExamHandler(flow, sessions, cfg, log),
		Admin:    handler.NewAdminHandler(sessions, api, cfg, log),
		WS:       handler.NewWSHandler(flow, log, cfg.AllowedOrigins),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(sessions, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the countdowns of any attempts still open.
	flow.CloseAll()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/oneminute/oneminute-go/internal/clipboard"
	"github.com/oneminute/oneminute-go/internal/config"
	"github.com/oneminute/oneminute-go/internal/handler"
	"github.com/oneminute/oneminute-go/internal/logging"
	"github.com/oneminute/oneminute-go/internal/metrics"
	"github.com/oneminute/oneminute-go/internal/middleware"
	"github.com/oneminute/oneminute-go/internal/repository"
	"github.com/oneminute/oneminute-go/internal/service"
	"github.com/oneminute/oneminute-go/internal/session"
)

const sweepInterval = time.Minute

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()
	logging.NewLogger(cfg.LogLevel, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	defaults, err := config.LoadDefaults(cfg.DefaultsFile)
	if err != nil {
		slog.Error("invalid generator defaults", "error", err)
		os.Exit(1)
	}

	cb, err := clipboard.New(cfg.Clipboard)
	if err != nil {
		slog.Error("invalid clipboard setting", "error", err)
		os.Exit(1)
	}

	var store service.PreferenceStore
	if cfg.DatabaseDSN == "" {
		slog.Info("DATABASE_DSN not set, sessions are kept in memory only")
	} else if db, err := repository.NewDB(ctx, cfg.DatabaseDSN); err != nil {
		slog.Warn("database connection failed, sessions are kept in memory only", "error", err)
	} else {
		defer db.Close()
		prefs := repository.NewPreferenceRepository(db)
		if err := prefs.EnsureSchema(ctx); err != nil {
			slog.Warn("preferences schema unavailable, sessions are kept in memory only", "error", err)
		} else {
			store = prefs
		}
	}

	registry := session.NewRegistry(cfg.SessionTTL)
	go registry.Run(ctx, sweepInterval)
	metrics.RegisterActiveSessions(registry.Len)

	genService := service.NewGeneratorService(defaults)
	sessionService := service.NewSessionService(registry, store, service.SessionConfig{
		Clipboard:   cb,
		AckDelay:    cfg.CopyAckDelay,
		TokenSecret: cfg.SessionSecret,
		TokenExpiry: cfg.TokenExpiry,
		Defaults:    defaults,
	})

	r := handler.NewRouter(handler.Routes{
		Generator:   handler.NewGeneratorHandler(genService),
		Sessions:    handler.NewSessionHandler(sessionService),
		Events:      handler.NewEventsHandler(sessionService, cfg.AllowedOrigins),
		TokenSecret: cfg.SessionSecret,
		RateLimit:   middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst),
		Metrics:     metrics.Handler(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "persistence", store != nil)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

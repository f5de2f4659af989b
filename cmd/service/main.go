// cmd/service/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"portfolio-backend/internal/api"
	"portfolio-backend/internal/cache"
	"portfolio-backend/internal/config"
	"portfolio-backend/internal/contact"
	"portfolio-backend/internal/github"
	"portfolio-backend/internal/model"
	"portfolio-backend/internal/ratelimit"
	"portfolio-backend/internal/store"
	"portfolio-backend/internal/syncer"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Application startup error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Initialize structured logger
	logLevel := new(slog.LevelVar)
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// 2. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setLogLevel(cfg.LogLevel, logLevel)
	logger.Info("Configuration loaded successfully", "githubConfigured", cfg.GithubConfigured())

	// 3. Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 4. Initialize database connection and run migrations
	dbpool, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbpool.Close()
	logger.Info("Database connection established")

	if err := runMigrations(cfg.DBURL); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	logger.Info("Database migrations applied successfully")

	// 5. Initialize application components
	cacheStore := cache.NewStore(dbpool)
	settings := store.NewSettings(dbpool)
	overrides := store.NewOverrides(dbpool)
	posts := store.NewPosts(dbpool)
	messages := store.NewMessages(dbpool)
	analytics := store.NewAnalytics(dbpool)

	ghClient := github.NewClient(cfg.GithubToken, logger)
	syncService := syncer.New(cfg.GithubUsername, cfg.GithubToken, ghClient, cacheStore,
		syncer.OverrideLoader(overrides.List), cfg.ReposTTL, cfg.CommitsTTL, logger)

	limiter := ratelimit.Default(cfg.RedisAddr, cfg.RedisPassword, cfg.RateLimit, cfg.RateWindow, logger)
	contactService := contact.NewService(messages, limiter, logger)

	router := api.NewRouter(api.Deps{
		Sync:            syncService,
		Contact:         contactService,
		Settings:        settings,
		Overrides:       overrides,
		Posts:           posts,
		Messages:        messages,
		Analytics:       analytics,
		FallbackProfile: fallbackProfile(cfg),
		AdminUsername:   cfg.AdminUsername,
		AdminPassword:   cfg.AdminPassword,
		Logger:          logger,
	})

	// 6. Start the HTTP server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 7. Wait for shutdown signal
	select {
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}
	logger.Info("Shutdown signal received. Exiting.")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

func fallbackProfile(cfg *config.Config) model.PublicProfile {
	socials := map[string]string{}
	if cfg.GithubUsername != "" {
		socials["GitHub"] = "https://github.com/" + cfg.GithubUsername
	}
	return model.PublicProfile{
		Name:     cfg.SiteName,
		Title:    cfg.SiteRole,
		Bio:      cfg.SiteHeadline,
		Location: cfg.SiteLocation,
		Email:    cfg.SiteEmail,
		Socials:  socials,
	}
}

func runMigrations(dbURL string) error {
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func setLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}

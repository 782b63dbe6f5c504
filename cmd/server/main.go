package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/blood-eligibility-server/internal/api"
	"github.com/blood-eligibility-server/internal/cache"
	"github.com/blood-eligibility-server/internal/config"
	"github.com/blood-eligibility-server/internal/database"
	"github.com/blood-eligibility-server/internal/domain"
	"github.com/blood-eligibility-server/internal/feedback"
	"github.com/blood-eligibility-server/internal/model"
	"github.com/blood-eligibility-server/internal/service"
)

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Model artifact handle, shared read-only by all requests.
	artifacts := model.NewHandle(cfg.Model, logger)
	if cfg.Model.PreloadOnStart {
		// Startup load is best-effort: a missing artifact surfaces as
		// MODEL_UNAVAILABLE on the first decision request instead.
		if _, err := artifacts.Get(ctx); err != nil {
			logger.WithError(err).Warn("Model artifact not loaded at startup")
		}
	}

	var verdictCache service.VerdictCache
	if cfg.Cache.Enabled {
		vc, err := cache.New(cfg.Cache, logger)
		if err != nil {
			log.Fatalf("Failed to create verdict cache: %v", err)
		}
		defer vc.Close()
		verdictCache = vc
	}

	engine := service.NewEngine(logger, artifacts, verdictCache)

	feedbackStore, db := setupFeedback(ctx, cfg.Database, logger)
	if feedbackStore != nil {
		defer feedbackStore.Close()
	}
	if db != nil {
		defer db.Close()
	}

	server := api.NewServer(api.Options{
		Logger:        logger,
		ConfigManager: configManager,
		Engine:        engine,
		Artifacts:     artifacts,
		FeedbackStore: feedbackStore,
		DB:            db,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server stopped with error")
	}

	logger.Info("Server stopped")
}

// setupFeedback builds the configured feedback store. A store failure is
// fatal only for the postgres driver; the service can run without
// feedback entirely.
func setupFeedback(ctx context.Context, cfg domain.DatabaseConfig, logger *logrus.Logger) (feedback.Store, *database.DB) {
	switch cfg.Driver {
	case "sqlite":
		store, err := feedback.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			logger.WithError(err).Warn("SQLite feedback store unavailable, feedback endpoints disabled")
			return nil, nil
		}
		return store, nil

	case "postgres":
		runner, err := database.NewMigrationRunner(cfg.URL, cfg.MigrationsPath, logger)
		if err != nil {
			log.Fatalf("Failed to create migration runner: %v", err)
		}
		if err := runner.Up(ctx); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		runner.Close()

		db, err := database.NewConnection(ctx, cfg, logger)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}

		store, err := feedback.NewPostgresStoreFromURL(cfg.URL)
		if err != nil {
			db.Close()
			log.Fatalf("Failed to create postgres feedback store: %v", err)
		}
		return store, db
	}

	return nil, nil
}

func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garnizeh/mentorship/api"
	dbfs "github.com/garnizeh/mentorship/db"
	"github.com/garnizeh/mentorship/internal/config"
	"github.com/garnizeh/mentorship/internal/db"
)

// Set through -ldflags "-X main.version=... -X main.commit=... -X main.buildTime=...".
var (
	version   = ""
	commit    = ""
	buildTime = ""
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	var envFile = flag.String("env-file", ".env", "Optional dotenv file loaded before the environment is read")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		slog.Error("failed to load env file", slog.Any("err", err))
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", slog.Any("err", err))
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	api.SetLogger(logger)

	info := api.BuildVersion(version, commit, buildTime)
	logger.Info("starting mentorship server",
		slog.String("version", info.GitVersion),
		slog.String("built", info.BuildDate),
		slog.String("env", cfg.Env),
	)

	ctx := context.Background()

	// Open database connection
	database, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		logger.Error("failed to open DB", slog.Any("err", err))
		os.Exit(1)
	}
	if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
		logger.Error("failed to migrate DB", slog.Any("err", err))
		_ = database.Close()
		os.Exit(1)
	}

	handler, err := api.SetupRoutes(cfg, info, database)
	if err != nil {
		logger.Error("failed to set up routes", slog.Any("err", err))
		_ = database.Close()
		os.Exit(1)
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed to start", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("err", err))
	}

	// Close database connection
	if err := database.Close(); err != nil {
		logger.Error("error closing DB", slog.Any("err", err))
	}

	logger.Info("server exited")
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsDevelopment() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

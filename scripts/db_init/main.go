package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	dbfs "github.com/garnizeh/mentorship/db"
	"github.com/garnizeh/mentorship/internal/config"
	"github.com/garnizeh/mentorship/internal/db"
	"github.com/garnizeh/mentorship/internal/mentorship"
	"github.com/garnizeh/mentorship/internal/repository/sqlite"
	"github.com/garnizeh/mentorship/internal/seed"
)

func main() {
	configPath := flag.String("config", "", "Path to config YAML file")
	skipSeed := flag.Bool("no-seed", false, "Apply migrations only")
	flag.Parse()

	ctx := context.Background()
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	database, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
		fmt.Fprintf(os.Stderr, "Migration runner error: %v\n", err)
		os.Exit(1)
	}
	if *skipSeed {
		fmt.Println("Database migrated.")
		return
	}

	repo := sqlite.New(database, logger)
	opts := mentorship.Options{MaxWorkload: cfg.Mentorship.MaxWorkload, Logger: logger}
	seeder := seed.New(mentorship.NewAccounts(repo, opts), mentorship.NewDirectory(repo, opts), logger)

	res, err := seeder.Run(ctx, dbfs.SeedFiles, cfg.Admin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Seed error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database initialized successfully (admin created: %t, mentors created: %d, skipped: %d).\n",
		res.AdminCreated, res.MentorsCreated, res.MentorsSkipped)
}

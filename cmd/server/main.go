// Package main is the entry point for the repository explorer server.
//
// The main package is kept minimal. Its job is to:
// 1. Read configuration from environment variables
// 2. Create the logger
// 3. Start the application
//
// Everything else lives in internal/ (server, handler, service, ...).
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/repo-explorer/internal/config"
	"github.com/sakif/repo-explorer/internal/logging"
	"github.com/sakif/repo-explorer/internal/server"
)

func main() {
	// === 1. READ CONFIGURATION ===
	// os.Getenv is passed in so config.Load can be tested without touching
	// the real environment.
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		// The configured logger doesn't exist yet.
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	logger, err := logging.New(os.Stdout, logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		App:    logging.AppName,
	})
	if err != nil {
		slog.Error("invalid logging configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.SetDefault(logger)

	// === 3. DATABASE DIRECTORY ===
	// os.MkdirAll is `mkdir -p`. An in-memory database needs no directory.
	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	if cfg.GitHubToken == "" {
		logger.Warn("GITHUB_TOKEN not set; unauthenticated requests are limited to 60 per hour")
	}

	// === 4. CREATE AND START THE SERVER ===
	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

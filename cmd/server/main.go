// Package main is the entry point for the shareit server.
//
// MAIN PACKAGE IN GO:
// The main package should be kept minimal. Its job is to:
// 1. Read configuration (environment variables, see internal/config)
// 2. Create dependencies (logger, data directory)
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server, internal/service, etc.).
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/shareit/internal/config"
	"github.com/sakif/shareit/internal/logger"
	"github.com/sakif/shareit/internal/server"
)

func main() {
	// === 1. READ CONFIGURATION ===
	// Load never fails on a missing variable, only on one it cannot make
	// sense of (e.g. LOG_LEVEL=loud). We have no logger yet, so use the
	// default one to report that.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	// LOG_FORMAT=json for log shippers, text for humans.
	log := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	// === 3. DATABASE PATH ===
	// os.MkdirAll creates all parent directories if needed (like `mkdir -p`).
	// An in-memory database has no directory to create.
	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			log.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	// === 4. CREATE AND START THE SERVER ===
	srv, err := server.New(cfg, log)
	if err != nil {
		log.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		log.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

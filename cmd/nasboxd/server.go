package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/vmunix/nasbox/internal/api"
	"github.com/vmunix/nasbox/internal/config"
	"github.com/vmunix/nasbox/internal/folderlock"
	"github.com/vmunix/nasbox/internal/history"
	"github.com/vmunix/nasbox/internal/magnet"
	"github.com/vmunix/nasbox/internal/migrations"
	"github.com/vmunix/nasbox/internal/server"
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func runServer(configPath string) error {
	// Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Create logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))

	// Ensure database directory exists
	dbDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}

	// Open database
	db, err := sql.Open("sqlite", cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() { _ = db.Close() }()

	// Run migrations
	if err := migrations.Apply(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	moveMode, err := cfg.Files.MoveMode()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	deps := api.ServerDeps{
		History: history.NewStore(db),
		Locker:  folderlock.New(cfg.Files.LockDir),
	}

	// Browser is optional; the download endpoint answers 503 without it.
	if cfg.Browser.Enabled {
		if cfg.Browser.Install {
			logger.Info("installing browser driver")
			if err := magnet.InstallPlaywright(); err != nil {
				return fmt.Errorf("install browser: %w", err)
			}
		}
		launcher := magnet.PlaywrightLauncher(magnet.PlaywrightConfig{
			Headless:   !cfg.Browser.Headed,
			NavTimeout: cfg.Browser.NavTimeout,
		})
		deps.Submitter = magnet.NewNASSubmitter(launcher, magnet.Options{
			Selectors: selectorsFromConfig(cfg.Browser.Selectors),
			StepDelay: cfg.Browser.StepDelay,
		}, logger.With("component", "magnet"))
	}

	srv, err := api.New(deps, api.Config{
		Version:       version,
		AllowedRoots:  cfg.Files.AllowedRoots,
		DefaultPrefix: cfg.Files.DefaultPrefix,
		MoveMode:      moveMode,
		CORSOrigins:   cfg.Server.CORSOrigins,
		StaticDir:     cfg.Server.StaticDir,
	}, logger.With("component", "api"))
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("server starting",
		"addr", addr,
		"config", configPath,
		"database", cfg.Database.Path,
		"browser", cfg.Browser.Enabled,
		"allowed_roots", len(cfg.Files.AllowedRoots),
		"log_level", cfg.Server.LogLevel,
	)

	// Wait for interrupt signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := server.NewRunner(srv.Handler(), server.Config{Addr: addr}, logger.With("component", "http"))
	if err := runner.Run(ctx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}

func selectorsFromConfig(c config.SelectorsConfig) magnet.Selectors {
	return magnet.Selectors{
		NewTask:        c.NewTask,
		Dialog:         c.Dialog,
		Input:          c.Input,
		ParseButton:    c.ParseButton,
		DownloadButton: c.DownloadButton,
	}
}

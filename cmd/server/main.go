// Package main implements the entry point for the task manager API server:
// authenticated task CRUD and querying, admin user management, and a
// background scheduler that emails deadline reminders.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a goose migration command (up, down, status, version, reset, redo) and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *migrateCmd); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func run(ctx context.Context, migrateCmd string) error {
	cfg, l, err := initializeApp()
	if err != nil {
		return err
	}

	st, err := openStorage(ctx, cfg, l)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}

	if migrateCmd != "" {
		defer func() { _ = st.Close() }()
		if st.db == nil {
			return fmt.Errorf("migrations require the postgres driver")
		}
		return runMigrations(ctx, st.db.DB, migrateCmd, l)
	}

	if st.db != nil && cfg.Database.AutoMigrate {
		if err := runMigrations(ctx, st.db.DB, "up", l); err != nil {
			_ = st.Close()
			return err
		}
	}

	app, err := newApplication(cfg, l, st)
	if err != nil {
		_ = st.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if cfg.Server.SeedDemoData {
		if err := seedDemoData(ctx, st, app.hasher, l); err != nil {
			l.Error("failed to seed demo data", "error", err)
		}
	}

	return app.Run(ctx)
}

// initializeApp loads configuration and sets up structured logging.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"store", cfg.Database.Driver)
	if cfg.Database.URL != "" {
		l.Debug("database configuration", "url", maskDatabaseURL(cfg.Database.URL))
	}
	return cfg, l, nil
}

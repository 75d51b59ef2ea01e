package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/phrazzld/tasker-api/internal/platform/memory"
	"github.com/phrazzld/tasker-api/internal/platform/postgres"
	"github.com/phrazzld/tasker-api/internal/store"
)

const pingTimeout = 5 * time.Second

// storage is the selected store backend. db is nil for the memory driver.
type storage struct {
	db    *sqlx.DB
	pool  *pgxpool.Pool
	users store.UserStore
	tasks store.TaskStore

	pgUsers *postgres.PostgresUserStore
	pgTasks *postgres.PostgresTaskStore
}

// openStorage connects the backend named by cfg.Database.Driver.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	if cfg.Database.Driver == "memory" {
		logger.Warn("using in-memory store; data is lost on restart")
		return &storage{
			users: memory.NewUserStore(),
			tasks: memory.NewTaskStore(),
		}, nil
	}

	pool, db, err := setupAppDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	pgUsers := postgres.NewPostgresUserStore(db, logger)
	pgTasks := postgres.NewPostgresTaskStore(db, logger)
	return &storage{
		db:      db,
		pool:    pool,
		users:   pgUsers,
		tasks:   pgTasks,
		pgUsers: pgUsers,
		pgTasks: pgTasks,
	}, nil
}

// setupAppDatabase opens a pgx pool and exposes it through database/sql
// so sqlx and goose can share it.
func setupAppDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*pgxpool.Pool, *sqlx.DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	if cfg.QueryTimeoutSec > 0 {
		poolCfg.ConnConfig.RuntimeParams["statement_timeout"] =
			strconv.Itoa(cfg.QueryTimeoutSec * 1000)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx")
	logger.Info("database connection established",
		slog.String("url", maskDatabaseURL(cfg.URL)),
		slog.Int("max_conns", int(poolCfg.MaxConns)))
	return pool, db, nil
}

// PingContext reports database reachability for the health endpoint.
func (s *storage) PingContext(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the database connections, if any.
func (s *storage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.pool.Close()
	return err
}

// maskDatabaseURL masks the password in a database URL for safe logging.
func maskDatabaseURL(dbURL string) string {
	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return "invalid-url"
	}
	if parsedURL.User != nil {
		if _, hasPassword := parsedURL.User.Password(); hasPassword {
			parsedURL.User = url.UserPassword(parsedURL.User.Username(), "xxxxx")
		}
		return parsedURL.String()
	}
	return dbURL
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/phrazzld/task-manager-api/internal/config"
	"github.com/phrazzld/task-manager-api/internal/platform/memory"
	"github.com/phrazzld/task-manager-api/internal/platform/postgres"
	"github.com/phrazzld/task-manager-api/internal/platform/sqlite"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// appStore is the user store selected by configuration together with the
// connection that backs it, if any.
type appStore struct {
	users store.UserStore
	db    *sql.DB
}

// Close releases the underlying database connection.
func (s *appStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// openStore connects to the configured backend and brings its schema up to
// date.
func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*appStore, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory user store, accounts are lost on restart")
		return &appStore{users: memory.NewUserStore()}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		if err := sqlite.Migrate(ctx, db, logger); err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("database connection established", "driver", cfg.Driver)
		return &appStore{users: sqlite.NewUserStore(db), db: db}, nil

	case config.DriverPostgres:
		db, err := setupPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db, logger); err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("database connection established", "driver", cfg.Driver)
		return &appStore{users: postgres.NewPostgresUserStore(db), db: db}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// setupPostgres opens a pgx-backed pool and verifies connectivity.
func setupPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

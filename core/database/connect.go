package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/m3rciful/pomobot/core/logger"
)

const connectTimeout = 5 * time.Second

// Connect opens a pool for cfg and pings it. SQLite parent directories are
// created on demand.
func Connect(cfg Config) (*sqlx.DB, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("db connect: no driver configured")
	}
	if cfg.Driver == DriverSQLite {
		if err := ensureDir(cfg.Path); err != nil {
			return nil, err
		}
	}

	log := logger.DB.With(
		slog.String("driver", cfg.Driver),
		slog.String("host", cfg.Host),
		slog.String("port", cfg.Port),
		slog.String("db", cfg.target()),
	)
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.DSN())
	if err != nil {
		log.Error("db connect failed",
			slog.String("event", "db.connect"),
			slog.Duration("duration", logger.Took(start)),
			slog.Any("err", err),
		)
		return nil, fmt.Errorf("db connect: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)

	log.Info("db connected",
		slog.String("event", "db.connect"),
		slog.Int("pool_open", cfg.MaxConnections),
		slog.Duration("duration", logger.Took(start)),
	)
	return db, nil
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("db connect: create %s: %w", dir, err)
	}
	return nil
}

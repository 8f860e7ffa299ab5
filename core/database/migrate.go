package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/m3rciful/pomobot/core/logger"
)

const (
	postgresWait = 30 * time.Second
	postgresPoll = 2 * time.Second
	previewFiles = 6
)

// RunMigrations applies every up migration found at the root of migrations.
// Postgres is polled until it accepts connections before migrating.
func RunMigrations(cfg Config, migrations fs.FS) error {
	if !cfg.Enabled() {
		return nil
	}
	if migrations == nil {
		return errors.New("db migrate: no migrations source provided")
	}
	if cfg.Driver == DriverPostgres {
		ctx, cancel := context.WithTimeout(context.Background(), postgresWait)
		err := WaitForPostgres(ctx, cfg.DSN())
		cancel()
		if err != nil {
			logger.MIG.Error("db not ready", slog.String("event", "db.wait"), slog.Any("err", err))
			return fmt.Errorf("db migrate: database not ready: %w", err)
		}
	}

	files := upFiles(migrations)
	logger.MIG.Debug("migrations resolved", append([]any{
		slog.String("event", "resolve"),
		slog.String("driver", cfg.Driver),
	}, fileAttrs(files)...)...)

	src, err := iofs.New(migrations, ".")
	if err != nil {
		return fmt.Errorf("db migrate: open source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.MigrateURL())
	if err != nil {
		logger.MIG.Error("init failed", slog.String("event", "init"), slog.Any("err", err))
		return fmt.Errorf("db migrate: init: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.MIG.Warn("close failed", slog.String("event", "close"), slog.Any("err", errors.Join(srcErr, dbErr)))
		}
	}()

	from, _, _ := m.Version()
	start := time.Now()
	upErr := m.Up()
	took := logger.Took(start)
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		logger.MIG.Error("migration failed",
			slog.String("event", "apply"),
			slog.Any("err", upErr),
			slog.Duration("duration", took),
		)
		return fmt.Errorf("db migrate: up: %w", upErr)
	}
	to, _, _ := m.Version()

	applied := appliedBetween(files, uint64(from), uint64(to))
	if len(applied) > 0 {
		logger.MIG.Debug("applied files", append([]any{slog.String("event", "apply")}, fileAttrs(applied)...)...)
	}
	logger.MIG.Info("migrations summary",
		slog.String("event", "summary"),
		slog.Uint64("from_ver", uint64(from)),
		slog.Uint64("to_ver", uint64(to)),
		slog.Int("files", len(applied)),
		slog.Duration("duration", took),
	)
	return nil
}

// WaitForPostgres pings dsn until it answers or ctx is done.
func WaitForPostgres(ctx context.Context, dsn string) error {
	db, err := sql.Open(DriverPostgres, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	t := time.NewTicker(postgresPoll)
	defer t.Stop()
	for {
		err = db.PingContext(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for database: %w", errors.Join(ctx.Err(), err))
		case <-t.C:
		}
	}
}

func upFiles(fsys fs.FS) []string {
	names, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return nil
	}
	slices.Sort(names)
	return names
}

func fileAttrs(names []string) []any {
	attrs := []any{slog.Int("files_total", len(names))}
	if len(names) == 0 {
		return attrs
	}
	shown := names[:min(len(names), previewFiles)]
	attrs = append(attrs, slog.String("files_preview", strings.Join(shown, ", ")))
	if len(shown) < len(names) {
		attrs = append(attrs, slog.Bool("files_truncated", true))
	}
	return attrs
}

// fileVersion reads the numeric prefix golang-migrate uses as the version.
func fileVersion(name string) uint64 {
	prefix, _, _ := strings.Cut(path.Base(name), "_")
	v, _ := strconv.ParseUint(prefix, 10, 64)
	return v
}

func appliedBetween(files []string, from, to uint64) []string {
	var out []string
	for _, f := range files {
		if v := fileVersion(f); v > from && v <= to {
			out = append(out, f)
		}
	}
	return out
}

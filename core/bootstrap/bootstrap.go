// Package bootstrap brings up the process infrastructure: logging first,
// then the optional database with its migrations applied.
package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/pomobot/core/config"
	coredatabase "github.com/m3rciful/pomobot/core/database"
	"github.com/m3rciful/pomobot/core/logger"
)

// Options select what to bring up. The function fields default to the real
// logger, connector and migrator and exist so tests can stub them.
type Options struct {
	Config     *coreconfig.Config
	Database   coredatabase.Config
	Migrations fs.FS

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config, fs.FS) error
}

func (o *Options) defaults() {
	if o.LoggerInit == nil {
		o.LoggerInit = logger.InitLogger
	}
	if o.Connect == nil {
		o.Connect = coredatabase.Connect
	}
	if o.Migrate == nil {
		o.Migrate = coredatabase.RunMigrations
	}
}

// Result holds what Run opened. DB is nil when no driver is configured.
type Result struct {
	DB *sqlx.DB
}

// Close releases the database handle, if any.
func (r *Result) Close() error {
	if r == nil || r.DB == nil {
		return nil
	}
	return r.DB.Close()
}

// Run initializes the logger and, when enabled, the migrated database.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, errors.New("bootstrap: nil config provided")
	}
	opts.defaults()
	if err := opts.LoggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger: %w", err)
	}
	if !opts.Database.Enabled() {
		logger.DB.Info("database disabled", "event", "db.skip")
		return &Result{}, nil
	}

	db, err := opts.Connect(opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database: %w", err)
	}
	if err := opts.Migrate(opts.Database, opts.Migrations); err != nil {
		return nil, errors.Join(fmt.Errorf("bootstrap: migrations: %w", err), db.Close())
	}
	return &Result{DB: db}, nil
}

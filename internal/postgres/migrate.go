package postgres

import (
	"embed"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/studentaid/disbursement/internal/config"
	ierr "github.com/studentaid/disbursement/internal/errors"
	"github.com/studentaid/disbursement/internal/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator applies the embedded schema migrations
type Migrator struct {
	m      *migrate.Migrate
	logger *logger.Logger
}

// NewMigrator opens the embedded migration source against the configured database
func NewMigrator(cfg *config.Configuration, log *logger.Logger) (*Migrator, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to open embedded migrations").
			Mark(ierr.ErrSystem)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, cfg.Postgres.GetURL())
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to connect the migration runner").
			Mark(ierr.ErrDatabase)
	}
	return &Migrator{m: m, logger: log}, nil
}

// Up applies every pending migration
func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil && err != migrate.ErrNoChange {
		return ierr.WithError(err).WithHint("Failed to apply migrations").Mark(ierr.ErrDatabase)
	}
	mg.logVersion()
	return nil
}

// Down rolls back the given number of migrations
func (mg *Migrator) Down(steps int) error {
	if err := mg.m.Steps(-steps); err != nil && err != migrate.ErrNoChange {
		return ierr.WithError(err).WithHint("Failed to roll back migrations").Mark(ierr.ErrDatabase)
	}
	mg.logVersion()
	return nil
}

// Version returns the current schema version and whether it is dirty
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if err == migrate.ErrNilVersion {
		return 0, false, nil
	}
	return version, dirty, err
}

func (mg *Migrator) Close() {
	srcErr, dbErr := mg.m.Close()
	if srcErr != nil || dbErr != nil {
		mg.logger.Errorw("error closing migration runner", "source_error", srcErr, "database_error", dbErr)
	}
}

func (mg *Migrator) logVersion() {
	version, dirty, err := mg.Version()
	if err != nil {
		mg.logger.Warnw("could not read schema version", "error", err)
		return
	}
	mg.logger.Infow("schema migrated", "version", version, "dirty", dirty)
}

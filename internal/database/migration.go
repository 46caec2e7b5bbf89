package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/hightechgrafix/htg-shipping-tools/internal/repositories"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFiles embed.FS

// ExpectedTables lists the tables the handlers read from
var ExpectedTables = []string{"admins", "screen_print_pricing_grid"}

// MigrationManager handles database migrations
type MigrationManager struct {
	config *repositories.Config
	logger *logrus.Logger
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(config *repositories.Config, logger *logrus.Logger) *MigrationManager {
	if logger == nil {
		logger = logrus.New()
	}
	return &MigrationManager{
		config: config,
		logger: logger,
	}
}

// MigrationInfo contains information about a migration
type MigrationInfo struct {
	Version   uint
	Dirty     bool
	Applied   bool
	Timestamp time.Time
}

// RunMigrations runs all pending migrations
func (m *MigrationManager) RunMigrations(ctx context.Context) error {
	m.logger.WithField("driver", m.config.Driver).Info("Running database migrations...")

	mig, err := m.initMigrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize migrate: %w", err)
	}
	defer mig.Close()

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := mig.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	m.logger.WithFields(logrus.Fields{
		"version": version,
		"dirty":   dirty,
	}).Info("Migrations completed successfully")

	return nil
}

// RollbackMigration rolls back the last applied migration
func (m *MigrationManager) RollbackMigration(ctx context.Context) error {
	m.logger.Info("Rolling back last migration...")

	mig, err := m.initMigrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize migrate: %w", err)
	}
	defer mig.Close()

	if err := mig.Steps(-1); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	version, _, err := mig.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get new migration version: %w", err)
	}

	m.logger.WithField("new_version", version).Info("Rollback completed successfully")
	return nil
}

// GetMigrationStatus returns the current migration status
func (m *MigrationManager) GetMigrationStatus(ctx context.Context) (*MigrationInfo, error) {
	mig, err := m.initMigrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize migrate: %w", err)
	}
	defer mig.Close()

	version, dirty, err := mig.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, fmt.Errorf("failed to get migration version: %w", err)
	}

	return &MigrationInfo{
		Version:   version,
		Dirty:     dirty,
		Applied:   err == nil,
		Timestamp: time.Now(),
	}, nil
}

// ValidateSchema checks that every expected table exists
func (m *MigrationManager) ValidateSchema(ctx context.Context) error {
	m.logger.Info("Validating database schema...")

	db, err := m.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	query := `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
	if m.config.Driver == repositories.DriverPostgres {
		query = `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1`
	}

	for _, table := range ExpectedTables {
		var count int
		if err := db.QueryRowContext(ctx, query, table).Scan(&count); err != nil {
			return fmt.Errorf("failed to check table %s: %w", table, err)
		}
		if count == 0 {
			return fmt.Errorf("expected table %s not found", table)
		}
	}

	m.logger.Info("Schema validation completed successfully")
	return nil
}

// open opens a dedicated connection; migrate closes it together with the instance
func (m *MigrationManager) open(ctx context.Context) (*sql.DB, error) {
	switch m.config.Driver {
	case repositories.DriverSQLite:
		return OpenSQLite(ctx, m.config, m.logger)
	case repositories.DriverPostgres:
		return OpenPostgres(ctx, m.config, m.logger)
	default:
		return nil, fmt.Errorf("%w: %q", repositories.ErrUnsupportedDriver, m.config.Driver)
	}
}

// initMigrate initializes the migrate instance for the configured driver.
// The driver is resolved first so an unknown one reports ErrUnsupportedDriver.
func (m *MigrationManager) initMigrate(ctx context.Context) (*migrate.Migrate, error) {
	db, err := m.open(ctx)
	if err != nil {
		return nil, err
	}

	source, err := iofs.New(migrationFiles, "migrations/"+m.config.Driver)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}

	var (
		driver     database.Driver
		driverName string
	)
	switch m.config.Driver {
	case repositories.DriverSQLite:
		driverName = "sqlite3"
		driver, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	default:
		driverName = "postgres"
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	}
	if err != nil {
		source.Close()
		db.Close()
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	mig, err := migrate.NewWithInstance("iofs", source, driverName, driver)
	if err != nil {
		source.Close()
		driver.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	mig.Log = migrateLogger{logger: m.logger}

	return mig, nil
}

// migrateLogger adapts logrus to migrate.Logger
type migrateLogger struct {
	logger *logrus.Logger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Debugf(format, v...)
}

func (l migrateLogger) Verbose() bool {
	return l.logger.IsLevelEnabled(logrus.DebugLevel)
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hightechgrafix/htg-shipping-tools/internal/repositories"
)

// DefaultSQLitePath is the local development database file
const DefaultSQLitePath = "./data/htg.db"

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Driver             string
	ConnectionString   string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	BusyTimeout        int
	SlowQueryThreshold time.Duration
	AutoMigrate        bool
}

// Validate validates the database configuration
func (c *DatabaseConfig) Validate() error {
	return c.ToRepositoryConfig().Validate()
}

// ToRepositoryConfig converts DatabaseConfig to repositories.Config.
// Unset pool sizes fall back to per-driver defaults: SQLite allows a single writer.
func (c *DatabaseConfig) ToRepositoryConfig() *repositories.Config {
	cfg := repositories.DefaultConfig()
	cfg.Driver = c.Driver
	cfg.DSN = c.ConnectionString
	cfg.AutoMigrate = c.AutoMigrate

	if c.Driver == repositories.DriverPostgres {
		cfg.MaxOpenConns = 10
		cfg.MaxIdleConns = 2
	}
	if c.MaxOpenConns > 0 {
		cfg.MaxOpenConns = c.MaxOpenConns
	}
	if c.MaxIdleConns > 0 {
		cfg.MaxIdleConns = c.MaxIdleConns
	}
	if c.ConnMaxLifetime > 0 {
		cfg.ConnMaxLifetime = c.ConnMaxLifetime
	}
	if c.BusyTimeout > 0 {
		cfg.BusyTimeout = c.BusyTimeout
	}
	if c.SlowQueryThreshold > 0 {
		cfg.SlowQueryThreshold = c.SlowQueryThreshold
	}

	return cfg
}

// EnsureDirectories creates the SQLite database directory
func (c *DatabaseConfig) EnsureDirectories() error {
	if c.Driver != repositories.DriverSQLite {
		return nil
	}
	dbDir := filepath.Dir(c.ConnectionString)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

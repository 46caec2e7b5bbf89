package repositories

import (
	"fmt"
	"time"
)

// Supported storage drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config represents repository configuration
type Config struct {
	// Driver specifies the database driver (postgres, sqlite)
	Driver string

	// DSN is the connection string, or the file path for SQLite
	DSN string

	// Pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// BusyTimeout for SQLite (in milliseconds)
	BusyTimeout int

	// SlowQueryThreshold is the threshold for logging slow queries
	SlowQueryThreshold time.Duration

	// AutoMigrate applies the embedded migrations on startup
	AutoMigrate bool
}

// DefaultConfig returns a local SQLite configuration
func DefaultConfig() *Config {
	return &Config{
		Driver:             DriverSQLite,
		DSN:                "./data/htg.db",
		MaxOpenConns:       1,
		MaxIdleConns:       1,
		ConnMaxLifetime:    time.Hour,
		BusyTimeout:        5000,
		SlowQueryThreshold: 200 * time.Millisecond,
		AutoMigrate:        true,
	}
}

// Validate validates the repository configuration
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedDriver, c.Driver)
	}

	if c.DSN == "" {
		return fmt.Errorf("database DSN is required for driver %s", c.Driver)
	}

	if c.MaxOpenConns < 0 || c.MaxIdleConns < 0 {
		return fmt.Errorf("connection pool sizes must not be negative")
	}

	return nil
}

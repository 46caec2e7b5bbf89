package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hightechgrafix/htg-shipping-tools/internal/repositories"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// OpenSQLite opens and pings a SQLite database described by cfg
func OpenSQLite(ctx context.Context, cfg *repositories.Config, logger *logrus.Logger) (*sql.DB, error) {
	absPath, err := filepath.Abs(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := BuildSQLiteDSN(absPath, cfg)

	logger.WithFields(logrus.Fields{
		"driver": "sqlite",
		"path":   absPath,
	}).Info("Creating SQLite connection")

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	configureConnectionPool(db, cfg, logger)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, repositories.ConnectionError(err)
	}

	return db, nil
}

// OpenPostgres opens a database/sql handle through lib/pq.
// Request paths use the pgx pool; this handle serves the migration tool.
func OpenPostgres(ctx context.Context, cfg *repositories.Config, logger *logrus.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}

	configureConnectionPool(db, cfg, logger)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, repositories.ConnectionError(err)
	}

	return db, nil
}

// BuildSQLiteDSN builds a SQLite DSN with options
func BuildSQLiteDSN(path string, cfg *repositories.Config) string {
	options := []string{"_foreign_keys=on", "_journal_mode=WAL"}

	if cfg.BusyTimeout > 0 {
		options = append(options, fmt.Sprintf("_busy_timeout=%d", cfg.BusyTimeout))
	}

	return fmt.Sprintf("%s?%s", path, strings.Join(options, "&"))
}

// configureConnectionPool configures the database connection pool
func configureConnectionPool(db *sql.DB, cfg *repositories.Config, logger *logrus.Logger) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	logger.WithFields(logrus.Fields{
		"max_open_conns":    cfg.MaxOpenConns,
		"max_idle_conns":    cfg.MaxIdleConns,
		"conn_max_lifetime": cfg.ConnMaxLifetime,
	}).Debug("Configured connection pool")
}

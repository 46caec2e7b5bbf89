package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hightechgrafix/htg-shipping-tools/internal/repositories"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// NewPool establishes a pgx connection pool for the configured DSN
func NewPool(ctx context.Context, cfg *repositories.Config, logger *logrus.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 && cfg.MaxIdleConns <= cfg.MaxOpenConns {
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, repositories.ConnectionError(err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, repositories.ConnectionError(err)
	}

	logger.WithFields(logrus.Fields{
		"host":      poolCfg.ConnConfig.Host,
		"database":  poolCfg.ConnConfig.Database,
		"max_conns": poolCfg.MaxConns,
	}).Info("Connected to postgres")

	return pool, nil
}

// base carries the pool and query logging shared by the postgres repositories
type base struct {
	pool          *pgxpool.Pool
	table         string
	logger        *logrus.Logger
	slowThreshold time.Duration
}

func newBase(pool *pgxpool.Pool, table string, logger *logrus.Logger) base {
	if logger == nil {
		logger = logrus.New()
	}
	return base{pool: pool, table: table, logger: logger, slowThreshold: 200 * time.Millisecond}
}

func (b base) logQuery(operation string, start time.Time, err error) {
	duration := time.Since(start)
	fields := logrus.Fields{
		"operation": operation,
		"table":     b.table,
		"duration":  duration,
	}

	switch {
	case err != nil:
		fields["error"] = err.Error()
		b.logger.WithFields(fields).Error("Query failed")
	case duration > b.slowThreshold:
		b.logger.WithFields(fields).Warn("Slow query")
	default:
		b.logger.WithFields(fields).Debug("Query executed")
	}
}

// wrap converts a pgx error into a repository error
func (b base) wrap(op, id string, err error) error {
	switch {
	case pgconn.Timeout(err):
		err = fmt.Errorf("%w: %w", repositories.ErrTimeout, err)
	case pgconn.SafeToRetry(err):
		err = fmt.Errorf("%w: %w", repositories.ErrUnavailable, err)
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		err = fmt.Errorf("%w: %w", repositories.ErrConnection, err)
	}

	return repositories.NewRepositoryError(op, b.table, id, err)
}

type poolHealth struct {
	pool *pgxpool.Pool
}

func (h poolHealth) Ping(ctx context.Context) error {
	if err := h.pool.Ping(ctx); err != nil {
		return repositories.ConnectionError(err)
	}
	return nil
}

// NewRepositoryContainer wires the postgres repositories around a pool.
// Closing the container closes the pool.
func NewRepositoryContainer(pool *pgxpool.Pool, logger *logrus.Logger) *repositories.RepositoryContainer {
	return repositories.NewRepositoryContainer(
		repositories.DriverPostgres,
		NewAdminRepository(pool, logger),
		NewPricingRepository(pool, logger),
		poolHealth{pool: pool},
		func() error {
			pool.Close()
			return nil
		},
	)
}

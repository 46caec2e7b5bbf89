package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hightechgrafix/htg-shipping-tools/internal/repositories"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *repositories.Config {
	t.Helper()
	cfg := repositories.DefaultConfig()
	cfg.DSN = filepath.Join(t.TempDir(), "test.db")
	return cfg
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

func TestMigrationManager_UpStatusDown(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	manager := NewMigrationManager(cfg, testLogger())

	require.NoError(t, manager.RunMigrations(ctx))
	require.NoError(t, manager.ValidateSchema(ctx))

	status, err := manager.GetMigrationStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(2), status.Version)
	assert.True(t, status.Applied)
	assert.False(t, status.Dirty)

	// Running again is a no-op
	require.NoError(t, manager.RunMigrations(ctx))

	require.NoError(t, manager.RollbackMigration(ctx))
	status, err = manager.GetMigrationStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(1), status.Version)

	assert.Error(t, manager.ValidateSchema(ctx), "pricing grid should be gone after rollback")
}

func TestMigrationManager_SchemaAcceptsPricingRows(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	logger := testLogger()

	require.NoError(t, NewMigrationManager(cfg, logger).RunMigrations(ctx))

	db, err := OpenSQLite(ctx, cfg, logger)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, `INSERT INTO screen_print_pricing_grid
		(min_quantity, max_quantity, color_count, price_per_piece, active) VALUES (50, 499, 2, '1.90', 1)`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO screen_print_pricing_grid
		(min_quantity, max_quantity, color_count, price_per_piece, active) VALUES (10, 5, 2, '1.00', 1)`)
	assert.Error(t, err, "max_quantity below min_quantity should violate the check constraint")
}

func TestMigrationManager_UnsupportedDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Driver = "mysql"

	ctx := context.Background()
	manager := NewMigrationManager(cfg, testLogger())

	err := manager.RunMigrations(ctx)
	assert.ErrorIs(t, err, repositories.ErrUnsupportedDriver)
	assert.NotContains(t, err.Error(), "file does not exist")

	assert.ErrorIs(t, manager.RollbackMigration(ctx), repositories.ErrUnsupportedDriver)

	_, err = manager.GetMigrationStatus(ctx)
	assert.ErrorIs(t, err, repositories.ErrUnsupportedDriver)

	assert.ErrorIs(t, manager.ValidateSchema(ctx), repositories.ErrUnsupportedDriver)
}

func TestBuildSQLiteDSN(t *testing.T) {
	cfg := repositories.DefaultConfig()
	cfg.BusyTimeout = 1500

	dsn := BuildSQLiteDSN("/tmp/x.db", cfg)
	assert.Equal(t, "/tmp/x.db?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=1500", dsn)
}

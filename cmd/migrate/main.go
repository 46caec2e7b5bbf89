package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"

	"github.com/hightechgrafix/htg-shipping-tools/internal/config"
	"github.com/hightechgrafix/htg-shipping-tools/internal/database"
	"github.com/hightechgrafix/htg-shipping-tools/internal/migration"
	"github.com/hightechgrafix/htg-shipping-tools/internal/repositories"

	"github.com/sirupsen/logrus"
)

func main() {
	var (
		driver  = flag.String("driver", "", "Database driver: sqlite or postgres (default from DB_DRIVER)")
		dsn     = flag.String("dsn", "", "Connection string (default from DB_CONNECTION_STRING)")
		action  = flag.String("action", "up", "Migration action: up, down, status, validate, seed")
		file    = flag.String("file", "./data/seed.json", "Seed file for the seed action")
		replace = flag.Bool("replace-pricing", false, "Replace the pricing grid when seeding")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	// Setup logger
	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if *driver != "" {
		cfg.Database.Driver = *driver
	}
	if *dsn != "" {
		cfg.Database.ConnectionString = *dsn
	}
	if err := cfg.Database.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid database configuration")
	}
	if err := cfg.Database.EnsureDirectories(); err != nil {
		logger.WithError(err).Fatal("Failed to create data directory")
	}

	logger.WithFields(logrus.Fields{
		"driver": cfg.Database.Driver,
		"action": *action,
	}).Info("Starting migration tool")

	ctx := context.Background()
	manager := database.NewMigrationManager(cfg.Database.ToRepositoryConfig(), logger)

	// Handle different actions
	switch *action {
	case "up":
		if err := manager.RunMigrations(ctx); err != nil {
			logger.WithError(err).Fatal("Migration up failed")
		}
	case "down":
		if err := manager.RollbackMigration(ctx); err != nil {
			logger.WithError(err).Fatal("Migration down failed")
		}
	case "status":
		if err := showMigrationStatus(ctx, manager); err != nil {
			logger.WithError(err).Fatal("Failed to get migration status")
		}
	case "validate":
		if err := manager.ValidateSchema(ctx); err != nil {
			logger.WithError(err).Fatal("Schema validation failed")
		}
		fmt.Println("Schema validation passed successfully")
	case "seed":
		if err := seed(ctx, cfg.Database.ToRepositoryConfig(), *file, *replace, logger); err != nil {
			logger.WithError(err).Fatal("Seed failed")
		}
	default:
		logger.WithField("action", *action).Fatal("Unknown action. Use: up, down, status, validate, seed")
	}

	logger.Info("Migration tool completed successfully")
}

func showMigrationStatus(ctx context.Context, manager *database.MigrationManager) error {
	status, err := manager.GetMigrationStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	fmt.Printf("Migration Status:\n")
	fmt.Printf("  Version: %d\n", status.Version)
	fmt.Printf("  Applied: %t\n", status.Applied)
	fmt.Printf("  Dirty: %t\n", status.Dirty)
	fmt.Printf("  Timestamp: %s\n", status.Timestamp.Format("2006-01-02 15:04:05"))

	return nil
}

func seed(ctx context.Context, cfg *repositories.Config, path string, replacePricing bool, logger *logrus.Logger) error {
	seedFile, err := migration.LoadSeedFile(path)
	if err != nil {
		return err
	}

	var db *sql.DB
	switch cfg.Driver {
	case repositories.DriverPostgres:
		db, err = database.OpenPostgres(ctx, cfg, logger)
	default:
		db, err = database.OpenSQLite(ctx, cfg, logger)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	result, err := migration.NewSeeder(db, cfg.Driver, logger).Apply(ctx, seedFile, migration.SeedOptions{ReplacePricing: replacePricing})
	if err != nil {
		return err
	}

	fmt.Printf("Seed Results:\n")
	fmt.Printf("  Admins inserted: %d (skipped %d)\n", result.AdminsInserted, result.AdminsSkipped)
	fmt.Printf("  Pricing bands inserted: %d (removed %d)\n", result.BandsInserted, result.BandsRemoved)

	return nil
}

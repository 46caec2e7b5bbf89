package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hightechgrafix/htg-shipping-tools/internal/models"
	"github.com/hightechgrafix/htg-shipping-tools/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// SeedFile is the JSON document loaded by the seeder
type SeedFile struct {
	Admins       []string   `json:"admins"`
	PricingBands []SeedBand `json:"pricing_bands"`
}

// SeedBand is one pricing grid row. Active defaults to true when omitted.
type SeedBand struct {
	MinQuantity   int             `json:"min_quantity"`
	MaxQuantity   int             `json:"max_quantity"`
	ColorCount    int             `json:"color_count"`
	PricePerPiece decimal.Decimal `json:"price_per_piece"`
	Active        *bool           `json:"active,omitempty"`
}

// SeedOptions controls how a seed file is applied
type SeedOptions struct {
	// ReplacePricing deletes the existing grid before inserting
	ReplacePricing bool
}

// SeedResult contains the results of a seed run
type SeedResult struct {
	AdminsInserted int
	AdminsSkipped  int
	BandsRemoved   int
	BandsInserted  int
}

// Seeder loads admin records and pricing bands into a migrated database
type Seeder struct {
	db     *sql.DB
	driver string
	logger *logrus.Logger
}

// NewSeeder creates a new seeder for the given driver's database handle
func NewSeeder(db *sql.DB, driver string, logger *logrus.Logger) *Seeder {
	if logger == nil {
		logger = logrus.New()
	}
	return &Seeder{db: db, driver: driver, logger: logger}
}

// LoadSeedFile reads and validates a seed file
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed SeedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal seed file: %w", err)
	}

	if err := seed.Validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

// Validate checks every admin id and band before anything is written
func (s *SeedFile) Validate() error {
	var problems []string
	for i, id := range s.Admins {
		if strings.TrimSpace(id) == "" {
			problems = append(problems, fmt.Sprintf("admins[%d]: empty id", i))
		}
	}
	for i, band := range s.PricingBands {
		model := band.toModel()
		if err := model.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("pricing_bands[%d]: %v", i, err))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid seed file: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (b SeedBand) toModel() *models.PricingBand {
	active := true
	if b.Active != nil {
		active = *b.Active
	}
	return &models.PricingBand{
		MinQuantity:   b.MinQuantity,
		MaxQuantity:   b.MaxQuantity,
		ColorCount:    b.ColorCount,
		PricePerPiece: b.PricePerPiece,
		Active:        active,
	}
}

// Apply writes the seed in a single transaction. Existing admin ids are
// skipped; pricing rows are appended unless ReplacePricing is set.
func (s *Seeder) Apply(ctx context.Context, seed *SeedFile, opts SeedOptions) (*SeedResult, error) {
	if err := seed.Validate(); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"driver":          s.driver,
		"admins":          len(seed.Admins),
		"pricing_bands":   len(seed.PricingBands),
		"replace_pricing": opts.ReplacePricing,
	}).Info("Starting seed")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	result := &SeedResult{}

	if err := s.seedAdmins(ctx, tx, seed.Admins, result); err != nil {
		return nil, fmt.Errorf("admin seed failed: %w", err)
	}

	if opts.ReplacePricing {
		res, err := tx.ExecContext(ctx, `DELETE FROM screen_print_pricing_grid`)
		if err != nil {
			return nil, fmt.Errorf("failed to clear pricing grid: %w", err)
		}
		removed, _ := res.RowsAffected()
		result.BandsRemoved = int(removed)
	}

	if err := s.seedBands(ctx, tx, seed.PricingBands, result); err != nil {
		return nil, fmt.Errorf("pricing seed failed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"admins_inserted": result.AdminsInserted,
		"admins_skipped":  result.AdminsSkipped,
		"bands_removed":   result.BandsRemoved,
		"bands_inserted":  result.BandsInserted,
	}).Info("Seed completed successfully")

	return result, nil
}

func (s *Seeder) seedAdmins(ctx context.Context, tx *sql.Tx, ids []string, result *SeedResult) error {
	query := fmt.Sprintf(`INSERT INTO admins (id) VALUES (%s) ON CONFLICT (id) DO NOTHING`, s.placeholders(1))

	for _, id := range ids {
		res, err := tx.ExecContext(ctx, query, strings.TrimSpace(id))
		if err != nil {
			return fmt.Errorf("failed to insert admin %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			result.AdminsSkipped++
			s.logger.WithField("admin_id", id).Debug("Admin already present, skipping")
			continue
		}
		result.AdminsInserted++
	}
	return nil
}

func (s *Seeder) seedBands(ctx context.Context, tx *sql.Tx, bands []SeedBand, result *SeedResult) error {
	query := fmt.Sprintf(`INSERT INTO screen_print_pricing_grid
		(min_quantity, max_quantity, color_count, price_per_piece, active)
		VALUES (%s)`, s.placeholders(5))

	for i, band := range bands {
		model := band.toModel()
		_, err := tx.ExecContext(ctx, query,
			model.MinQuantity, model.MaxQuantity, model.ColorCount, model.PricePerPiece.String(), model.Active)
		if err != nil {
			return fmt.Errorf("failed to insert pricing band %d: %w", i, err)
		}
		result.BandsInserted++
	}
	return nil
}

// placeholders returns n bind parameters in the driver's syntax
func (s *Seeder) placeholders(n int) string {
	params := make([]string, n)
	for i := range params {
		if s.driver == repositories.DriverPostgres {
			params[i] = fmt.Sprintf("$%d", i+1)
		} else {
			params[i] = "?"
		}
	}
	return strings.Join(params, ", ")
}

package sqlite

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/hightechgrafix/htg-shipping-tools/internal/models"
	"github.com/hightechgrafix/htg-shipping-tools/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const pricingTable = "screen_print_pricing_grid"

// PricingRepository implements repositories.PricingRepository for SQLite
type PricingRepository struct {
	*BaseRepository[models.PricingBand]
}

// NewPricingRepository creates a new SQLite pricing repository
func NewPricingRepository(db *sql.DB, logger *logrus.Logger) repositories.PricingRepository {
	return &PricingRepository{
		BaseRepository: NewBaseRepository[models.PricingBand](db, pricingTable, logger),
	}
}

// FindActiveBands returns the active bands covering quantity for colorCount
func (r *PricingRepository) FindActiveBands(ctx context.Context, quantity, colorCount int) ([]*models.PricingBand, error) {
	query := `
		SELECT id, min_quantity, max_quantity, color_count, CAST(price_per_piece AS TEXT), active
		FROM screen_print_pricing_grid
		WHERE active = 1
		  AND color_count = ?
		  AND min_quantity <= ?
		  AND max_quantity >= ?
		ORDER BY min_quantity, id`

	rows, err := r.executeQuery(ctx, "find_active", query, colorCount, quantity, quantity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bands []*models.PricingBand
	for rows.Next() {
		band := &models.PricingBand{}
		var price string
		if err := rows.Scan(&band.ID, &band.MinQuantity, &band.MaxQuantity, &band.ColorCount, &price, &band.Active); err != nil {
			return nil, repositories.NewRepositoryError("find_active", r.table, "", err)
		}

		band.PricePerPiece, err = decimal.NewFromString(price)
		if err != nil {
			return nil, repositories.InvalidDataError(r.table, strconv.FormatInt(band.ID, 10), err)
		}

		bands = append(bands, band)
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("find_active", r.table, "", classifyError(err))
	}

	return bands, nil
}

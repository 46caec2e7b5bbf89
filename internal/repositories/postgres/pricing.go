package postgres

import (
	"context"
	"strconv"
	"time"

	"github.com/hightechgrafix/htg-shipping-tools/internal/models"
	"github.com/hightechgrafix/htg-shipping-tools/internal/repositories"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type pricingRepository struct {
	base
}

// NewPricingRepository constructs the postgres pricing repository
func NewPricingRepository(pool *pgxpool.Pool, logger *logrus.Logger) repositories.PricingRepository {
	return &pricingRepository{base: newBase(pool, "screen_print_pricing_grid", logger)}
}

func (r *pricingRepository) FindActiveBands(ctx context.Context, quantity, colorCount int) ([]*models.PricingBand, error) {
	// price_per_piece is numeric; read it as text to keep exact precision
	const query = `
        SELECT id, min_quantity, max_quantity, color_count, price_per_piece::text, active
        FROM screen_print_pricing_grid
        WHERE active = true
          AND color_count = $1
          AND min_quantity <= $2
          AND max_quantity >= $2
        ORDER BY min_quantity, id`

	start := time.Now()
	rows, err := r.pool.Query(ctx, query, colorCount, quantity)
	if err != nil {
		r.logQuery("find_active", start, err)
		return nil, r.wrap("find_active", "", err)
	}
	defer rows.Close()

	var bands []*models.PricingBand
	for rows.Next() {
		var (
			band  models.PricingBand
			price string
		)
		if err := rows.Scan(&band.ID, &band.MinQuantity, &band.MaxQuantity, &band.ColorCount, &price, &band.Active); err != nil {
			return nil, r.wrap("find_active", "", err)
		}

		band.PricePerPiece, err = decimal.NewFromString(price)
		if err != nil {
			return nil, repositories.InvalidDataError(r.table, strconv.FormatInt(band.ID, 10), err)
		}
		bands = append(bands, &band)
	}
	r.logQuery("find_active", start, rows.Err())
	if err := rows.Err(); err != nil {
		return nil, r.wrap("find_active", "", err)
	}

	return bands, nil
}

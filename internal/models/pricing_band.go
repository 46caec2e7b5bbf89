package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PricingBand is one row of the screen-print pricing grid.
// Bands for the same color count are expected not to overlap, but that is
// only detected when a query matches more than one row.
type PricingBand struct {
	ID            int64           `json:"id" db:"id"`
	MinQuantity   int             `json:"min_quantity" db:"min_quantity"`
	MaxQuantity   int             `json:"max_quantity" db:"max_quantity"`
	ColorCount    int             `json:"color_count" db:"color_count"`
	PricePerPiece decimal.Decimal `json:"price_per_piece" db:"price_per_piece"`
	Active        bool            `json:"active" db:"active"`
}

// PricingQuery is a validated lookup request
type PricingQuery struct {
	Quantity   int `json:"quantity"`
	ColorCount int `json:"colorCount"`
}

// PriceResult is the resolved price for a query and the band that produced it
type PriceResult struct {
	Quantity      int             `json:"quantity"`
	ColorCount    int             `json:"colorCount"`
	PricePerPiece decimal.Decimal `json:"pricePerPiece"`
	BandMin       int             `json:"-"`
	BandMax       int             `json:"-"`
}

// Validate validates the band invariants
func (b *PricingBand) Validate() error {
	if b.MinQuantity < 1 {
		return fmt.Errorf("min quantity must be at least 1")
	}
	if b.MaxQuantity < b.MinQuantity {
		return fmt.Errorf("max quantity %d is below min quantity %d", b.MaxQuantity, b.MinQuantity)
	}
	if b.ColorCount < 1 {
		return fmt.Errorf("color count must be at least 1")
	}
	if !b.PricePerPiece.IsPositive() {
		return fmt.Errorf("price per piece must be positive")
	}
	return nil
}

// Covers reports whether the band applies to the query
func (b *PricingBand) Covers(q PricingQuery) bool {
	return b.Active &&
		b.ColorCount == q.ColorCount &&
		b.MinQuantity <= q.Quantity &&
		b.MaxQuantity >= q.Quantity
}

// Result builds the price result for a query answered by this band
func (b *PricingBand) Result(q PricingQuery) *PriceResult {
	return &PriceResult{
		Quantity:      q.Quantity,
		ColorCount:    q.ColorCount,
		PricePerPiece: b.PricePerPiece,
		BandMin:       b.MinQuantity,
		BandMax:       b.MaxQuantity,
	}
}

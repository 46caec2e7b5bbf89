package services

import (
	"context"
	"encoding/json"

	"github.com/hightechgrafix/htg-shipping-tools/internal/metrics"
	"github.com/hightechgrafix/htg-shipping-tools/internal/models"
	"github.com/hightechgrafix/htg-shipping-tools/internal/repositories"

	"github.com/sirupsen/logrus"
)

// PricingService resolves screen-print prices from the pricing grid
type PricingService interface {
	// Resolve validates the raw quantity and color count and returns the price
	// of the single band covering them
	Resolve(ctx context.Context, rawQuantity, rawColorCount json.RawMessage) (*models.PriceResult, error)
}

// pricingService implements the PricingService interface
type pricingService struct {
	bands  repositories.PricingRepository
	logger *logrus.Logger
}

// NewPricingService creates a new pricing service instance
func NewPricingService(bands repositories.PricingRepository, logger *logrus.Logger) PricingService {
	if logger == nil {
		logger = logrus.New()
	}
	return &pricingService{
		bands:  bands,
		logger: logger,
	}
}

// Resolve returns the price for the query. Quantity is validated before color
// count, and neither failure reaches the repository.
func (s *pricingService) Resolve(ctx context.Context, rawQuantity, rawColorCount json.RawMessage) (*models.PriceResult, error) {
	quantity, ok := models.ParsePositiveInt(rawQuantity)
	if !ok {
		metrics.PricingResolutionsTotal.WithLabelValues("invalid_input").Inc()
		return nil, NewError(CodeInvalidQuantity, "quantity must be a positive integer")
	}

	colorCount, ok := models.ParsePositiveInt(rawColorCount)
	if !ok {
		metrics.PricingResolutionsTotal.WithLabelValues("invalid_input").Inc()
		return nil, NewError(CodeInvalidColorCount, "color count must be a positive integer")
	}

	query := models.PricingQuery{Quantity: quantity, ColorCount: colorCount}

	bands, err := s.bands.FindActiveBands(ctx, query.Quantity, query.ColorCount)
	if err != nil {
		metrics.PricingResolutionsTotal.WithLabelValues("db_error").Inc()
		s.logger.WithFields(logrus.Fields{
			"quantity":    query.Quantity,
			"color_count": query.ColorCount,
			"error":       err.Error(),
		}).Error("Pricing grid query failed")
		return nil, WrapError(err, CodeDBError, "pricing grid query failed").WithDetails(err.Error())
	}

	switch len(bands) {
	case 0:
		metrics.PricingResolutionsTotal.WithLabelValues("no_match").Inc()
		return nil, NewError(CodeNoMatch, "no band covers the query")
	case 1:
		metrics.PricingResolutionsTotal.WithLabelValues("match").Inc()
		return bands[0].Result(query), nil
	default:
		metrics.PricingResolutionsTotal.WithLabelValues("multiple_matches").Inc()
		ids := make([]int64, 0, len(bands))
		for _, band := range bands {
			ids = append(ids, band.ID)
		}
		s.logger.WithFields(logrus.Fields{
			"quantity":    query.Quantity,
			"color_count": query.ColorCount,
			"band_ids":    ids,
		}).Warn("Overlapping pricing bands")
		return nil, NewError(CodeMultipleMatches, "pricing bands overlap").WithMatches(bands)
	}
}

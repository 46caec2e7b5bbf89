package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hightechgrafix/htg-shipping-tools/internal/models"
	"github.com/hightechgrafix/htg-shipping-tools/internal/services"
)

// PathScreenPrint is the screen-print pricing route
const PathScreenPrint = "/api/price/screen-print"

// PriceRequest is the pricing request body. Fields stay raw so the service
// can accept numbers and numeric strings alike.
type PriceRequest struct {
	Quantity   json.RawMessage `json:"quantity" swaggertype:"integer"`
	ColorCount json.RawMessage `json:"colorCount" swaggertype:"integer"`
}

// BandRange echoes the bounds of the matched band
type BandRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// PriceResponse is returned for a resolved price
type PriceResponse struct {
	Quantity      int         `json:"quantity"`
	ColorCount    int         `json:"colorCount"`
	PricePerPiece json.Number `json:"pricePerPiece" swaggertype:"number"`
	Band          BandRange   `json:"band"`
}

// BandMatch is one conflicting row listed by a MULTIPLE_MATCHES error
type BandMatch struct {
	MinQuantity   int         `json:"min_quantity"`
	MaxQuantity   int         `json:"max_quantity"`
	ColorCount    int         `json:"color_count"`
	PricePerPiece json.Number `json:"price_per_piece" swaggertype:"number"`
}

func newBandMatch(band *models.PricingBand) BandMatch {
	return BandMatch{
		MinQuantity:   band.MinQuantity,
		MaxQuantity:   band.MaxQuantity,
		ColorCount:    band.ColorCount,
		PricePerPiece: json.Number(band.PricePerPiece.String()),
	}
}

// PricingHandler handles the public pricing endpoint
type PricingHandler struct {
	pricing services.PricingService
}

// NewPricingHandler creates a new pricing handler
func NewPricingHandler(pricing services.PricingService) *PricingHandler {
	return &PricingHandler{
		pricing: pricing,
	}
}

// Endpoints returns the pricing endpoints
func (h *PricingHandler) Endpoints() []*Endpoint {
	return []*Endpoint{
		{
			Name:          "screen-print",
			Path:          PathScreenPrint,
			Method:        http.MethodPost,
			Action:        h.ScreenPrint,
			MethodMessage: string(services.CodeMethodNotAllowed),
		},
	}
}

// @Summary Resolve a screen-print price
// @Description Find the single active band covering the quantity for the color count
// @Tags pricing
// @Accept json
// @Produce json
// @Param query body PriceRequest true "Quantity and color count"
// @Success 200 {object} PriceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 405 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /price/screen-print [post]
func (h *PricingHandler) ScreenPrint(ctx context.Context, _ *models.AuthorizedCaller, body []byte) (interface{}, error) {
	req := decodeBody[PriceRequest](body)

	result, err := h.pricing.Resolve(ctx, req.Quantity, req.ColorCount)
	if err != nil {
		return nil, err
	}

	return &PriceResponse{
		Quantity:      result.Quantity,
		ColorCount:    result.ColorCount,
		PricePerPiece: json.Number(result.PricePerPiece.String()),
		Band:          BandRange{Min: result.BandMin, Max: result.BandMax},
	}, nil
}

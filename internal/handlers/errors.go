package handlers

import (
	"github.com/hightechgrafix/htg-shipping-tools/internal/services"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
	Matches []BandMatch `json:"matches,omitempty"`
}

// newErrorResponse renders err through the code allow-list. Only the public
// message, and details or matches for codes that permit them, reach the client.
func newErrorResponse(err error) (int, *ErrorResponse) {
	serviceErr := services.AsError(err)
	md := serviceErr.Metadata()

	resp := &ErrorResponse{
		Error:   serviceErr.PublicMessage(),
		Code:    string(serviceErr.Code()),
		Details: serviceErr.Details(),
	}

	if matches := serviceErr.Matches(); len(matches) > 0 {
		resp.Matches = make([]BandMatch, 0, len(matches))
		for _, band := range matches {
			resp.Matches = append(resp.Matches, newBandMatch(band))
		}
	}

	return md.HTTPStatus, resp
}

// isServerError reports whether err renders as a 5xx
func isServerError(err error) bool {
	return services.AsError(err).Metadata().HTTPStatus >= 500
}

package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hightechgrafix/htg-shipping-tools/internal/models"
)

// Code classifies an error for the HTTP layer
type Code string

const (
	CodeMethodNotAllowed   Code = "METHOD_NOT_ALLOWED"
	CodeMissingCredentials Code = "MISSING_CREDENTIALS"
	CodeInvalidSession     Code = "INVALID_SESSION"
	CodeNotAdmin           Code = "NOT_ADMIN"
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeInvalidQuantity    Code = "INVALID_QUANTITY"
	CodeInvalidColorCount  Code = "INVALID_COLOR_COUNT"
	CodeIdentityRejected   Code = "IDENTITY_REJECTED"
	CodeDBError            Code = "DB_ERROR"
	CodeNoMatch            Code = "NO_MATCH"
	CodeMultipleMatches    Code = "MULTIPLE_MATCHES"
	CodeInternal           Code = "INTERNAL_ERROR"
	CodeNotFound           Code = "NOT_FOUND"
)

// Metadata describes how a code is rendered.
// Only codes with ExposeMessage show the error's own message; the rest show PublicMessage.
type Metadata struct {
	HTTPStatus     int
	PublicMessage  string
	ExposeMessage  bool
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeMethodNotAllowed: {
		HTTPStatus:    http.StatusMethodNotAllowed,
		PublicMessage: "Method not allowed",
		ExposeMessage: true,
	},
	CodeMissingCredentials: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "Missing Authorization header",
	},
	CodeInvalidSession: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "Invalid session",
	},
	CodeNotAdmin: {
		HTTPStatus:    http.StatusForbidden,
		PublicMessage: "Admin access required",
	},
	CodeValidation: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: "Invalid request",
		ExposeMessage: true,
	},
	CodeInvalidQuantity: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: string(CodeInvalidQuantity),
	},
	CodeInvalidColorCount: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: string(CodeInvalidColorCount),
	},
	CodeIdentityRejected: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: "Request rejected by identity provider",
		ExposeMessage: true,
	},
	CodeDBError: {
		HTTPStatus:     http.StatusInternalServerError,
		PublicMessage:  string(CodeDBError),
		DetailsAllowed: true,
	},
	CodeNoMatch: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: string(CodeNoMatch),
	},
	CodeMultipleMatches: {
		HTTPStatus:     http.StatusConflict,
		PublicMessage:  string(CodeMultipleMatches),
		DetailsAllowed: true,
	},
	CodeInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		PublicMessage: "Server error",
	},
	CodeNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "Not found",
	},
}

// MetadataFor returns the rendering metadata of a code; unknown codes render as internal errors
func MetadataFor(code Code) Metadata {
	if md, ok := metadataByCode[code]; ok {
		return md
	}
	return metadataByCode[CodeInternal]
}

// Error is a classified service error
type Error struct {
	code    Code
	message string
	details interface{}
	matches []*models.PricingBand
	cause   error
}

// NewError creates a classified error
func NewError(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// WrapError classifies cause under code
func WrapError(cause error, code Code, message string) *Error {
	return &Error{code: code, message: message, cause: cause}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.cause
}

// Code returns the error code
func (e *Error) Code() Code {
	return e.code
}

// Metadata returns the rendering metadata for the code
func (e *Error) Metadata() Metadata {
	return MetadataFor(e.code)
}

// PublicMessage returns the message that may be shown to the client
func (e *Error) PublicMessage() string {
	md := e.Metadata()
	if md.ExposeMessage && e.message != "" {
		return e.message
	}
	return md.PublicMessage
}

// WithDetails attaches client-visible details; ignored for codes that do not allow them
func (e *Error) WithDetails(details interface{}) *Error {
	e.details = details
	return e
}

// Details returns the details when the code allows them
func (e *Error) Details() interface{} {
	if !e.Metadata().DetailsAllowed {
		return nil
	}
	return e.details
}

// WithMatches attaches the conflicting pricing bands
func (e *Error) WithMatches(bands []*models.PricingBand) *Error {
	e.matches = bands
	return e
}

// Matches returns the conflicting bands when the code allows them
func (e *Error) Matches() []*models.PricingBand {
	if !e.Metadata().DetailsAllowed {
		return nil
	}
	return e.matches
}

// AsError extracts a service error; anything else is classified as internal
func AsError(err error) *Error {
	var serviceErr *Error
	if errors.As(err, &serviceErr) {
		return serviceErr
	}
	return WrapError(err, CodeInternal, "unclassified error")
}

// IsCode reports whether err carries the given code
func IsCode(err error, code Code) bool {
	var serviceErr *Error
	return errors.As(err, &serviceErr) && serviceErr.code == code
}

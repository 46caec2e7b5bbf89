package identity

import (
	"errors"
	"fmt"
	"net/http"
)

// Common identity errors
var (
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrAccountNotFound = errors.New("account not found")
	ErrMisconfigured   = errors.New("identity provider is not configured")
)

// ProviderError is an error response returned by the identity provider
type ProviderError struct {
	Status  int    // HTTP status returned by the provider
	Code    string // Provider error code, when present
	Message string // Provider message, safe to show to admins
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("identity provider error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("identity provider error %d: %s", e.Status, e.Message)
}

// IsClientError reports whether the provider rejected the request (4xx)
func (e *ProviderError) IsClientError() bool {
	return e.Status >= 400 && e.Status < 500
}

// Is lets a 404 ProviderError match ErrAccountNotFound
func (e *ProviderError) Is(target error) bool {
	return target == ErrAccountNotFound && e.Status == http.StatusNotFound
}

// AsProviderError extracts a ProviderError from err
func AsProviderError(err error) (*ProviderError, bool) {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr, true
	}
	return nil, false
}

// IsRejected reports whether err is a 4xx provider rejection
func IsRejected(err error) bool {
	providerErr, ok := AsProviderError(err)
	return ok && providerErr.IsClientError()
}

// IsNotFound reports whether the provider has no such account
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}

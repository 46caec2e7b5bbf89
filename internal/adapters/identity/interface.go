package identity

import (
	"context"

	"github.com/hightechgrafix/htg-shipping-tools/internal/models"
)

// TokenVerifier resolves a caller's bearer token to the account it belongs to
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*models.Account, error)
}

// AccountAdmin performs privileged account operations with the service credential.
// Provider rejections are returned as *ProviderError.
type AccountAdmin interface {
	// CreateAccount provisions an account; the email is marked confirmed when requested
	CreateAccount(ctx context.Context, req *models.NewAccountRequest) (*models.Account, error)

	// DeleteAccount removes the account with the given ID
	DeleteAccount(ctx context.Context, id string) error

	// ListAccounts returns one page of accounts; page numbers start at 1
	ListAccounts(ctx context.Context, page, perPage int) ([]*models.Account, error)

	// GetAccount returns the account; a missing account satisfies IsNotFound
	GetAccount(ctx context.Context, id string) (*models.Account, error)

	// SendPasswordReset triggers the provider's recovery email
	SendPasswordReset(ctx context.Context, email string) error
}

// Provider is the full identity collaborator
type Provider interface {
	TokenVerifier
	AccountAdmin
}

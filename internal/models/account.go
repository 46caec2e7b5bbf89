package models

import (
	"time"
)

// Account represents a user account held by the identity provider
type Account struct {
	ID               string                 `json:"id"`
	Email            string                 `json:"email"`
	Phone            string                 `json:"phone,omitempty"`
	Role             string                 `json:"role,omitempty"`
	CreatedAt        *time.Time             `json:"created_at,omitempty"`
	LastSignInAt     *time.Time             `json:"last_sign_in_at,omitempty"`
	EmailConfirmedAt *time.Time             `json:"email_confirmed_at,omitempty"`
	AppMetadata      map[string]interface{} `json:"app_metadata,omitempty"`
	UserMetadata     map[string]interface{} `json:"user_metadata,omitempty"`
}

// AccountSummary is the projection of an account returned by user listings.
// Timestamps stay nil for accounts that never signed in.
type AccountSummary struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	CreatedAt    *time.Time `json:"created_at"`
	LastSignInAt *time.Time `json:"last_sign_in_at"`
}

// Summary projects the account down to the listing fields
func (a *Account) Summary() AccountSummary {
	return AccountSummary{
		ID:           a.ID,
		Email:        a.Email,
		CreatedAt:    a.CreatedAt,
		LastSignInAt: a.LastSignInAt,
	}
}

// NewAccountRequest holds the fields required to provision an account
type NewAccountRequest struct {
	Email        string `json:"email" validate:"required"`
	Password     string `json:"password" validate:"required"`
	EmailConfirm bool   `json:"email_confirm"`
}

package models

import (
	"fmt"
	"strings"
)

// AdminRecord marks an identity-provider account as an administrator.
// Existence of the row is the whole grant; there are no roles.
type AdminRecord struct {
	ID string `json:"id" db:"id" validate:"required"`
}

// Validate validates the admin record
func (a *AdminRecord) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("admin ID is required")
	}
	return nil
}

// AuthorizedCaller is a caller whose token was verified and who holds an admin record
type AuthorizedCaller struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// ReconcileReport summarizes one admin reconciliation sweep
type ReconcileReport struct {
	Checked    int      `json:"checked"`
	Removed    int      `json:"removed"`
	Failed     int      `json:"failed"`
	RemovedIDs []string `json:"removed_ids,omitempty"`
}

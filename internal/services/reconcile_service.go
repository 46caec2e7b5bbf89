package services

import (
	"context"
	"fmt"

	"github.com/hightechgrafix/htg-shipping-tools/internal/adapters/identity"
	"github.com/hightechgrafix/htg-shipping-tools/internal/metrics"
	"github.com/hightechgrafix/htg-shipping-tools/internal/models"
	"github.com/hightechgrafix/htg-shipping-tools/internal/repositories"

	"github.com/sirupsen/logrus"
)

// AdminReconciler removes admin records whose account no longer exists.
// It closes the window left when delete-user cleanup fails.
type AdminReconciler interface {
	Reconcile(ctx context.Context) (*models.ReconcileReport, error)
}

type adminReconciler struct {
	accounts identity.AccountAdmin
	admins   repositories.AdminRepository
	retry    *repositories.RetryConfig
	logger   *logrus.Logger
}

// NewAdminReconciler creates a new reconciler
func NewAdminReconciler(accounts identity.AccountAdmin, admins repositories.AdminRepository, cfg *ServiceConfig, logger *logrus.Logger) AdminReconciler {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = logrus.New()
	}
	return &adminReconciler{
		accounts: accounts,
		admins:   admins,
		retry:    cfg.CleanupRetry,
		logger:   logger,
	}
}

// Reconcile checks every admin record against the identity provider.
// Only a definite "not found" removes a record; any other provider error
// counts as failed and leaves the row in place.
func (r *adminReconciler) Reconcile(ctx context.Context) (*models.ReconcileReport, error) {
	records, err := r.admins.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin records: %w", err)
	}

	report := &models.ReconcileReport{}

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Checked++

		_, lookupErr := r.accounts.GetAccount(ctx, record.ID)
		if lookupErr == nil {
			continue
		}

		if !identity.IsNotFound(lookupErr) {
			report.Failed++
			r.logger.WithFields(logrus.Fields{
				"admin_id": record.ID,
				"error":    lookupErr.Error(),
			}).Warn("Account lookup failed during reconciliation")
			continue
		}

		deleteErr := repositories.WithRetry(ctx, r.retry, func(ctx context.Context) error {
			return r.admins.Delete(ctx, record.ID)
		})
		if deleteErr != nil {
			report.Failed++
			r.logger.WithFields(logrus.Fields{
				"admin_id": record.ID,
				"error":    deleteErr.Error(),
			}).Error("Failed to remove orphaned admin record")
			continue
		}

		report.Removed++
		report.RemovedIDs = append(report.RemovedIDs, record.ID)
		metrics.ReconcileRemovedTotal.Inc()
		r.logger.WithField("admin_id", record.ID).Info("Removed orphaned admin record")
	}

	r.logger.WithFields(logrus.Fields{
		"checked": report.Checked,
		"removed": report.Removed,
		"failed":  report.Failed,
	}).Info("Admin reconciliation completed")

	return report, nil
}

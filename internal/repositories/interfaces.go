package repositories

import (
	"context"

	"github.com/hightechgrafix/htg-shipping-tools/internal/models"
)

// AdminRepository reads and removes rows of the admins table.
// Rows are provisioned outside this service.
type AdminRepository interface {
	// Exists reports whether an admin record exists for the user ID
	Exists(ctx context.Context, id string) (bool, error)

	// Delete removes the admin record. Removing a missing record is not an error.
	Delete(ctx context.Context, id string) error

	// List returns every admin record ordered by ID
	List(ctx context.Context) ([]*models.AdminRecord, error)
}

// PricingRepository reads the screen-print pricing grid
type PricingRepository interface {
	// FindActiveBands returns every active band for colorCount whose range
	// contains quantity, ordered by min_quantity then id
	FindActiveBands(ctx context.Context, quantity, colorCount int) ([]*models.PricingBand, error)
}

// HealthChecker is implemented by drivers that can report connectivity
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RepositoryContainer holds the repositories of one storage driver
type RepositoryContainer struct {
	Driver      string
	AdminRepo   AdminRepository
	PricingRepo PricingRepository
	Health      HealthChecker

	closer func() error
}

// NewRepositoryContainer creates a container; closer releases the driver's pool
func NewRepositoryContainer(driver string, admin AdminRepository, pricing PricingRepository, health HealthChecker, closer func() error) *RepositoryContainer {
	return &RepositoryContainer{
		Driver:      driver,
		AdminRepo:   admin,
		PricingRepo: pricing,
		Health:      health,
		closer:      closer,
	}
}

// Close releases the underlying connection pool
func (c *RepositoryContainer) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}
	return c.closer()
}

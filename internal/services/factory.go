package services

import (
	"fmt"
	"time"

	"github.com/hightechgrafix/htg-shipping-tools/internal/adapters/identity"
	"github.com/hightechgrafix/htg-shipping-tools/internal/repositories"

	"github.com/sirupsen/logrus"
)

// ServiceConfig holds tunables shared by the services
type ServiceConfig struct {
	// CleanupRetry governs admin record removal after an account deletion
	// and during reconciliation
	CleanupRetry *repositories.RetryConfig

	// CleanupTimeout bounds the detached admin record cleanup
	CleanupTimeout time.Duration
}

// DefaultServiceConfig returns the default service configuration
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		CleanupRetry:   repositories.DefaultRetryConfig(),
		CleanupTimeout: 5 * time.Second,
	}
}

func (c *ServiceConfig) withDefaults() *ServiceConfig {
	defaults := DefaultServiceConfig()
	if c == nil {
		return defaults
	}
	merged := *c
	if merged.CleanupRetry == nil {
		merged.CleanupRetry = defaults.CleanupRetry
	}
	if merged.CleanupTimeout <= 0 {
		merged.CleanupTimeout = defaults.CleanupTimeout
	}
	return &merged
}

// ServiceContainer holds all service instances
type ServiceContainer struct {
	Gate       *Gate
	UserAdmin  UserAdminService
	Pricing    PricingService
	Reconciler AdminReconciler
}

// NewServiceContainer creates a new service container with all dependencies
func NewServiceContainer(provider identity.Provider, repos *repositories.RepositoryContainer, cfg *ServiceConfig, logger *logrus.Logger) (*ServiceContainer, error) {
	if provider == nil {
		return nil, fmt.Errorf("identity provider is required")
	}
	if repos == nil || repos.AdminRepo == nil || repos.PricingRepo == nil {
		return nil, fmt.Errorf("repository container is incomplete")
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &ServiceContainer{
		Gate:       NewGate(provider, repos.AdminRepo, logger),
		UserAdmin:  NewUserAdminService(provider, repos.AdminRepo, cfg, logger),
		Pricing:    NewPricingService(repos.PricingRepo, logger),
		Reconciler: NewAdminReconciler(provider, repos.AdminRepo, cfg, logger),
	}, nil
}

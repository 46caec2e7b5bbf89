package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hightechgrafix/htg-shipping-tools/internal/adapters/identity"
	"github.com/hightechgrafix/htg-shipping-tools/internal/config"
	"github.com/hightechgrafix/htg-shipping-tools/internal/database"
	"github.com/hightechgrafix/htg-shipping-tools/internal/handlers"
	"github.com/hightechgrafix/htg-shipping-tools/internal/repositories"
	"github.com/hightechgrafix/htg-shipping-tools/internal/repositories/postgres"
	"github.com/hightechgrafix/htg-shipping-tools/internal/repositories/sqlite"
	"github.com/hightechgrafix/htg-shipping-tools/internal/services"

	"github.com/sirupsen/logrus"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *logrus.Logger
	Repositories *repositories.RepositoryContainer
	Identity     identity.Provider
	Services     *services.ServiceContainer
	API          *handlers.API
}

// Option customizes container construction
type Option func(*options)

type options struct {
	provider   identity.Provider
	httpClient *http.Client
	endpoints  EndpointSet
}

// EndpointSet selects which endpoints a container serves
type EndpointSet string

// Endpoint sets. Each Lambda function serves one set; the HTTP server serves all.
const (
	AllEndpoints     EndpointSet = "all"
	AdminEndpoints   EndpointSet = "admin"
	PricingEndpoints EndpointSet = "pricing"
)

func (s EndpointSet) validate() error {
	switch s {
	case AllEndpoints, AdminEndpoints, PricingEndpoints:
		return nil
	default:
		return fmt.Errorf("unknown endpoint set %q", s)
	}
}

// needsIdentity reports whether the set includes the gate and admin services
func (s EndpointSet) needsIdentity() bool {
	return s != PricingEndpoints
}

// WithEndpoints limits the container to one endpoint set. A pricing-only
// container builds no identity provider and needs no Supabase settings.
func WithEndpoints(set EndpointSet) Option {
	return func(o *options) {
		o.endpoints = set
	}
}

// WithIdentityProvider replaces the GoTrue-backed provider, e.g. with identity.MockProvider
func WithIdentityProvider(provider identity.Provider) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// WithHTTPClient sets the HTTP client used for identity calls
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config, logger *logrus.Logger, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		logger = config.NewLogger(cfg.Logging)
	}

	o := &options{endpoints: AllEndpoints}
	for _, opt := range opts {
		opt(o)
	}
	if err := o.endpoints.validate(); err != nil {
		return nil, err
	}

	repos, err := OpenRepositories(ctx, &cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	var provider identity.Provider
	var serviceContainer *services.ServiceContainer
	if o.endpoints.needsIdentity() {
		provider, err = buildProvider(cfg, o, logger)
		if err != nil {
			repos.Close()
			return nil, err
		}

		serviceContainer, err = services.NewServiceContainer(provider, repos, serviceConfig(cfg), logger)
		if err != nil {
			repos.Close()
			return nil, fmt.Errorf("failed to create service container: %w", err)
		}
	} else {
		serviceContainer = &services.ServiceContainer{
			Pricing: services.NewPricingService(repos.PricingRepo, logger),
		}
	}

	api := handlers.NewAPI(serviceContainer.Gate, logger)
	if o.endpoints != PricingEndpoints {
		api.Register(handlers.NewAdminHandler(serviceContainer.UserAdmin).Endpoints()...)
	}
	if o.endpoints != AdminEndpoints {
		api.Register(handlers.NewPricingHandler(serviceContainer.Pricing).Endpoints()...)
	}

	logger.WithFields(logrus.Fields{
		"driver":    repos.Driver,
		"endpoints": o.endpoints,
		"mode":      config.GetDeploymentMode(),
	}).Info("Container initialized")

	return &Container{
		Config:       cfg,
		Logger:       logger,
		Repositories: repos,
		Identity:     provider,
		Services:     serviceContainer,
		API:          api,
	}, nil
}

// buildProvider returns the injected provider or a GoTrue-backed one
func buildProvider(cfg *config.Config, o *options, logger *logrus.Logger) (identity.Provider, error) {
	if o.provider != nil {
		return o.provider, nil
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Identity.Timeout}
	}
	provider, err := identity.NewProvider(identity.Config{
		BaseURL:    cfg.Identity.SupabaseURL,
		ServiceKey: cfg.Identity.ServiceRoleKey,
		JWTSecret:  cfg.Identity.JWTSecret,
		VerifyMode: cfg.Identity.VerifyMode,
		Timeout:    cfg.Identity.Timeout,
		RedirectTo: cfg.Identity.PasswordResetRedirectURL,
	}, httpClient, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity provider: %w", err)
	}
	return provider, nil
}

// OpenRepositories connects the configured storage driver, applying the
// embedded migrations first when auto-migrate is on
func OpenRepositories(ctx context.Context, dbCfg *config.DatabaseConfig, logger *logrus.Logger) (*repositories.RepositoryContainer, error) {
	repoCfg := dbCfg.ToRepositoryConfig()
	if err := repoCfg.Validate(); err != nil {
		return nil, err
	}

	if repoCfg.AutoMigrate {
		if err := database.NewMigrationManager(repoCfg, logger).RunMigrations(ctx); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	switch repoCfg.Driver {
	case repositories.DriverSQLite:
		db, err := database.OpenSQLite(ctx, repoCfg, logger)
		if err != nil {
			return nil, err
		}
		return sqlite.NewRepositoryContainer(db, logger), nil

	case repositories.DriverPostgres:
		pool, err := postgres.NewPool(ctx, repoCfg, logger)
		if err != nil {
			return nil, err
		}
		return postgres.NewRepositoryContainer(pool, logger), nil

	default:
		return nil, fmt.Errorf("%w: %q", repositories.ErrUnsupportedDriver, repoCfg.Driver)
	}
}

func serviceConfig(cfg *config.Config) *services.ServiceConfig {
	svcCfg := services.DefaultServiceConfig()
	if cfg.Cleanup.MaxAttempts > 0 {
		svcCfg.CleanupRetry.MaxAttempts = cfg.Cleanup.MaxAttempts
	}
	if cfg.Cleanup.InitialDelay > 0 {
		svcCfg.CleanupRetry.InitialDelay = cfg.Cleanup.InitialDelay
	}
	if cfg.Cleanup.MaxDelay > 0 {
		svcCfg.CleanupRetry.MaxDelay = cfg.Cleanup.MaxDelay
	}
	if cfg.Cleanup.Timeout > 0 {
		svcCfg.CleanupTimeout = cfg.Cleanup.Timeout
	}
	return svcCfg
}

// MiddlewareConfig derives the gin middleware settings
func (c *Container) MiddlewareConfig() *handlers.MiddlewareConfig {
	return &handlers.MiddlewareConfig{
		AllowedOrigins:   c.Config.Server.AllowedOrigins,
		RateLimitRPS:     c.Config.Server.RateLimitRPS,
		RateLimitBurst:   c.Config.Server.RateLimitBurst,
		MaxBodyBytes:     c.Config.Server.MaxBodyBytes,
		SlowRequestAfter: c.Config.Server.SlowRequestThreshold,
	}
}

// Close cleans up all resources
func (c *Container) Close() error {
	if c.Repositories != nil {
		if err := c.Repositories.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}

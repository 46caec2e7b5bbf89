package server

import (
	"context"
	"sync"
	"time"

	"github.com/hightechgrafix/htg-shipping-tools/internal/config"
)

// BuildFunc creates a container
type BuildFunc func(ctx context.Context) (*Container, error)

// ConnectionManager keeps one container alive across warm Lambda invocations.
// A failed build is not cached: the next invocation tries again.
type ConnectionManager struct {
	mu        sync.Mutex
	container *Container
	lastUsed  time.Time
	build     BuildFunc
}

// NewConnectionManager creates a manager; a nil build serves every endpoint
// from the environment's configuration
func NewConnectionManager(build BuildFunc) *ConnectionManager {
	if build == nil {
		build = EnvironmentBuilder(AllEndpoints)
	}
	return &ConnectionManager{build: build}
}

// EnvironmentBuilder loads the optimized configuration and builds a container
// serving set. A pricing-only build does not require the identity settings.
func EnvironmentBuilder(set EndpointSet) BuildFunc {
	return func(ctx context.Context) (*Container, error) {
		load := config.GetOptimizedConfig
		if !set.needsIdentity() {
			load = config.GetOptimizedPublicConfig
		}

		cfg, err := load()
		if err != nil {
			return nil, err
		}
		return NewContainer(ctx, cfg, config.NewLogger(cfg.Logging), WithEndpoints(set))
	}
}

// GetContainer returns the service container, initializing if necessary
func (cm *ConnectionManager) GetContainer(ctx context.Context) (*Container, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.container == nil {
		container, err := cm.build(ctx)
		if err != nil {
			return nil, err
		}
		cm.container = container
	}

	cm.lastUsed = time.Now()
	return cm.container, nil
}

// IsHealthy reports whether a container is built and was used in the last five minutes
func (cm *ConnectionManager) IsHealthy() bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	return cm.container != nil && time.Since(cm.lastUsed) < 5*time.Minute
}

// Cleanup closes the container; the next GetContainer builds a new one
func (cm *ConnectionManager) Cleanup() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.container == nil {
		return nil
	}
	err := cm.container.Close()
	cm.container = nil
	return err
}

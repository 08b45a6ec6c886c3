package registry

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prdhub/agentadmin/models"
	"github.com/prdhub/agentadmin/repositories"
	"github.com/prdhub/agentadmin/services"
)

// Service is the administrative interface over the pool registry. Routing
// never goes through here; this is plain persistence plus the registry
// invariants.
type Service struct {
	pools  repositories.PoolRepository
	legacy repositories.LegacyEndpointRepository
	logger *zap.Logger
}

// NewService creates a registry service
func NewService(pools repositories.PoolRepository, legacy repositories.LegacyEndpointRepository, logger *zap.Logger) *Service {
	return &Service{pools: pools, legacy: legacy, logger: logger}
}

// CreatePool creates a pool. Creating it as the type default demotes any
// existing default for that capability type.
func (s *Service) CreatePool(ctx context.Context, pool *models.Pool) error {
	if !models.IsValidStrategy(pool.Strategy) {
		return services.ErrInvalidStrategy.WithDetail("strategy", string(pool.Strategy))
	}
	if err := s.pools.Create(ctx, pool); err != nil {
		return err
	}
	if pool.IsDefaultForType {
		if err := s.pools.ClearDefaultForType(ctx, pool.CapabilityType, pool.ID); err != nil {
			return err
		}
	}
	return nil
}

// GetPool retrieves a pool by ID
func (s *Service) GetPool(ctx context.Context, id uuid.UUID) (*models.Pool, error) {
	return s.pools.GetByID(ctx, id)
}

// ListPools lists pools with pagination
func (s *Service) ListPools(ctx context.Context, limit, offset int) ([]*models.Pool, error) {
	return s.pools.List(ctx, limit, offset)
}

// UpdatePool updates a pool, keeping the single-default invariant
func (s *Service) UpdatePool(ctx context.Context, pool *models.Pool) error {
	if !models.IsValidStrategy(pool.Strategy) {
		return services.ErrInvalidStrategy.WithDetail("strategy", string(pool.Strategy))
	}
	if err := s.pools.Update(ctx, pool); err != nil {
		return err
	}
	if pool.IsDefaultForType {
		if err := s.pools.ClearDefaultForType(ctx, pool.CapabilityType, pool.ID); err != nil {
			return err
		}
	}
	return nil
}

// SetDefault flags a pool as the default for its capability type, demoting
// whichever pool held the flag before. A second default is never rejected;
// the prior one is demoted instead.
func (s *Service) SetDefault(ctx context.Context, id uuid.UUID) (*models.Pool, error) {
	pool, err := s.pools.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pool.IsDefaultForType = true
	if err := s.pools.Update(ctx, pool); err != nil {
		return nil, err
	}
	if err := s.pools.ClearDefaultForType(ctx, pool.CapabilityType, pool.ID); err != nil {
		return nil, err
	}

	s.logger.Info("default pool changed",
		zap.String("capability_type", string(pool.CapabilityType)),
		zap.String("pool_id", pool.ID.String()))

	return pool, nil
}

// DeletePool deletes a pool
func (s *Service) DeletePool(ctx context.Context, id uuid.UUID) error {
	return s.pools.Delete(ctx, id)
}

// AddEndpoint appends an endpoint to a pool. The (platform, model) pair must
// be unique within the pool; health counters are owned by exactly one pool.
func (s *Service) AddEndpoint(ctx context.Context, poolID uuid.UUID, endpoint models.Endpoint) (*models.Pool, error) {
	pool, err := s.pools.GetByID(ctx, poolID)
	if err != nil {
		return nil, err
	}

	if pool.Endpoint(endpoint.EndpointID()) != nil {
		return nil, services.ErrDuplicateEndpoint.WithDetail("endpoint_id", endpoint.EndpointID())
	}

	if endpoint.HealthStatus == "" {
		endpoint.HealthStatus = models.HealthHealthy
	}
	pool.Endpoints = append(pool.Endpoints, endpoint)
	if err := s.pools.Update(ctx, pool); err != nil {
		return nil, err
	}
	return pool, nil
}

// RemoveEndpoint removes an endpoint from a pool
func (s *Service) RemoveEndpoint(ctx context.Context, poolID uuid.UUID, endpointID string) (*models.Pool, error) {
	pool, err := s.pools.GetByID(ctx, poolID)
	if err != nil {
		return nil, err
	}

	kept := pool.Endpoints[:0]
	found := false
	for _, endpoint := range pool.Endpoints {
		if endpoint.EndpointID() == endpointID {
			found = true
			continue
		}
		kept = append(kept, endpoint)
	}
	if !found {
		return nil, services.ErrEndpointNotFound.WithDetail("endpoint_id", endpointID)
	}

	pool.Endpoints = kept
	if err := s.pools.Update(ctx, pool); err != nil {
		return nil, err
	}
	return pool, nil
}

// GetLegacyEndpoint retrieves the legacy default generation model, if set
func (s *Service) GetLegacyEndpoint(ctx context.Context) (*models.LegacyEndpoint, error) {
	return s.legacy.Get(ctx)
}

// SetLegacyEndpoint stores the legacy default generation model
func (s *Service) SetLegacyEndpoint(ctx context.Context, endpoint *models.LegacyEndpoint) error {
	if endpoint.PlatformID == "" || endpoint.ModelID == "" {
		return services.ErrInvalidInput.WithDetail("reason", "platform_id and model_id are required")
	}
	if err := s.legacy.Set(ctx, endpoint); err != nil {
		return fmt.Errorf("failed to store legacy endpoint: %w", err)
	}
	return nil
}

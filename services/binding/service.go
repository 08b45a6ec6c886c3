package binding

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prdhub/agentadmin/models"
	"github.com/prdhub/agentadmin/repositories"
	"github.com/prdhub/agentadmin/services"
)

// Service manages the central app binding registry. Caller codes are
// registered here, never ad hoc: a feature without a binding for a
// capability type cannot resolve any pool.
type Service struct {
	bindings repositories.BindingRepository
	pools    repositories.PoolRepository
	logger   *zap.Logger
}

// NewService creates a binding service
func NewService(bindings repositories.BindingRepository, pools repositories.PoolRepository, logger *zap.Logger) *Service {
	return &Service{bindings: bindings, pools: pools, logger: logger}
}

// Register registers a new app caller code with its capability grants
func (s *Service) Register(ctx context.Context, b *models.AppBinding) error {
	if b.AppCallerCode == "" {
		return services.ErrInvalidInput.WithDetail("reason", "app_caller_code is required")
	}
	if err := s.validatePoolRefs(ctx, b); err != nil {
		return err
	}
	if err := s.bindings.Create(ctx, b); err != nil {
		return err
	}
	s.logger.Info("app binding registered", zap.String("app_caller_code", b.AppCallerCode))
	return nil
}

// Get retrieves the binding for a caller code
func (s *Service) Get(ctx context.Context, appCallerCode string) (*models.AppBinding, error) {
	return s.bindings.GetByCallerCode(ctx, appCallerCode)
}

// List retrieves all bindings
func (s *Service) List(ctx context.Context) ([]*models.AppBinding, error) {
	return s.bindings.List(ctx)
}

// Update replaces a binding's capability grants
func (s *Service) Update(ctx context.Context, b *models.AppBinding) error {
	if err := s.validatePoolRefs(ctx, b); err != nil {
		return err
	}
	return s.bindings.Update(ctx, b)
}

// Delete removes a binding
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.bindings.Delete(ctx, id)
}

// validatePoolRefs checks that every referenced dedicated pool exists and
// serves the capability type it is bound under.
func (s *Service) validatePoolRefs(ctx context.Context, b *models.AppBinding) error {
	for capability, poolIDs := range b.Capabilities {
		pools, err := s.pools.GetByIDs(ctx, poolIDs)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*models.Pool, len(pools))
		for _, pool := range pools {
			byID[pool.ID] = pool
		}
		for _, poolID := range poolIDs {
			pool, ok := byID[poolID]
			if !ok {
				return services.ErrPoolNotFound.WithDetail("pool_id", poolID.String())
			}
			if pool.CapabilityType != capability {
				return services.ErrInvalidCapability.
					WithDetail("pool_id", poolID.String()).
					WithDetail("pool_capability", string(pool.CapabilityType)).
					WithDetail("bound_capability", string(capability))
			}
		}
	}
	return nil
}

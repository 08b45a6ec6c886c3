package resolver

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prdhub/agentadmin/models"
	"github.com/prdhub/agentadmin/repositories"
	"github.com/prdhub/agentadmin/services"
)

// ResolutionType tags which tier produced a resolved source
type ResolutionType string

const (
	ResolutionDedicatedPool ResolutionType = "dedicated_pool"
	ResolutionDefaultPool   ResolutionType = "default_pool"
	ResolutionDirectModel   ResolutionType = "direct_model"
	ResolutionNone          ResolutionType = "none"
)

// ResolvedSource is the single highest-priority source of endpoints for a
// request. Exactly one tier is ever represented; tiers never merge.
type ResolvedSource struct {
	Type  ResolutionType `json:"type"`
	Pools []*models.Pool `json:"pools,omitempty"`
}

// Service resolves (appCallerCode, capabilityType) to a pool source. A
// pool's resolution role is never stored; it is derived fresh on every call
// from the current registry and binding state.
type Service struct {
	pools    repositories.PoolRepository
	bindings repositories.BindingRepository
	legacy   repositories.LegacyEndpointRepository
	logger   *zap.Logger
}

// NewService creates a resolver service
func NewService(pools repositories.PoolRepository, bindings repositories.BindingRepository, legacy repositories.LegacyEndpointRepository, logger *zap.Logger) *Service {
	return &Service{
		pools:    pools,
		bindings: bindings,
		legacy:   legacy,
		logger:   logger,
	}
}

// Resolve evaluates the three tiers in order. The first non-empty tier wins
// and the rest are never consulted.
func (s *Service) Resolve(ctx context.Context, appCallerCode string, capability models.CapabilityType) (*ResolvedSource, error) {
	// Tier 1: dedicated pools bound to the caller code. A non-empty code
	// without a binding for this capability type is rejected outright; no
	// feature may silently consume a pool it was not granted.
	if appCallerCode != "" {
		binding, err := s.bindings.GetByCallerCode(ctx, appCallerCode)
		if err != nil {
			if services.IsNotFoundError(err) {
				return nil, services.ErrAppCodeNotRegistered.
					WithDetail("app_caller_code", appCallerCode).
					WithDetail("capability_type", string(capability))
			}
			return nil, fmt.Errorf("failed to look up app binding: %w", err)
		}

		poolIDs, granted := binding.PoolsFor(capability)
		if !granted {
			return nil, services.ErrAppCodeNotRegistered.
				WithDetail("app_caller_code", appCallerCode).
				WithDetail("capability_type", string(capability))
		}

		dedicated, err := s.dedicatedPools(ctx, poolIDs)
		if err != nil {
			return nil, err
		}
		if len(dedicated) > 0 {
			return &ResolvedSource{Type: ResolutionDedicatedPool, Pools: dedicated}, nil
		}
	}

	// Tier 2: default pools for the capability type.
	defaults, err := s.pools.GetDefaultsForType(ctx, capability)
	if err != nil {
		return nil, fmt.Errorf("failed to look up default pools: %w", err)
	}
	if len(defaults) > 0 {
		return &ResolvedSource{Type: ResolutionDefaultPool, Pools: defaults}, nil
	}

	// Tier 3: the legacy single generation model.
	if capability == models.CapabilityGeneration {
		legacy, err := s.legacy.Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to look up legacy endpoint: %w", err)
		}
		if legacy != nil && legacy.Enabled {
			return &ResolvedSource{
				Type:  ResolutionDirectModel,
				Pools: []*models.Pool{SynthesizeLegacyPool(legacy)},
			}, nil
		}
	}

	s.logger.Warn("no model source resolved",
		zap.String("app_caller_code", appCallerCode),
		zap.String("capability_type", string(capability)))

	return &ResolvedSource{Type: ResolutionNone}, nil
}

// dedicatedPools loads bound pools, drops missing or endpoint-less ones and
// orders the survivors by pool priority.
func (s *Service) dedicatedPools(ctx context.Context, poolIDs []uuid.UUID) ([]*models.Pool, error) {
	if len(poolIDs) == 0 {
		return nil, nil
	}

	pools, err := s.pools.GetByIDs(ctx, poolIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load dedicated pools: %w", err)
	}

	usable := pools[:0]
	for _, pool := range pools {
		if len(pool.Endpoints) > 0 {
			usable = append(usable, pool)
		}
	}
	sort.SliceStable(usable, func(i, j int) bool {
		return usable[i].Priority < usable[j].Priority
	})
	return usable, nil
}

// SynthesizeLegacyPool wraps the legacy endpoint in a priority-1 pseudo-pool
// with a single endpoint and sequential dispatch. The pool ID is derived
// deterministically so health state survives re-synthesis.
func SynthesizeLegacyPool(legacy *models.LegacyEndpoint) *models.Pool {
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("legacy:"+legacy.PlatformID+":"+legacy.ModelID))
	return &models.Pool{
		ID:             id,
		Name:           "legacy default generation model",
		CapabilityType: models.CapabilityGeneration,
		Priority:       1,
		Strategy:       models.StrategySequential,
		Endpoints: []models.Endpoint{{
			PlatformID:   legacy.PlatformID,
			ModelID:      legacy.ModelID,
			Priority:     1,
			HealthStatus: models.HealthHealthy,
			MaxTokens:    legacy.MaxTokens,
			BaseURL:      legacy.BaseURL,
			APIKey:       legacy.APIKey,
		}},
	}
}

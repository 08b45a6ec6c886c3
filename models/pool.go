package models

import (
	"time"

	"github.com/google/uuid"
)

// CapabilityType represents the kind of model operation a pool serves
type CapabilityType string

const (
	CapabilityChat       CapabilityType = "chat"
	CapabilityVision     CapabilityType = "vision"
	CapabilityGeneration CapabilityType = "generation"
	CapabilityIntent     CapabilityType = "intent"
	CapabilityEmbedding  CapabilityType = "embedding"
)

// DispatchStrategy selects how a pool spreads traffic across its endpoints
type DispatchStrategy string

const (
	StrategyFailFast       DispatchStrategy = "fail_fast"
	StrategyRace           DispatchStrategy = "race"
	StrategySequential     DispatchStrategy = "sequential"
	StrategyRoundRobin     DispatchStrategy = "round_robin"
	StrategyWeightedRandom DispatchStrategy = "weighted_random"
	StrategyLeastLatency   DispatchStrategy = "least_latency"
)

// ValidStrategies lists every supported dispatch strategy
var ValidStrategies = []DispatchStrategy{
	StrategyFailFast,
	StrategyRace,
	StrategySequential,
	StrategyRoundRobin,
	StrategyWeightedRandom,
	StrategyLeastLatency,
}

// IsValidStrategy reports whether s names a supported strategy
func IsValidStrategy(s DispatchStrategy) bool {
	for _, v := range ValidStrategies {
		if s == v {
			return true
		}
	}
	return false
}

// HealthStatus represents the live health classification of an endpoint
type HealthStatus string

const (
	HealthHealthy     HealthStatus = "healthy"
	HealthDegraded    HealthStatus = "degraded"
	HealthUnavailable HealthStatus = "unavailable"
)

// Endpoint is one concrete (platform, model) pair inside a pool.
// Health fields are the only part mutated by the dispatch path.
type Endpoint struct {
	PlatformID           string       `json:"platform_id" bson:"platform_id"`
	ModelID              string       `json:"model_id" bson:"model_id"`
	Priority             int          `json:"priority" bson:"priority"`
	HealthStatus         HealthStatus `json:"health_status" bson:"health_status"`
	ConsecutiveFailures  int          `json:"consecutive_failures" bson:"consecutive_failures"`
	ConsecutiveSuccesses int          `json:"consecutive_successes" bson:"consecutive_successes"`
	LastSuccessAt        *time.Time   `json:"last_success_at,omitempty" bson:"last_success_at,omitempty"`
	LastFailedAt         *time.Time   `json:"last_failed_at,omitempty" bson:"last_failed_at,omitempty"`

	// Capability hints passed through to callers; never consulted for routing.
	MaxTokens   int  `json:"max_tokens,omitempty" bson:"max_tokens,omitempty"`
	PromptCache bool `json:"prompt_cache" bson:"prompt_cache"`

	BaseURL string `json:"base_url,omitempty" bson:"base_url,omitempty"`
	APIKey  string `json:"-" bson:"api_key,omitempty"`
}

// EndpointID derives the stable identifier for this endpoint
func (e *Endpoint) EndpointID() string {
	return e.PlatformID + ":" + e.ModelID
}

// Pool is a named, prioritized set of endpoints for one capability type
type Pool struct {
	ID               uuid.UUID        `json:"id" bson:"_id"`
	Name             string           `json:"name" bson:"name"`
	CapabilityType   CapabilityType   `json:"capability_type" bson:"capability_type"`
	Priority         int              `json:"priority" bson:"priority"`
	IsDefaultForType bool             `json:"is_default_for_type" bson:"is_default_for_type"`
	Strategy         DispatchStrategy `json:"strategy" bson:"strategy"`
	Endpoints        []Endpoint       `json:"endpoints" bson:"endpoints"`
	CreatedAt        time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" bson:"updated_at"`
}

// CollectionName returns the MongoDB collection for the Pool model
func (Pool) CollectionName() string {
	return "model_pools"
}

// NewPool creates a new Pool with generated ID and timestamps
func NewPool(name string, capability CapabilityType, strategy DispatchStrategy, priority int) *Pool {
	now := time.Now()
	return &Pool{
		ID:             uuid.New(),
		Name:           name,
		CapabilityType: capability,
		Priority:       priority,
		Strategy:       strategy,
		Endpoints:      []Endpoint{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Endpoint returns the endpoint with the given derived ID, or nil
func (p *Pool) Endpoint(endpointID string) *Endpoint {
	for i := range p.Endpoints {
		if p.Endpoints[i].EndpointID() == endpointID {
			return &p.Endpoints[i]
		}
	}
	return nil
}

// LegacyEndpoint is the single non-pooled "default generation model" from
// the old configuration scheme. Used only when no pool exists for the
// generation capability type.
type LegacyEndpoint struct {
	ID         string     `json:"id" bson:"_id"`
	PlatformID string     `json:"platform_id" bson:"platform_id"`
	ModelID    string     `json:"model_id" bson:"model_id"`
	BaseURL    string     `json:"base_url,omitempty" bson:"base_url,omitempty"`
	APIKey     string     `json:"-" bson:"api_key,omitempty"`
	MaxTokens  int        `json:"max_tokens,omitempty" bson:"max_tokens,omitempty"`
	Enabled    bool       `json:"enabled" bson:"enabled"`
	UpdatedAt  time.Time  `json:"updated_at" bson:"updated_at"`
	UpdatedBy  *uuid.UUID `json:"updated_by,omitempty" bson:"updated_by,omitempty"`
}

// CollectionName returns the MongoDB collection for the LegacyEndpoint model
func (LegacyEndpoint) CollectionName() string {
	return "legacy_endpoints"
}

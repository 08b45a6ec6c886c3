package dispatch

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/prdhub/agentadmin/models"
	"github.com/prdhub/agentadmin/services/health"
)

// Candidate pairs an endpoint with its live health state
type Candidate struct {
	PoolID   uuid.UUID
	Endpoint *models.Endpoint
	Health   health.EndpointHealth
}

// PlanMode tells the engine how to execute a plan's steps
type PlanMode string

const (
	// PlanSingle attempts only the first step, no fallback
	PlanSingle PlanMode = "single"

	// PlanParallel launches every step at once; first success wins
	PlanParallel PlanMode = "parallel"

	// PlanOrdered attempts steps in order until success or exhaustion
	PlanOrdered PlanMode = "ordered"
)

// PlanStep is one planned attempt against an endpoint
type PlanStep struct {
	EndpointID   string              `json:"endpoint_id"`
	PlatformID   string              `json:"platform_id"`
	ModelID      string              `json:"model_id"`
	Priority     int                 `json:"priority"`
	Status       models.HealthStatus `json:"status"`
	HealthScore  int                 `json:"health_score"`
	Probability  float64             `json:"probability,omitempty"`
	AvgLatencyMs float64             `json:"avg_latency_ms,omitempty"`
}

// ExecutionPlan is the ordered/weighted plan a dispatch would follow. The
// same plan function feeds both the engine and the predictor so they cannot
// disagree about what happens next.
type ExecutionPlan struct {
	Strategy models.DispatchStrategy `json:"strategy"`
	Mode     PlanMode                `json:"mode"`

	// MaxAttempts caps how many steps the engine may try; 0 means every step
	MaxAttempts int `json:"max_attempts,omitempty"`

	Steps []PlanStep `json:"steps"`
}

// OrderCandidates filters out Unavailable endpoints and orders the rest:
// Healthy before Degraded, then by priority ascending, then by endpoint ID
// for a stable order. Shared by every strategy and the predictor.
func OrderCandidates(pool *models.Pool, snapshot map[string]health.EndpointHealth) []Candidate {
	candidates := make([]Candidate, 0, len(pool.Endpoints))
	for i := range pool.Endpoints {
		endpoint := &pool.Endpoints[i]
		h := snapshot[endpoint.EndpointID()]
		if h.Status == models.HealthUnavailable {
			continue
		}
		candidates = append(candidates, Candidate{
			PoolID:   pool.ID,
			Endpoint: endpoint,
			Health:   h,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		hi, hj := candidates[i].Health.Status, candidates[j].Health.Status
		if hi != hj {
			return hi == models.HealthHealthy
		}
		pi, pj := candidates[i].Endpoint.Priority, candidates[j].Endpoint.Priority
		if pi != pj {
			return pi < pj
		}
		return candidates[i].Endpoint.EndpointID() < candidates[j].Endpoint.EndpointID()
	})

	return candidates
}

func stepFor(c Candidate) PlanStep {
	return PlanStep{
		EndpointID:   c.Endpoint.EndpointID(),
		PlatformID:   c.Endpoint.PlatformID,
		ModelID:      c.Endpoint.ModelID,
		Priority:     c.Endpoint.Priority,
		Status:       c.Health.Status,
		HealthScore:  health.Score(c.Health),
		AvgLatencyMs: c.Health.AvgLatencyMs,
	}
}

// Cursors holds the per-pool round-robin rotation state. The cursor advances
// on every dispatch regardless of outcome; the predictor only peeks.
type Cursors struct {
	mu      sync.Mutex
	cursors map[uuid.UUID]uint64
}

// NewCursors creates an empty cursor set
func NewCursors() *Cursors {
	return &Cursors{cursors: make(map[uuid.UUID]uint64)}
}

// Next returns the current cursor for a pool and advances it
func (c *Cursors) Next(poolID uuid.UUID) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur := c.cursors[poolID]
	c.cursors[poolID] = cur + 1
	return cur
}

// Peek returns the current cursor for a pool without advancing it
func (c *Cursors) Peek(poolID uuid.UUID) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursors[poolID]
}

package dispatch

import (
	"github.com/google/uuid"

	"github.com/prdhub/agentadmin/models"
	"github.com/prdhub/agentadmin/services/health"
)

// EndpointView is one endpoint's rendered health state, including
// Unavailable endpoints that the plan excludes.
type EndpointView struct {
	EndpointID           string              `json:"endpoint_id"`
	PlatformID           string              `json:"platform_id"`
	ModelID              string              `json:"model_id"`
	Priority             int                 `json:"priority"`
	Status               models.HealthStatus `json:"status"`
	HealthScore          int                 `json:"health_score"`
	ConsecutiveFailures  int                 `json:"consecutive_failures"`
	ConsecutiveSuccesses int                 `json:"consecutive_successes"`
	AvgLatencyMs         float64             `json:"avg_latency_ms,omitempty"`
}

// Prediction explains what the next dispatch against a pool would do
type Prediction struct {
	PoolID              uuid.UUID               `json:"pool_id"`
	Strategy            models.DispatchStrategy `json:"strategy"`
	StrategyDescription string                  `json:"strategy_description"`
	Endpoints           []EndpointView          `json:"endpoints"`
	Plan                ExecutionPlan           `json:"plan"`

	// Probabilities holds the normalized first-draw probability per
	// candidate endpoint; only populated for weighted_random.
	Probabilities map[string]float64 `json:"probabilities,omitempty"`
}

var strategyDescriptions = map[models.DispatchStrategy]string{
	models.StrategyFailFast:       "single best candidate, no fallback on failure",
	models.StrategyRace:           "all candidates in parallel, first success wins and cancels the rest",
	models.StrategySequential:     "candidates in order, next on failure until success or exhaustion",
	models.StrategyRoundRobin:     "rotating cursor over candidates, one retry on failure",
	models.StrategyWeightedRandom: "weighted random draw (1/priority, halved when degraded), one re-draw on failure",
	models.StrategyLeastLatency:   "lowest rolling-average latency first, ties broken by priority",
}

// Predictor renders the dispatch decision the engine would make right now.
// It is a pure read: no network calls, no health mutation, no cursor
// advancement. It shares the engine's plan function so the two can never
// disagree.
type Predictor struct {
	engine *Engine
}

// NewPredictor creates a predictor over an engine
func NewPredictor(engine *Engine) *Predictor {
	return &Predictor{engine: engine}
}

// Predict computes the current execution plan for a pool. A pool with zero
// endpoints yields an empty plan, not an error.
func (p *Predictor) Predict(pool *models.Pool) *Prediction {
	plan, candidates := p.engine.PlanFor(pool)

	prediction := &Prediction{
		PoolID:              pool.ID,
		Strategy:            pool.Strategy,
		StrategyDescription: strategyDescriptions[pool.Strategy],
		Plan:                plan,
	}

	snapshot := p.engine.Tracker().Snapshot(pool)
	for i := range pool.Endpoints {
		endpoint := &pool.Endpoints[i]
		h := snapshot[endpoint.EndpointID()]
		prediction.Endpoints = append(prediction.Endpoints, EndpointView{
			EndpointID:           endpoint.EndpointID(),
			PlatformID:           endpoint.PlatformID,
			ModelID:              endpoint.ModelID,
			Priority:             endpoint.Priority,
			Status:               h.Status,
			HealthScore:          health.Score(h),
			ConsecutiveFailures:  h.ConsecutiveFailures,
			ConsecutiveSuccesses: h.ConsecutiveSuccesses,
			AvgLatencyMs:         h.AvgLatencyMs,
		})
	}

	if pool.Strategy == models.StrategyWeightedRandom && len(candidates) > 0 {
		probs := Probabilities(candidates)
		prediction.Probabilities = make(map[string]float64, len(candidates))
		for i, c := range candidates {
			prediction.Probabilities[c.Endpoint.EndpointID()] = probs[i]
		}
	}

	return prediction
}

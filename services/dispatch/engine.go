package dispatch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/prdhub/agentadmin/models"
	"github.com/prdhub/agentadmin/services"
	"github.com/prdhub/agentadmin/services/health"
	"github.com/prdhub/agentadmin/services/providers"
)

// Config holds dispatch engine tunables
type Config struct {
	// AttemptTimeout bounds each individual endpoint call
	AttemptTimeout time.Duration

	// RetryOnFailure is how many extra candidates round_robin and
	// weighted_random try after a failed attempt
	RetryOnFailure int
}

// DefaultConfig returns the default dispatch policy
func DefaultConfig() Config {
	return Config{
		AttemptTimeout: 60 * time.Second,
		RetryOnFailure: 1,
	}
}

// Result is a successful dispatch outcome
type Result struct {
	Response   *providers.Response
	EndpointID string
	Attempts   int
}

// Engine executes a pool's configured strategy over its endpoints, consulting
// and updating the health tracker on every attempt.
type Engine struct {
	sender     providers.Sender
	tracker    *health.Tracker
	strategies strategySet
	cursors    *Cursors
	config     Config
	logger     *zap.Logger
}

// NewEngine creates a dispatch engine
func NewEngine(sender providers.Sender, tracker *health.Tracker, config Config, logger *zap.Logger) *Engine {
	return &Engine{
		sender:     sender,
		tracker:    tracker,
		strategies: newStrategySet(config.RetryOnFailure),
		cursors:    NewCursors(),
		config:     config,
		logger:     logger,
	}
}

// Tracker exposes the health tracker for callers that merge health state
// into admin views.
func (e *Engine) Tracker() *health.Tracker {
	return e.tracker
}

// PlanFor computes the execution plan a dispatch of this pool would follow
// right now, without advancing cursors or touching the network. The
// predictor renders exactly this plan.
func (e *Engine) PlanFor(pool *models.Pool) (ExecutionPlan, []Candidate) {
	snapshot := e.tracker.Snapshot(pool)
	candidates := OrderCandidates(pool, snapshot)
	strategy, ok := e.strategies[pool.Strategy]
	if !ok {
		strategy = e.strategies[models.StrategySequential]
	}
	return strategy.Plan(candidates, e.cursors.Peek(pool.ID)), candidates
}

// Dispatch resolves the candidate set, selects the execution plan for the
// pool's strategy and carries out the network call(s). Every completed
// attempt reports its outcome to the health tracker; calls cancelled because
// another racer already won report nothing.
func (e *Engine) Dispatch(ctx context.Context, pool *models.Pool, req *providers.Request) (*Result, error) {
	snapshot := e.tracker.Snapshot(pool)
	candidates := OrderCandidates(pool, snapshot)
	if len(candidates) == 0 {
		return nil, services.ErrPoolExhausted.WithDetail("pool_id", pool.ID.String())
	}

	strategy, ok := e.strategies[pool.Strategy]
	if !ok {
		return nil, services.ErrInvalidStrategy.WithDetail("strategy", string(pool.Strategy))
	}

	var cursor uint64
	if pool.Strategy == models.StrategyRoundRobin {
		cursor = e.cursors.Next(pool.ID)
	}
	plan := strategy.Plan(candidates, cursor)

	byID := make(map[string]*models.Endpoint, len(candidates))
	for _, c := range candidates {
		byID[c.Endpoint.EndpointID()] = c.Endpoint
	}

	e.logger.Debug("dispatching",
		zap.String("pool_id", pool.ID.String()),
		zap.String("strategy", string(pool.Strategy)),
		zap.Int("candidates", len(candidates)))

	switch plan.Mode {
	case PlanParallel:
		return e.race(ctx, pool, plan, byID, req)
	default:
		return e.ordered(ctx, pool, plan, byID, req)
	}
}

// ordered walks the plan steps one at a time, falling back on failure until
// success, exhaustion or the plan's attempt cap. Covers single mode too,
// since a single plan has one step and MaxAttempts = 1.
func (e *Engine) ordered(ctx context.Context, pool *models.Pool, plan ExecutionPlan, byID map[string]*models.Endpoint, req *providers.Request) (*Result, error) {
	maxAttempts := len(plan.Steps)
	if plan.MaxAttempts > 0 && plan.MaxAttempts < maxAttempts {
		maxAttempts = plan.MaxAttempts
	}

	var attempts []AttemptError
	for i := 0; i < maxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		step := plan.Steps[i]
		resp, err := e.attempt(ctx, pool, byID[step.EndpointID], req)
		if err == nil {
			return &Result{Response: resp, EndpointID: step.EndpointID, Attempts: i + 1}, nil
		}
		attempts = append(attempts, newAttemptError(step.EndpointID, err))
	}

	return nil, &AggregateError{Strategy: plan.Strategy, Attempts: attempts}
}

// race launches every step at once. The first success cancels the rest; a
// call that failed because of that cancellation does not report an outcome.
func (e *Engine) race(ctx context.Context, pool *models.Pool, plan ExecutionPlan, byID map[string]*models.Endpoint, req *providers.Request) (*Result, error) {
	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		resp       *providers.Response
		endpointID string
		err        error
	}
	results := make(chan outcome, len(plan.Steps))

	for _, step := range plan.Steps {
		endpoint := byID[step.EndpointID]
		go func(endpointID string, endpoint *models.Endpoint) {
			attemptCtx := raceCtx
			if e.config.AttemptTimeout > 0 {
				var cancelAttempt context.CancelFunc
				attemptCtx, cancelAttempt = context.WithTimeout(raceCtx, e.config.AttemptTimeout)
				defer cancelAttempt()
			}

			start := time.Now()
			resp, err := e.sender.Send(attemptCtx, endpoint, req)
			if err != nil {
				if raceCtx.Err() == nil {
					e.tracker.ReportFailure(pool.ID, endpointID)
				}
				results <- outcome{endpointID: endpointID, err: err}
				return
			}
			if raceCtx.Err() == nil {
				e.tracker.ReportSuccess(pool.ID, endpointID, time.Since(start))
			}
			results <- outcome{resp: resp, endpointID: endpointID}
		}(step.EndpointID, endpoint)
	}

	var attempts []AttemptError
	for i := 0; i < len(plan.Steps); i++ {
		out := <-results
		if out.err == nil {
			cancel()
			return &Result{Response: out.resp, EndpointID: out.endpointID, Attempts: i + 1}, nil
		}
		attempts = append(attempts, newAttemptError(out.endpointID, out.err))
	}

	return nil, &AggregateError{Strategy: plan.Strategy, Attempts: attempts}
}

// attempt performs one endpoint call and reports its outcome. A caller
// cancellation is passed through without an outcome report since it says
// nothing about the endpoint.
func (e *Engine) attempt(ctx context.Context, pool *models.Pool, endpoint *models.Endpoint, req *providers.Request) (*providers.Response, error) {
	attemptCtx := ctx
	if e.config.AttemptTimeout > 0 {
		var cancelAttempt context.CancelFunc
		attemptCtx, cancelAttempt = context.WithTimeout(ctx, e.config.AttemptTimeout)
		defer cancelAttempt()
	}

	endpointID := endpoint.EndpointID()
	start := time.Now()
	resp, err := e.sender.Send(attemptCtx, endpoint, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		e.tracker.ReportFailure(pool.ID, endpointID)
		e.logger.Warn("endpoint attempt failed",
			zap.String("pool_id", pool.ID.String()),
			zap.String("endpoint_id", endpointID),
			zap.Error(err))
		return nil, err
	}

	e.tracker.ReportSuccess(pool.ID, endpointID, time.Since(start))
	return resp, nil
}

package dispatch

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/prdhub/agentadmin/models"
)

// Strategy turns an ordered candidate set into an execution plan. The engine
// executes plans; the predictor renders them. Strategies never perform I/O.
type Strategy interface {
	Name() models.DispatchStrategy
	Plan(candidates []Candidate, cursor uint64) ExecutionPlan
}

// strategySet wires one instance of every strategy
type strategySet map[models.DispatchStrategy]Strategy

func newStrategySet(retryOnFailure int) strategySet {
	return strategySet{
		models.StrategyFailFast:       failFastStrategy{},
		models.StrategyRace:           raceStrategy{},
		models.StrategySequential:     sequentialStrategy{},
		models.StrategyRoundRobin:     roundRobinStrategy{retries: retryOnFailure},
		models.StrategyWeightedRandom: newWeightedRandomStrategy(retryOnFailure),
		models.StrategyLeastLatency:   leastLatencyStrategy{},
	}
}

// failFastStrategy picks the single best candidate with no fallback
type failFastStrategy struct{}

func (failFastStrategy) Name() models.DispatchStrategy { return models.StrategyFailFast }

func (failFastStrategy) Plan(candidates []Candidate, _ uint64) ExecutionPlan {
	plan := ExecutionPlan{Strategy: models.StrategyFailFast, Mode: PlanSingle, MaxAttempts: 1}
	if len(candidates) > 0 {
		plan.Steps = []PlanStep{stepFor(candidates[0])}
	}
	return plan
}

// raceStrategy fans out to every candidate; first success wins
type raceStrategy struct{}

func (raceStrategy) Name() models.DispatchStrategy { return models.StrategyRace }

func (raceStrategy) Plan(candidates []Candidate, _ uint64) ExecutionPlan {
	plan := ExecutionPlan{Strategy: models.StrategyRace, Mode: PlanParallel}
	for _, c := range candidates {
		plan.Steps = append(plan.Steps, stepFor(c))
	}
	return plan
}

// sequentialStrategy tries candidates in order until one succeeds
type sequentialStrategy struct{}

func (sequentialStrategy) Name() models.DispatchStrategy { return models.StrategySequential }

func (sequentialStrategy) Plan(candidates []Candidate, _ uint64) ExecutionPlan {
	plan := ExecutionPlan{Strategy: models.StrategySequential, Mode: PlanOrdered}
	for _, c := range candidates {
		plan.Steps = append(plan.Steps, stepFor(c))
	}
	return plan
}

// roundRobinStrategy rotates through candidates via the per-pool cursor,
// retrying the next candidate a bounded number of times on failure
type roundRobinStrategy struct {
	retries int
}

func (roundRobinStrategy) Name() models.DispatchStrategy { return models.StrategyRoundRobin }

func (s roundRobinStrategy) Plan(candidates []Candidate, cursor uint64) ExecutionPlan {
	plan := ExecutionPlan{
		Strategy:    models.StrategyRoundRobin,
		Mode:        PlanOrdered,
		MaxAttempts: 1 + s.retries,
	}
	n := len(candidates)
	if n == 0 {
		return plan
	}
	start := int(cursor % uint64(n))
	for i := 0; i < n; i++ {
		plan.Steps = append(plan.Steps, stepFor(candidates[(start+i)%n]))
	}
	return plan
}

// weightedRandomStrategy draws candidates by normalized weight. Weight is
// 1/priority, halved when the endpoint is not Healthy. The rendered plan is
// a weighted sample without replacement; each step carries its probability
// from the draw it was selected in.
type weightedRandomStrategy struct {
	retries int
	mu      sync.Mutex
	rng     *rand.Rand
}

func newWeightedRandomStrategy(retries int) *weightedRandomStrategy {
	return &weightedRandomStrategy{
		retries: retries,
		rng:     rand.New(rand.NewSource(rand.Int63())),
	}
}

func (*weightedRandomStrategy) Name() models.DispatchStrategy { return models.StrategyWeightedRandom }

// Weight computes the raw selection weight for a candidate
func Weight(c Candidate) float64 {
	priority := c.Endpoint.Priority
	if priority < 1 {
		priority = 1
	}
	w := 1.0 / float64(priority)
	if c.Health.Status != models.HealthHealthy {
		w /= 2
	}
	return w
}

// Probabilities returns the normalized first-draw probability for each
// candidate, in candidate order. Shared with the predictor.
func Probabilities(candidates []Candidate) []float64 {
	probs := make([]float64, len(candidates))
	var total float64
	for i, c := range candidates {
		probs[i] = Weight(c)
		total += probs[i]
	}
	if total == 0 {
		return probs
	}
	for i := range probs {
		probs[i] /= total
	}
	return probs
}

func (s *weightedRandomStrategy) Plan(candidates []Candidate, _ uint64) ExecutionPlan {
	plan := ExecutionPlan{
		Strategy:    models.StrategyWeightedRandom,
		Mode:        PlanOrdered,
		MaxAttempts: 1 + s.retries,
	}

	remaining := make([]Candidate, len(candidates))
	copy(remaining, candidates)

	s.mu.Lock()
	defer s.mu.Unlock()

	for len(remaining) > 0 {
		probs := Probabilities(remaining)
		idx := s.draw(probs)
		step := stepFor(remaining[idx])
		step.Probability = probs[idx]
		plan.Steps = append(plan.Steps, step)
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return plan
}

// draw picks an index from a normalized distribution
func (s *weightedRandomStrategy) draw(probs []float64) int {
	r := s.rng.Float64()
	var acc float64
	for i, p := range probs {
		acc += p
		if r < acc {
			return i
		}
	}
	return len(probs) - 1
}

// leastLatencyStrategy orders candidates by tracked rolling-average success
// latency, ties broken by priority. Endpoints without latency data sort last
// among their peers so untried endpoints do not shadow known-fast ones.
type leastLatencyStrategy struct{}

func (leastLatencyStrategy) Name() models.DispatchStrategy { return models.StrategyLeastLatency }

func (leastLatencyStrategy) Plan(candidates []Candidate, _ uint64) ExecutionPlan {
	plan := ExecutionPlan{Strategy: models.StrategyLeastLatency, Mode: PlanOrdered}

	ordered := make([]Candidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		li, lj := ordered[i].Health.AvgLatencyMs, ordered[j].Health.AvgLatencyMs
		if li == 0 {
			li = float64(^uint32(0))
		}
		if lj == 0 {
			lj = float64(^uint32(0))
		}
		if li != lj {
			return li < lj
		}
		return ordered[i].Endpoint.Priority < ordered[j].Endpoint.Priority
	})

	for _, c := range ordered {
		plan.Steps = append(plan.Steps, stepFor(c))
	}
	return plan
}

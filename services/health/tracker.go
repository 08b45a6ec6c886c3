package health

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prdhub/agentadmin/models"
)

// Config holds the tunable health transition thresholds
type Config struct {
	// DegradedThreshold is the consecutive-failure count that moves a
	// Healthy endpoint to Degraded
	DegradedThreshold int

	// UnavailableThreshold is the consecutive-failure count that moves a
	// Degraded endpoint to Unavailable
	UnavailableThreshold int

	// RecoveryThreshold is the consecutive-success count that moves a
	// Degraded endpoint back to Healthy
	RecoveryThreshold int

	// LatencySmoothing is the EWMA factor applied to new success latencies
	LatencySmoothing float64
}

// DefaultConfig returns the default health policy
func DefaultConfig() Config {
	return Config{
		DegradedThreshold:    3,
		UnavailableThreshold: 5,
		RecoveryThreshold:    1,
		LatencySmoothing:     0.3,
	}
}

// EndpointHealth is the snapshot of one endpoint's tracked state
type EndpointHealth struct {
	Status               models.HealthStatus `json:"status"`
	ConsecutiveFailures  int                 `json:"consecutive_failures"`
	ConsecutiveSuccesses int                 `json:"consecutive_successes"`
	LastSuccessAt        *time.Time          `json:"last_success_at,omitempty"`
	LastFailedAt         *time.Time          `json:"last_failed_at,omitempty"`
	AvgLatencyMs         float64             `json:"avg_latency_ms"`
}

// Score computes the display health score in [0, 100]. Never used to rank
// candidates during real dispatch.
func Score(h EndpointHealth) int {
	var score int
	switch h.Status {
	case models.HealthHealthy:
		score = 100 - 10*h.ConsecutiveFailures
	case models.HealthDegraded:
		score = 50 - 5*h.ConsecutiveFailures
	case models.HealthUnavailable:
		score = 0
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

const shardCount = 16

type shard struct {
	mu      sync.RWMutex
	records map[recordKey]*EndpointHealth
}

type recordKey struct {
	poolID     uuid.UUID
	endpointID string
}

// Tracker keeps per-(poolID, endpointID) health state behind a sharded lock
// map. Updates are deltas against current state under the shard lock, so
// concurrent success/failure reports are never lost.
type Tracker struct {
	config Config
	shards [shardCount]*shard
	logger *zap.Logger
}

// NewTracker creates a health tracker with the given policy
func NewTracker(config Config, logger *zap.Logger) *Tracker {
	t := &Tracker{config: config, logger: logger}
	for i := range t.shards {
		t.shards[i] = &shard{records: make(map[recordKey]*EndpointHealth)}
	}
	return t
}

func (t *Tracker) shardFor(key recordKey) *shard {
	h := fnv.New32a()
	_, _ = h.Write(key.poolID[:])
	_, _ = h.Write([]byte(key.endpointID))
	return t.shards[h.Sum32()%shardCount]
}

// record returns the live record for key, creating a Healthy one if absent.
// Caller must hold the shard write lock.
func (s *shard) record(key recordKey) *EndpointHealth {
	rec, ok := s.records[key]
	if !ok {
		rec = &EndpointHealth{Status: models.HealthHealthy}
		s.records[key] = rec
	}
	return rec
}

// ReportSuccess records a successful dispatch outcome for an endpoint
func (t *Tracker) ReportSuccess(poolID uuid.UUID, endpointID string, latency time.Duration) {
	key := recordKey{poolID: poolID, endpointID: endpointID}
	sh := t.shardFor(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec := sh.record(key)
	now := time.Now()
	rec.ConsecutiveSuccesses++
	rec.ConsecutiveFailures = 0
	rec.LastSuccessAt = &now

	latencyMs := float64(latency.Milliseconds())
	if rec.AvgLatencyMs == 0 {
		rec.AvgLatencyMs = latencyMs
	} else {
		a := t.config.LatencySmoothing
		rec.AvgLatencyMs = a*latencyMs + (1-a)*rec.AvgLatencyMs
	}

	if rec.Status != models.HealthHealthy && rec.ConsecutiveSuccesses >= t.config.RecoveryThreshold {
		t.logger.Info("endpoint recovered",
			zap.String("pool_id", poolID.String()),
			zap.String("endpoint_id", endpointID),
			zap.String("from", string(rec.Status)))
		rec.Status = models.HealthHealthy
	}
}

// ReportFailure records a failed dispatch outcome for an endpoint
func (t *Tracker) ReportFailure(poolID uuid.UUID, endpointID string) {
	key := recordKey{poolID: poolID, endpointID: endpointID}
	sh := t.shardFor(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec := sh.record(key)
	now := time.Now()
	rec.ConsecutiveFailures++
	rec.ConsecutiveSuccesses = 0
	rec.LastFailedAt = &now

	switch rec.Status {
	case models.HealthHealthy:
		if rec.ConsecutiveFailures >= t.config.DegradedThreshold {
			rec.Status = models.HealthDegraded
			t.logger.Warn("endpoint degraded",
				zap.String("pool_id", poolID.String()),
				zap.String("endpoint_id", endpointID),
				zap.Int("consecutive_failures", rec.ConsecutiveFailures))
		}
	case models.HealthDegraded:
		if rec.ConsecutiveFailures >= t.config.UnavailableThreshold {
			rec.Status = models.HealthUnavailable
			t.logger.Warn("endpoint unavailable",
				zap.String("pool_id", poolID.String()),
				zap.String("endpoint_id", endpointID),
				zap.Int("consecutive_failures", rec.ConsecutiveFailures))
		}
	}
}

// Reset force-sets an endpoint to Healthy with zeroed counters. An empty
// endpointID resets every tracked endpoint of the pool. Used by operators to
// clear a false-positive degradation.
func (t *Tracker) Reset(poolID uuid.UUID, endpointID string) {
	now := time.Now()
	if endpointID != "" {
		key := recordKey{poolID: poolID, endpointID: endpointID}
		sh := t.shardFor(key)
		sh.mu.Lock()
		rec := sh.record(key)
		*rec = EndpointHealth{Status: models.HealthHealthy, LastSuccessAt: &now}
		sh.mu.Unlock()
		return
	}

	for _, sh := range t.shards {
		sh.mu.Lock()
		for key, rec := range sh.records {
			if key.poolID == poolID {
				*rec = EndpointHealth{Status: models.HealthHealthy, LastSuccessAt: &now}
			}
		}
		sh.mu.Unlock()
	}
}

// Get returns the tracked state for an endpoint. Untracked endpoints are
// reported as Healthy with zeroed counters.
func (t *Tracker) Get(poolID uuid.UUID, endpointID string) EndpointHealth {
	key := recordKey{poolID: poolID, endpointID: endpointID}
	sh := t.shardFor(key)

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	if rec, ok := sh.records[key]; ok {
		return *rec
	}
	return EndpointHealth{Status: models.HealthHealthy}
}

// Snapshot returns the tracked state for every endpoint of a pool, keyed by
// endpoint ID. Endpoints never dispatched to default to Healthy.
func (t *Tracker) Snapshot(pool *models.Pool) map[string]EndpointHealth {
	snapshot := make(map[string]EndpointHealth, len(pool.Endpoints))
	for i := range pool.Endpoints {
		endpointID := pool.Endpoints[i].EndpointID()
		snapshot[endpointID] = t.Get(pool.ID, endpointID)
	}
	return snapshot
}

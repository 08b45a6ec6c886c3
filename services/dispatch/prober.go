package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/prdhub/agentadmin/models"
	"github.com/prdhub/agentadmin/services/health"
	"github.com/prdhub/agentadmin/services/providers"
)

// ProbeConfig holds probing tunables
type ProbeConfig struct {
	// Timeout bounds each probe call
	Timeout time.Duration

	// MaxTokens is the token budget per probe
	MaxTokens int

	// MaxConcurrent caps the probe fan-out
	MaxConcurrent int

	// PreviewLength truncates the stored response preview
	PreviewLength int
}

// DefaultProbeConfig returns the default probe policy
func DefaultProbeConfig() ProbeConfig {
	return ProbeConfig{
		Timeout:       30 * time.Second,
		MaxTokens:     100,
		MaxConcurrent: 8,
		PreviewLength: 200,
	}
}

// ProbeResult is the outcome of one endpoint probe
type ProbeResult struct {
	EndpointID string              `json:"endpoint_id"`
	PlatformID string              `json:"platform_id"`
	ModelID    string              `json:"model_id"`
	Success    bool                `json:"success"`
	HTTPStatus int                 `json:"http_status,omitempty"`
	LatencyMs  int64               `json:"latency_ms"`
	Preview    string              `json:"preview,omitempty"`
	Error      string              `json:"error,omitempty"`
	Usage      *models.TokenUsage  `json:"usage,omitempty"`
}

// ProbeReport bundles probe results with the pool's accumulated health
// trend, so operators see raw connectivity and history side by side.
type ProbeReport struct {
	RunID   string                           `json:"run_id"`
	PoolID  uuid.UUID                        `json:"pool_id"`
	Results []ProbeResult                    `json:"results"`
	Health  map[string]health.EndpointHealth `json:"health"`
}

// Prober runs ad hoc connectivity tests across a pool's endpoints, outside
// production traffic. Probes always fan out concurrently regardless of the
// pool's dispatch strategy, and never feed the health tracker.
type Prober struct {
	sender  providers.Sender
	tracker *health.Tracker
	config  ProbeConfig
	logger  *zap.Logger
}

// NewProber creates an endpoint prober
func NewProber(sender providers.Sender, tracker *health.Tracker, config ProbeConfig, logger *zap.Logger) *Prober {
	return &Prober{
		sender:  sender,
		tracker: tracker,
		config:  config,
		logger:  logger,
	}
}

// Test probes the pool's endpoints with a single bounded request each. A
// non-empty filter restricts probing to the listed endpoint IDs. Individual
// failures never abort the rest of the batch.
func (p *Prober) Test(ctx context.Context, pool *models.Pool, endpointFilter []string, prompt string) (*ProbeReport, error) {
	targets := p.targets(pool, endpointFilter)

	report := &ProbeReport{
		RunID:   ulid.Make().String(),
		PoolID:  pool.ID,
		Results: make([]ProbeResult, len(targets)),
	}

	g, probeCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.MaxConcurrent)

	for i, endpoint := range targets {
		i, endpoint := i, endpoint
		g.Go(func() error {
			report.Results[i] = p.probe(probeCtx, endpoint, prompt)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Health = p.tracker.Snapshot(pool)

	p.logger.Info("probe run completed",
		zap.String("run_id", report.RunID),
		zap.String("pool_id", pool.ID.String()),
		zap.Int("targets", len(targets)))

	return report, nil
}

func (p *Prober) targets(pool *models.Pool, endpointFilter []string) []*models.Endpoint {
	if len(endpointFilter) == 0 {
		targets := make([]*models.Endpoint, len(pool.Endpoints))
		for i := range pool.Endpoints {
			targets[i] = &pool.Endpoints[i]
		}
		return targets
	}

	wanted := make(map[string]bool, len(endpointFilter))
	for _, id := range endpointFilter {
		wanted[id] = true
	}
	var targets []*models.Endpoint
	for i := range pool.Endpoints {
		if wanted[pool.Endpoints[i].EndpointID()] {
			targets = append(targets, &pool.Endpoints[i])
		}
	}
	return targets
}

func (p *Prober) probe(ctx context.Context, endpoint *models.Endpoint, prompt string) ProbeResult {
	result := ProbeResult{
		EndpointID: endpoint.EndpointID(),
		PlatformID: endpoint.PlatformID,
		ModelID:    endpoint.ModelID,
	}

	probeCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	req := &providers.Request{
		Messages:  []providers.Message{{Role: "user", Content: prompt}},
		MaxTokens: p.config.MaxTokens,
	}

	start := time.Now()
	resp, err := p.sender.Send(probeCtx, endpoint, req)
	result.LatencyMs = time.Since(start).Milliseconds()

	if err != nil {
		result.Error = err.Error()
		var sendErr *providers.SendError
		if errors.As(err, &sendErr) {
			result.HTTPStatus = sendErr.StatusCode
		}
		return result
	}

	result.Success = true
	result.HTTPStatus = resp.HTTPStatus
	result.Usage = resp.Usage
	result.Preview = truncate(resp.Content, p.config.PreviewLength)
	return result
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

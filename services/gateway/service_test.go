package gateway

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prdhub/agentadmin/models"
	"github.com/prdhub/agentadmin/services"
	"github.com/prdhub/agentadmin/services/dispatch"
	"github.com/prdhub/agentadmin/services/health"
	"github.com/prdhub/agentadmin/services/providers"
	"github.com/prdhub/agentadmin/services/resolver"
)

type fakePoolRepo struct {
	pools map[uuid.UUID]*models.Pool
}

func newFakePoolRepo(pools ...*models.Pool) *fakePoolRepo {
	repo := &fakePoolRepo{pools: make(map[uuid.UUID]*models.Pool)}
	for _, p := range pools {
		repo.pools[p.ID] = p
	}
	return repo
}

func (r *fakePoolRepo) Create(_ context.Context, pool *models.Pool) error {
	r.pools[pool.ID] = pool
	return nil
}

func (r *fakePoolRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Pool, error) {
	pool, ok := r.pools[id]
	if !ok {
		return nil, services.ErrPoolNotFound
	}
	return pool, nil
}

func (r *fakePoolRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*models.Pool, error) {
	var out []*models.Pool
	for _, id := range ids {
		if pool, ok := r.pools[id]; ok {
			out = append(out, pool)
		}
	}
	return out, nil
}

func (r *fakePoolRepo) GetByCapabilityType(_ context.Context, capability models.CapabilityType) ([]*models.Pool, error) {
	var out []*models.Pool
	for _, pool := range r.pools {
		if pool.CapabilityType == capability {
			out = append(out, pool)
		}
	}
	return out, nil
}

func (r *fakePoolRepo) GetDefaultsForType(_ context.Context, capability models.CapabilityType) ([]*models.Pool, error) {
	var out []*models.Pool
	for _, pool := range r.pools {
		if pool.CapabilityType == capability && pool.IsDefaultForType && len(pool.Endpoints) > 0 {
			out = append(out, pool)
		}
	}
	return out, nil
}

func (r *fakePoolRepo) List(_ context.Context, _, _ int) ([]*models.Pool, error) { return nil, nil }
func (r *fakePoolRepo) Update(_ context.Context, pool *models.Pool) error {
	r.pools[pool.ID] = pool
	return nil
}
func (r *fakePoolRepo) ClearDefaultForType(_ context.Context, _ models.CapabilityType, _ uuid.UUID) error {
	return nil
}
func (r *fakePoolRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.pools, id)
	return nil
}

type fakeBindingRepo struct {
	bindings map[string]*models.AppBinding
}

func newFakeBindingRepo(bindings ...*models.AppBinding) *fakeBindingRepo {
	repo := &fakeBindingRepo{bindings: make(map[string]*models.AppBinding)}
	for _, b := range bindings {
		repo.bindings[b.AppCallerCode] = b
	}
	return repo
}

func (r *fakeBindingRepo) Create(_ context.Context, b *models.AppBinding) error {
	r.bindings[b.AppCallerCode] = b
	return nil
}

func (r *fakeBindingRepo) GetByCallerCode(_ context.Context, code string) (*models.AppBinding, error) {
	b, ok := r.bindings[code]
	if !ok {
		return nil, services.ErrBindingNotFound
	}
	return b, nil
}

func (r *fakeBindingRepo) List(_ context.Context) ([]*models.AppBinding, error) { return nil, nil }
func (r *fakeBindingRepo) Update(_ context.Context, _ *models.AppBinding) error { return nil }
func (r *fakeBindingRepo) Delete(_ context.Context, _ uuid.UUID) error          { return nil }

type fakeLegacyRepo struct {
	endpoint *models.LegacyEndpoint
}

func (r *fakeLegacyRepo) Get(_ context.Context) (*models.LegacyEndpoint, error) {
	return r.endpoint, nil
}

func (r *fakeLegacyRepo) Set(_ context.Context, endpoint *models.LegacyEndpoint) error {
	r.endpoint = endpoint
	return nil
}

type fakeExchangeRepo struct {
	mu        sync.Mutex
	exchanges []*models.Exchange
}

func (r *fakeExchangeRepo) Insert(_ context.Context, exchange *models.Exchange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exchanges = append(r.exchanges, exchange)
	return nil
}

func (r *fakeExchangeRepo) GetByID(_ context.Context, id string) (*models.Exchange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.exchanges {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, services.ErrExchangeNotFound
}

func (r *fakeExchangeRepo) List(_ context.Context, _ string, _, _ int) ([]*models.Exchange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exchanges, nil
}

func (r *fakeExchangeRepo) last() *models.Exchange {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.exchanges) == 0 {
		return nil
	}
	return r.exchanges[len(r.exchanges)-1]
}

// fakeSender fails the endpoints named in failing and succeeds everywhere
// else
type fakeSender struct {
	mu      sync.Mutex
	failing map[string]bool
	calls   []string
}

func newFakeSender(failing ...string) *fakeSender {
	s := &fakeSender{failing: make(map[string]bool)}
	for _, id := range failing {
		s.failing[id] = true
	}
	return s
}

func (s *fakeSender) Send(_ context.Context, endpoint *models.Endpoint, _ *providers.Request) (*providers.Response, error) {
	id := endpoint.EndpointID()
	s.mu.Lock()
	s.calls = append(s.calls, id)
	failing := s.failing[id]
	s.mu.Unlock()

	if failing {
		return nil, providers.NewSendError(id, "upstream returned 500", 500, true, nil)
	}
	return &providers.Response{
		Content:    "ok from " + id,
		Model:      endpoint.ModelID,
		HTTPStatus: 200,
		Latency:    5 * time.Millisecond,
	}, nil
}

type testGateway struct {
	svc       *Service
	exchanges *fakeExchangeRepo
	sender    *fakeSender
}

func newTestGateway(sender *fakeSender, pools *fakePoolRepo, bindings *fakeBindingRepo) *testGateway {
	logger := zap.NewNop()
	res := resolver.NewService(pools, bindings, &fakeLegacyRepo{}, logger)
	tracker := health.NewTracker(health.DefaultConfig(), logger)
	engine := dispatch.NewEngine(sender, tracker, dispatch.DefaultConfig(), logger)
	exchanges := &fakeExchangeRepo{}
	return &testGateway{
		svc:       NewService(res, engine, exchanges, logger),
		exchanges: exchanges,
		sender:    sender,
	}
}

func testPool(name string, priority int, endpoints ...models.Endpoint) *models.Pool {
	pool := models.NewPool(name, models.CapabilityGeneration, models.StrategySequential, priority)
	pool.Endpoints = endpoints
	return pool
}

func endpoint(platform, model string, priority int) models.Endpoint {
	return models.Endpoint{PlatformID: platform, ModelID: model, Priority: priority}
}

func chatRequest(code string) *DispatchRequest {
	return &DispatchRequest{
		AppCallerCode:  code,
		CapabilityType: models.CapabilityGeneration,
		Messages:       []providers.Message{{Role: "user", Content: "hello"}},
	}
}

func TestDispatchRecordsExchangeOnSuccess(t *testing.T) {
	pool := testPool("default", 1, endpoint("openai", "gpt-4o", 1))
	pool.IsDefaultForType = true
	gw := newTestGateway(newFakeSender(), newFakePoolRepo(pool), newFakeBindingRepo())

	result, err := gw.svc.Dispatch(context.Background(), chatRequest(""))
	require.NoError(t, err)

	assert.Equal(t, "ok from openai:gpt-4o", result.Content)
	assert.Equal(t, string(resolver.ResolutionDefaultPool), result.ResolutionType)
	assert.Equal(t, pool.ID, result.PoolID)
	assert.Equal(t, 1, result.Attempts)
	assert.NotEmpty(t, result.ExchangeID)

	recorded := gw.exchanges.last()
	require.NotNil(t, recorded)
	assert.Equal(t, result.ExchangeID, recorded.ID)
	assert.True(t, recorded.Success)
	assert.Equal(t, "openai:gpt-4o", recorded.EndpointID)
}

func TestDispatchFallsBackToLowerPriorityPool(t *testing.T) {
	primary := testPool("primary", 1, endpoint("openai", "gpt-4o", 1))
	secondary := testPool("secondary", 2, endpoint("anthropic", "claude-sonnet", 1))

	binding := models.NewAppBinding("chat_assist", "")
	binding.Capabilities[models.CapabilityGeneration] = []uuid.UUID{primary.ID, secondary.ID}

	sender := newFakeSender("openai:gpt-4o")
	gw := newTestGateway(sender, newFakePoolRepo(primary, secondary), newFakeBindingRepo(binding))

	result, err := gw.svc.Dispatch(context.Background(), chatRequest("chat_assist"))
	require.NoError(t, err)

	assert.Equal(t, secondary.ID, result.PoolID)
	assert.Equal(t, "anthropic:claude-sonnet", result.EndpointID)
	// One failed attempt in the primary pool plus the winning one
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, []string{"openai:gpt-4o", "anthropic:claude-sonnet"}, sender.calls)
}

func TestDispatchRecordsFailureWhenAllPoolsFail(t *testing.T) {
	pool := testPool("default", 1, endpoint("openai", "gpt-4o", 1))
	pool.IsDefaultForType = true
	gw := newTestGateway(newFakeSender("openai:gpt-4o"), newFakePoolRepo(pool), newFakeBindingRepo())

	_, err := gw.svc.Dispatch(context.Background(), chatRequest(""))
	require.Error(t, err)

	recorded := gw.exchanges.last()
	require.NotNil(t, recorded)
	assert.False(t, recorded.Success)
	assert.NotEmpty(t, recorded.ErrorText)
	assert.Equal(t, 1, recorded.Attempts)
}

func TestDispatchNoModelAvailable(t *testing.T) {
	gw := newTestGateway(newFakeSender(), newFakePoolRepo(), newFakeBindingRepo())

	_, err := gw.svc.Dispatch(context.Background(), chatRequest(""))
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrNoModelAvailable)

	// The failed resolution is still recorded
	recorded := gw.exchanges.last()
	require.NotNil(t, recorded)
	assert.False(t, recorded.Success)
	assert.Equal(t, string(resolver.ResolutionNone), recorded.ResolutionType)
}

func TestDispatchUnknownCallerCode(t *testing.T) {
	gw := newTestGateway(newFakeSender(), newFakePoolRepo(), newFakeBindingRepo())

	_, err := gw.svc.Dispatch(context.Background(), chatRequest("not_registered"))
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrAppCodeNotRegistered)
	// Resolution rejections record nothing; no dispatch was attempted
	assert.Nil(t, gw.exchanges.last())
}

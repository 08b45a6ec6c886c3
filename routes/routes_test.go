package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prdhub/agentadmin/app"
	"github.com/prdhub/agentadmin/config"
	"github.com/prdhub/agentadmin/middleware"
	"github.com/prdhub/agentadmin/models"
	"github.com/prdhub/agentadmin/repositories"
	"github.com/prdhub/agentadmin/services"
	"github.com/prdhub/agentadmin/services/binding"
	"github.com/prdhub/agentadmin/services/dispatch"
	"github.com/prdhub/agentadmin/services/exchange"
	"github.com/prdhub/agentadmin/services/gateway"
	"github.com/prdhub/agentadmin/services/health"
	"github.com/prdhub/agentadmin/services/providers"
	"github.com/prdhub/agentadmin/services/registry"
	"github.com/prdhub/agentadmin/services/resolver"
)

type fakePoolRepo struct {
	pools map[uuid.UUID]*models.Pool
}

func newFakePoolRepo() *fakePoolRepo {
	return &fakePoolRepo{pools: make(map[uuid.UUID]*models.Pool)}
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

func (r *fakePoolRepo) List(_ context.Context, _, _ int) ([]*models.Pool, error) {
	var out []*models.Pool
	for _, pool := range r.pools {
		out = append(out, pool)
	}
	return out, nil
}

func (r *fakePoolRepo) Update(_ context.Context, pool *models.Pool) error {
	r.pools[pool.ID] = pool
	return nil
}

func (r *fakePoolRepo) ClearDefaultForType(_ context.Context, capability models.CapabilityType, except uuid.UUID) error {
	for _, pool := range r.pools {
		if pool.CapabilityType == capability && pool.ID != except {
			pool.IsDefaultForType = false
		}
	}
	return nil
}

func (r *fakePoolRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.pools, id)
	return nil
}

type fakeBindingRepo struct {
	bindings map[string]*models.AppBinding
}

func newFakeBindingRepo() *fakeBindingRepo {
	return &fakeBindingRepo{bindings: make(map[string]*models.AppBinding)}
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

func (r *fakeBindingRepo) List(_ context.Context) ([]*models.AppBinding, error) {
	var out []*models.AppBinding
	for _, b := range r.bindings {
		out = append(out, b)
	}
	return out, nil
}

func (r *fakeBindingRepo) Update(_ context.Context, b *models.AppBinding) error {
	r.bindings[b.AppCallerCode] = b
	return nil
}

func (r *fakeBindingRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

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
	exchanges []*models.Exchange
}

func (r *fakeExchangeRepo) Insert(_ context.Context, exchange *models.Exchange) error {
	r.exchanges = append(r.exchanges, exchange)
	return nil
}

func (r *fakeExchangeRepo) GetByID(_ context.Context, id string) (*models.Exchange, error) {
	for _, e := range r.exchanges {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, services.ErrExchangeNotFound
}

func (r *fakeExchangeRepo) List(_ context.Context, _ string, _, _ int) ([]*models.Exchange, error) {
	return r.exchanges, nil
}

type fakeSender struct{}

func (fakeSender) Send(_ context.Context, endpoint *models.Endpoint, _ *providers.Request) (*providers.Response, error) {
	return &providers.Response{
		Content:    "ok from " + endpoint.EndpointID(),
		Model:      endpoint.ModelID,
		HTTPStatus: 200,
	}, nil
}

// newTestDependencies wires a full dependency graph over in-memory
// repositories. The JWT secret is left empty so auth passes through.
func newTestDependencies() *app.Dependencies {
	logger := zap.NewNop()
	cfg := &config.Config{
		Server: config.ServerConfig{WriteTimeout: 30 * time.Second},
	}

	repos := &repositories.Repositories{
		Pools:           newFakePoolRepo(),
		Bindings:        newFakeBindingRepo(),
		LegacyEndpoints: &fakeLegacyRepo{},
		Exchanges:       &fakeExchangeRepo{},
	}

	tracker := health.NewTracker(health.DefaultConfig(), logger)
	engine := dispatch.NewEngine(fakeSender{}, tracker, dispatch.DefaultConfig(), logger)
	res := resolver.NewService(repos.Pools, repos.Bindings, repos.LegacyEndpoints, logger)

	return &app.Dependencies{
		Config:         cfg,
		Logger:         logger,
		Repos:          repos,
		Tracker:        tracker,
		Engine:         engine,
		Predictor:      dispatch.NewPredictor(engine),
		Prober:         dispatch.NewProber(fakeSender{}, tracker, dispatch.DefaultProbeConfig(), logger),
		Registry:       registry.NewService(repos.Pools, repos.LegacyEndpoints, logger),
		Bindings:       binding.NewService(repos.Bindings, repos.Pools, logger),
		Resolver:       res,
		Gateway:        gateway.NewService(res, engine, repos.Exchanges, logger),
		Exchanges:      exchange.NewService(repos.Exchanges, logger),
		AuthMiddleware: middleware.NewAuthMiddleware("", logger),
	}
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func TestPoolLifecycleOverHTTP(t *testing.T) {
	deps := newTestDependencies()
	handler := SetupRoutes(deps)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/pools", map[string]interface{}{
		"name":                "chat pool",
		"capability_type":     "generation",
		"strategy":            "sequential",
		"priority":            1,
		"is_default_for_type": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var pool models.Pool
	decodeData(t, rec, &pool)
	assert.Equal(t, "chat pool", pool.Name)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/pools/"+pool.ID.String()+"/endpoints", map[string]interface{}{
		"platform_id": "openai",
		"model_id":    "gpt-4o",
		"priority":    1,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/pools/"+pool.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &pool)
	require.Len(t, pool.Endpoints, 1)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/pools/"+pool.ID.String()+"/prediction", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/pools/"+pool.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/pools/"+pool.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePoolValidation(t *testing.T) {
	deps := newTestDependencies()
	handler := SetupRoutes(deps)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/pools", map[string]interface{}{
		"capability_type": "generation",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/pools/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDispatchOverHTTP(t *testing.T) {
	deps := newTestDependencies()
	handler := SetupRoutes(deps)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/pools", map[string]interface{}{
		"name":                "chat pool",
		"capability_type":     "generation",
		"strategy":            "sequential",
		"priority":            1,
		"is_default_for_type": true,
		"endpoints": []map[string]interface{}{
			{"platform_id": "openai", "model_id": "gpt-4o", "priority": 1},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/dispatch", map[string]interface{}{
		"capability_type": "generation",
		"messages":        []map[string]string{{"role": "user", "content": "hello"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result gateway.DispatchResult
	decodeData(t, rec, &result)
	assert.Equal(t, "ok from openai:gpt-4o", result.Content)
	assert.Equal(t, "default_pool", result.ResolutionType)

	// Exchange log reflects the dispatch
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/exchanges", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var exchanges []models.Exchange
	decodeData(t, rec, &exchanges)
	require.Len(t, exchanges, 1)
	assert.True(t, exchanges[0].Success)
}

func TestDispatchWithoutAnySource(t *testing.T) {
	deps := newTestDependencies()
	handler := SetupRoutes(deps)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/dispatch", map[string]interface{}{
		"capability_type": "generation",
		"messages":        []map[string]string{{"role": "user", "content": "hello"}},
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, rec.Body.String())
}

func TestDispatchUnknownCallerCodeForbidden(t *testing.T) {
	deps := newTestDependencies()
	handler := SetupRoutes(deps)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/dispatch", map[string]interface{}{
		"app_caller_code": "not_registered",
		"capability_type": "generation",
		"messages":        []map[string]string{{"role": "user", "content": "hello"}},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
}

func TestLegacyEndpointOverHTTP(t *testing.T) {
	deps := newTestDependencies()
	handler := SetupRoutes(deps)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/legacy-endpoint", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, handler, http.MethodPut, "/api/v1/legacy-endpoint", map[string]interface{}{
		"platform_id": "openai",
		"model_id":    "gpt-3.5-turbo",
		"enabled":     true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/legacy-endpoint", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthz(t *testing.T) {
	deps := newTestDependencies()
	handler := SetupRoutes(deps)

	rec := doJSON(t, handler, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownRouteReturnsJSON(t *testing.T) {
	deps := newTestDependencies()
	handler := SetupRoutes(deps)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not_found","message":"Route not found"}`, rec.Body.String())
}

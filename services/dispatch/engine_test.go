package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prdhub/agentadmin/models"
	"github.com/prdhub/agentadmin/services"
	"github.com/prdhub/agentadmin/services/health"
	"github.com/prdhub/agentadmin/services/providers"
)

// fakeSender scripts per-endpoint outcomes and records every call
type fakeSender struct {
	mu       sync.Mutex
	failing  map[string]bool
	blocking map[string]bool
	calls    []string
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		failing:  make(map[string]bool),
		blocking: make(map[string]bool),
	}
}

func (f *fakeSender) Send(ctx context.Context, endpoint *models.Endpoint, req *providers.Request) (*providers.Response, error) {
	id := endpoint.EndpointID()

	f.mu.Lock()
	f.calls = append(f.calls, id)
	failing := f.failing[id]
	blocking := f.blocking[id]
	f.mu.Unlock()

	if blocking {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if failing {
		return nil, &providers.SendError{EndpointID: id, StatusCode: 500, Message: "upstream error", Retryable: true}
	}
	return &providers.Response{Content: "ok from " + id, Model: endpoint.ModelID, HTTPStatus: 200}, nil
}

func (f *fakeSender) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSender) callOrder() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newTestEngine(sender providers.Sender) *Engine {
	tracker := health.NewTracker(health.DefaultConfig(), zap.NewNop())
	return NewEngine(sender, tracker, DefaultConfig(), zap.NewNop())
}

func chatRequest() *providers.Request {
	return &providers.Request{Messages: []providers.Message{{Role: "user", Content: "hi"}}}
}

func TestDispatchSequentialFallsBackOnFailure(t *testing.T) {
	sender := newFakeSender()
	sender.failing["a:m1"] = true
	engine := newTestEngine(sender)

	pool := testPool(models.StrategySequential,
		models.Endpoint{PlatformID: "a", ModelID: "m1", Priority: 1},
		models.Endpoint{PlatformID: "b", ModelID: "m2", Priority: 2},
	)

	result, err := engine.Dispatch(context.Background(), pool, chatRequest())
	require.NoError(t, err)
	assert.Equal(t, "b:m2", result.EndpointID)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, []string{"a:m1", "b:m2"}, sender.callOrder())

	// The failed attempt is recorded against a:m1
	assert.Equal(t, 1, engine.Tracker().Get(pool.ID, "a:m1").ConsecutiveFailures)
	assert.Equal(t, 1, engine.Tracker().Get(pool.ID, "b:m2").ConsecutiveSuccesses)
}

func TestDispatchFailFastDoesNotFallBack(t *testing.T) {
	sender := newFakeSender()
	sender.failing["a:m1"] = true
	engine := newTestEngine(sender)

	pool := testPool(models.StrategyFailFast,
		models.Endpoint{PlatformID: "a", ModelID: "m1", Priority: 1},
		models.Endpoint{PlatformID: "b", ModelID: "m2", Priority: 2},
	)

	_, err := engine.Dispatch(context.Background(), pool, chatRequest())
	require.Error(t, err)

	var agg *AggregateError
	require.ErrorAs(t, err, &agg)
	assert.Len(t, agg.Attempts, 1)
	assert.Equal(t, 1, sender.callCount())
}

func TestDispatchExhaustedPoolMakesNoNetworkCall(t *testing.T) {
	sender := newFakeSender()
	engine := newTestEngine(sender)

	pool := testPool(models.StrategySequential,
		models.Endpoint{PlatformID: "a", ModelID: "m1", Priority: 1},
	)
	for i := 0; i < 5; i++ {
		engine.Tracker().ReportFailure(pool.ID, "a:m1")
	}

	_, err := engine.Dispatch(context.Background(), pool, chatRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrPoolExhausted)
	assert.Zero(t, sender.callCount())
}

func TestDispatchInvalidStrategy(t *testing.T) {
	sender := newFakeSender()
	engine := newTestEngine(sender)

	pool := testPool(models.DispatchStrategy("mystery"),
		models.Endpoint{PlatformID: "a", ModelID: "m1", Priority: 1},
	)

	_, err := engine.Dispatch(context.Background(), pool, chatRequest())
	assert.ErrorIs(t, err, services.ErrInvalidStrategy)
	assert.Zero(t, sender.callCount())
}

func TestDispatchRoundRobinRotatesAcrossCalls(t *testing.T) {
	sender := newFakeSender()
	engine := newTestEngine(sender)

	pool := testPool(models.StrategyRoundRobin,
		models.Endpoint{PlatformID: "a", ModelID: "m1", Priority: 1},
		models.Endpoint{PlatformID: "b", ModelID: "m2", Priority: 2},
	)

	first, err := engine.Dispatch(context.Background(), pool, chatRequest())
	require.NoError(t, err)
	second, err := engine.Dispatch(context.Background(), pool, chatRequest())
	require.NoError(t, err)
	third, err := engine.Dispatch(context.Background(), pool, chatRequest())
	require.NoError(t, err)

	assert.Equal(t, "a:m1", first.EndpointID)
	assert.Equal(t, "b:m2", second.EndpointID)
	assert.Equal(t, "a:m1", third.EndpointID)
}

func TestDispatchRoundRobinRetryBound(t *testing.T) {
	sender := newFakeSender()
	sender.failing["a:m1"] = true
	sender.failing["b:m2"] = true
	sender.failing["c:m3"] = true
	engine := newTestEngine(sender)

	pool := testPool(models.StrategyRoundRobin,
		models.Endpoint{PlatformID: "a", ModelID: "m1", Priority: 1},
		models.Endpoint{PlatformID: "b", ModelID: "m2", Priority: 2},
		models.Endpoint{PlatformID: "c", ModelID: "m3", Priority: 3},
	)

	_, err := engine.Dispatch(context.Background(), pool, chatRequest())
	require.Error(t, err)

	// One attempt plus one retry, never the whole candidate list
	var agg *AggregateError
	require.ErrorAs(t, err, &agg)
	assert.Len(t, agg.Attempts, 2)
	assert.Equal(t, 2, sender.callCount())
}

func TestDispatchRaceFirstSuccessWins(t *testing.T) {
	sender := newFakeSender()
	sender.blocking["a:m1"] = true
	engine := newTestEngine(sender)

	pool := testPool(models.StrategyRace,
		models.Endpoint{PlatformID: "a", ModelID: "m1", Priority: 1},
		models.Endpoint{PlatformID: "b", ModelID: "m2", Priority: 2},
	)

	result, err := engine.Dispatch(context.Background(), pool, chatRequest())
	require.NoError(t, err)
	assert.Equal(t, "b:m2", result.EndpointID)
}

func TestDispatchRaceCancelledLoserReportsNothing(t *testing.T) {
	sender := newFakeSender()
	sender.blocking["a:m1"] = true
	engine := newTestEngine(sender)

	pool := testPool(models.StrategyRace,
		models.Endpoint{PlatformID: "a", ModelID: "m1", Priority: 1},
		models.Endpoint{PlatformID: "b", ModelID: "m2", Priority: 2},
	)

	_, err := engine.Dispatch(context.Background(), pool, chatRequest())
	require.NoError(t, err)

	// The blocked loser was cancelled by the winner; give its goroutine a
	// moment to observe the cancellation, then check it reported nothing.
	assert.Eventually(t, func() bool {
		h := engine.Tracker().Get(pool.ID, "a:m1")
		return h.ConsecutiveFailures == 0 && h.Status == models.HealthHealthy
	}, time.Second, 10*time.Millisecond)
}

func TestDispatchRaceAllFail(t *testing.T) {
	sender := newFakeSender()
	sender.failing["a:m1"] = true
	sender.failing["b:m2"] = true
	engine := newTestEngine(sender)

	pool := testPool(models.StrategyRace,
		models.Endpoint{PlatformID: "a", ModelID: "m1", Priority: 1},
		models.Endpoint{PlatformID: "b", ModelID: "m2", Priority: 2},
	)

	_, err := engine.Dispatch(context.Background(), pool, chatRequest())
	require.Error(t, err)

	var agg *AggregateError
	require.ErrorAs(t, err, &agg)
	assert.Len(t, agg.Attempts, 2)
}

func TestDispatchCancelledContext(t *testing.T) {
	sender := newFakeSender()
	engine := newTestEngine(sender)

	pool := testPool(models.StrategySequential,
		models.Endpoint{PlatformID: "a", ModelID: "m1", Priority: 1},
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Dispatch(ctx, pool, chatRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, engine.Tracker().Get(pool.ID, "a:m1").ConsecutiveFailures)
}

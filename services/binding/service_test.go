package binding

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prdhub/agentadmin/models"
	"github.com/prdhub/agentadmin/services"
)

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

func (r *fakePoolRepo) GetByCapabilityType(_ context.Context, _ models.CapabilityType) ([]*models.Pool, error) {
	return nil, nil
}

func (r *fakePoolRepo) GetDefaultsForType(_ context.Context, _ models.CapabilityType) ([]*models.Pool, error) {
	return nil, nil
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

func TestRegisterRequiresCallerCode(t *testing.T) {
	svc := NewService(newFakeBindingRepo(), newFakePoolRepo(), zap.NewNop())

	err := svc.Register(context.Background(), models.NewAppBinding("", ""))
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestRegisterRejectsMissingPool(t *testing.T) {
	svc := NewService(newFakeBindingRepo(), newFakePoolRepo(), zap.NewNop())

	b := models.NewAppBinding("chat_assist", "")
	b.Capabilities[models.CapabilityGeneration] = []uuid.UUID{uuid.New()}

	err := svc.Register(context.Background(), b)
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrPoolNotFound)
}

func TestRegisterRejectsCapabilityMismatch(t *testing.T) {
	embedPool := models.NewPool("embeddings", models.CapabilityEmbedding, models.StrategySequential, 1)
	svc := NewService(newFakeBindingRepo(), newFakePoolRepo(embedPool), zap.NewNop())

	// An embedding pool cannot be granted under the generation capability
	b := models.NewAppBinding("chat_assist", "")
	b.Capabilities[models.CapabilityGeneration] = []uuid.UUID{embedPool.ID}

	err := svc.Register(context.Background(), b)
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrInvalidCapability)
}

func TestRegisterAndGet(t *testing.T) {
	pool := models.NewPool("chat", models.CapabilityGeneration, models.StrategySequential, 1)
	svc := NewService(newFakeBindingRepo(), newFakePoolRepo(pool), zap.NewNop())

	b := models.NewAppBinding("chat_assist", "chat assistant feature")
	b.Capabilities[models.CapabilityGeneration] = []uuid.UUID{pool.ID}
	require.NoError(t, svc.Register(context.Background(), b))

	got, err := svc.Get(context.Background(), "chat_assist")
	require.NoError(t, err)
	assert.Equal(t, b.AppCallerCode, got.AppCallerCode)

	ids, granted := got.PoolsFor(models.CapabilityGeneration)
	assert.True(t, granted)
	assert.Equal(t, []uuid.UUID{pool.ID}, ids)
}

func TestUpdateValidatesPoolRefs(t *testing.T) {
	pool := models.NewPool("chat", models.CapabilityGeneration, models.StrategySequential, 1)
	svc := NewService(newFakeBindingRepo(), newFakePoolRepo(pool), zap.NewNop())

	b := models.NewAppBinding("chat_assist", "")
	b.Capabilities[models.CapabilityGeneration] = []uuid.UUID{pool.ID}
	require.NoError(t, svc.Register(context.Background(), b))

	b.Capabilities[models.CapabilityGeneration] = []uuid.UUID{uuid.New()}
	err := svc.Update(context.Background(), b)
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrPoolNotFound)
}

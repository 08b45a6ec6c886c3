package template

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

type fakeTemplateRepo struct {
	templates map[uuid.UUID]*models.Template
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: make(map[uuid.UUID]*models.Template)}
}

func (r *fakeTemplateRepo) Create(_ context.Context, t *models.Template) error {
	r.templates[t.ID] = t
	return nil
}

func (r *fakeTemplateRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Template, error) {
	t, ok := r.templates[id]
	if !ok {
		return nil, services.ErrTemplateNotFound
	}
	return t, nil
}

func (r *fakeTemplateRepo) GetByKey(_ context.Context, key string) (*models.Template, error) {
	for _, t := range r.templates {
		if t.Key == key {
			return t, nil
		}
	}
	return nil, services.ErrTemplateNotFound
}

func (r *fakeTemplateRepo) List(_ context.Context, enabledOnly bool) ([]*models.Template, error) {
	var out []*models.Template
	for _, t := range r.templates {
		if !enabledOnly || t.Enabled {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTemplateRepo) Update(_ context.Context, t *models.Template) error {
	r.templates[t.ID] = t
	return nil
}

func (r *fakeTemplateRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.templates, id)
	return nil
}

func newTestService() *Service {
	return NewService(newFakeTemplateRepo(), zap.NewNop())
}

func TestCreateTemplate(t *testing.T) {
	svc := newTestService()

	tpl := models.NewTemplate("summarize_doc", "Summarize", "assistant", "Summarize this document: {{content}}", 1)
	require.NoError(t, svc.Create(context.Background(), tpl))

	got, err := svc.Get(context.Background(), tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "summarize_doc", got.Key)
	assert.True(t, got.Enabled)
}

func TestCreateTemplateRequiresKey(t *testing.T) {
	svc := newTestService()

	err := svc.Create(context.Background(), models.NewTemplate("", "Untitled", "assistant", "", 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestCreateTemplateDuplicateKey(t *testing.T) {
	svc := newTestService()

	require.NoError(t, svc.Create(context.Background(), models.NewTemplate("summarize_doc", "Summarize", "assistant", "", 1)))

	err := svc.Create(context.Background(), models.NewTemplate("summarize_doc", "Other", "assistant", "", 2))
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrDuplicateTemplate)
}

func TestUpdateKeyImmutable(t *testing.T) {
	svc := newTestService()

	tpl := models.NewTemplate("summarize_doc", "Summarize", "assistant", "", 1)
	require.NoError(t, svc.Create(context.Background(), tpl))

	changed := *tpl
	changed.Key = "summarize_doc_v2"
	err := svc.Update(context.Background(), &changed)
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestUpdatePreservesCreatedAt(t *testing.T) {
	svc := newTestService()

	tpl := models.NewTemplate("summarize_doc", "Summarize", "assistant", "", 1)
	require.NoError(t, svc.Create(context.Background(), tpl))

	changed := *tpl
	changed.Title = "Summarize v2"
	require.NoError(t, svc.Update(context.Background(), &changed))

	got, err := svc.Get(context.Background(), tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "Summarize v2", got.Title)
	assert.Equal(t, tpl.CreatedAt, got.CreatedAt)
}

func TestListEnabledOnly(t *testing.T) {
	svc := newTestService()

	enabled := models.NewTemplate("visible", "Visible", "assistant", "", 1)
	require.NoError(t, svc.Create(context.Background(), enabled))
	hidden := models.NewTemplate("hidden", "Hidden", "assistant", "", 2)
	require.NoError(t, svc.Create(context.Background(), hidden))
	_, err := svc.SetEnabled(context.Background(), hidden.ID, false)
	require.NoError(t, err)

	templates, err := svc.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "visible", templates[0].Key)

	all, err := svc.List(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

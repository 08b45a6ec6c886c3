package template

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prdhub/agentadmin/models"
	"github.com/prdhub/agentadmin/repositories"
	"github.com/prdhub/agentadmin/services"
)

// Service manages prompt templates shown to platform clients
type Service struct {
	templates repositories.TemplateRepository
	logger    *zap.Logger
}

// NewService creates a template service
func NewService(templates repositories.TemplateRepository, logger *zap.Logger) *Service {
	return &Service{templates: templates, logger: logger}
}

// Create adds a new template. Keys are unique across templates.
func (s *Service) Create(ctx context.Context, t *models.Template) error {
	if t.Key == "" {
		return services.ErrInvalidInput.WithDetail("reason", "template key is required")
	}

	existing, err := s.templates.GetByKey(ctx, t.Key)
	if err != nil && !services.IsNotFoundError(err) {
		return err
	}
	if existing != nil {
		return services.ErrDuplicateTemplate.WithDetail("key", t.Key)
	}

	if err := s.templates.Create(ctx, t); err != nil {
		return err
	}
	s.logger.Info("template created",
		zap.String("template_id", t.ID.String()),
		zap.String("key", t.Key))
	return nil
}

// Get retrieves a template by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	return s.templates.GetByID(ctx, id)
}

// List retrieves templates ordered for display. When enabledOnly is set,
// disabled templates are filtered out.
func (s *Service) List(ctx context.Context, enabledOnly bool) ([]*models.Template, error) {
	return s.templates.List(ctx, enabledOnly)
}

// Update replaces a template's editable fields. The key is immutable.
func (s *Service) Update(ctx context.Context, t *models.Template) error {
	current, err := s.templates.GetByID(ctx, t.ID)
	if err != nil {
		return err
	}
	if t.Key != current.Key {
		return services.ErrInvalidInput.WithDetail("reason", "template key cannot be changed")
	}
	t.CreatedAt = current.CreatedAt
	t.UpdatedAt = time.Now()
	return s.templates.Update(ctx, t)
}

// SetEnabled toggles whether a template is shown to clients
func (s *Service) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) (*models.Template, error) {
	t, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Enabled = enabled
	t.UpdatedAt = time.Now()
	if err := s.templates.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a template
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.templates.Delete(ctx, id)
}

package exchange

import (
	"context"

	"go.uber.org/zap"

	"github.com/prdhub/agentadmin/models"
	"github.com/prdhub/agentadmin/repositories"
)

// Service exposes the dispatch exchange log to operators
type Service struct {
	exchanges repositories.ExchangeRepository
	logger    *zap.Logger
}

// NewService creates an exchange log service
func NewService(exchanges repositories.ExchangeRepository, logger *zap.Logger) *Service {
	return &Service{exchanges: exchanges, logger: logger}
}

// Get retrieves a single exchange record
func (s *Service) Get(ctx context.Context, id string) (*models.Exchange, error) {
	return s.exchanges.GetByID(ctx, id)
}

// List retrieves exchange records newest first, optionally filtered by the
// caller code that produced them
func (s *Service) List(ctx context.Context, appCallerCode string, limit, offset int) ([]*models.Exchange, error) {
	return s.exchanges.List(ctx, appCallerCode, limit, offset)
}

package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prdhub/agentadmin/models"
	"github.com/prdhub/agentadmin/repositories"
	"github.com/prdhub/agentadmin/services"
)

// validTransitions is the report workflow: open -> triaged -> resolved ->
// closed, with closing allowed from any non-closed state.
var validTransitions = map[models.ReportStatus][]models.ReportStatus{
	models.ReportStatusOpen:     {models.ReportStatusTriaged, models.ReportStatusResolved, models.ReportStatusClosed},
	models.ReportStatusTriaged:  {models.ReportStatusResolved, models.ReportStatusClosed},
	models.ReportStatusResolved: {models.ReportStatusClosed},
}

// Service manages user-filed reports
type Service struct {
	reports repositories.ReportRepository
	logger  *zap.Logger
}

// NewService creates a report service
func NewService(reports repositories.ReportRepository, logger *zap.Logger) *Service {
	return &Service{reports: reports, logger: logger}
}

// File records a new report in the open state
func (s *Service) File(ctx context.Context, reporterID uuid.UUID, category models.ReportCategory, title, content string) (*models.Report, error) {
	if title == "" {
		return nil, services.ErrInvalidInput.WithDetail("reason", "report title is required")
	}

	r := models.NewReport(reporterID, category, title, content)
	if err := s.reports.Create(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("report filed",
		zap.String("report_id", r.ID.String()),
		zap.String("category", string(category)))
	return r, nil
}

// Get retrieves a report by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	return s.reports.GetByID(ctx, id)
}

// List retrieves reports, optionally filtered by status
func (s *Service) List(ctx context.Context, status models.ReportStatus, limit, offset int) ([]*models.Report, error) {
	return s.reports.List(ctx, status, limit, offset)
}

// Transition moves a report through its workflow. Resolving records who
// resolved it.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to models.ReportStatus, operatorID uuid.UUID) (*models.Report, error) {
	r, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(r.Status, to) {
		return nil, services.ErrInvalidInput.
			WithDetail("from", string(r.Status)).
			WithDetail("to", string(to))
	}

	r.Status = to
	if to == models.ReportStatusResolved {
		r.ResolvedBy = &operatorID
	}
	r.UpdatedAt = time.Now()

	if err := s.reports.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Delete removes a report
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.reports.Delete(ctx, id)
}

func transitionAllowed(from, to models.ReportStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

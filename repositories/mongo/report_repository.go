package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/prdhub/agentadmin/models"
	"github.com/prdhub/agentadmin/repositories"
	"github.com/prdhub/agentadmin/services"
)

// ReportRepository implements the repositories.ReportRepository interface
type ReportRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *DB, logger *zap.Logger) repositories.ReportRepository {
	return &ReportRepository{db: db, logger: logger}
}

func (r *ReportRepository) collection() *mongo.Collection {
	return r.db.Collection(models.Report{}.CollectionName())
}

// Create creates a new report
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	if _, err := r.collection().InsertOne(ctx, report); err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	r.logger.Debug("report created", zap.String("id", report.ID.String()))
	return nil
}

// GetByID retrieves a report by ID
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	report := &models.Report{}
	err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

// List retrieves reports, optionally filtered by status, newest first
func (r *ReportRepository) List(ctx context.Context, status models.ReportStatus, limit, offset int) ([]*models.Report, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))
	cursor, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer cursor.Close(ctx)

	var reports []*models.Report
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("failed to decode reports: %w", err)
	}
	return reports, nil
}

// Update updates a report
func (r *ReportRepository) Update(ctx context.Context, report *models.Report) error {
	result, err := r.collection().ReplaceOne(ctx, bson.M{"_id": report.ID}, report)
	if err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}
	if result.MatchedCount == 0 {
		return services.ErrReportNotFound
	}
	return nil
}

// Delete deletes a report
func (r *ReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if result.DeletedCount == 0 {
		return services.ErrReportNotFound
	}
	return nil
}

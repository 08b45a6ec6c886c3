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

// TemplateRepository implements the repositories.TemplateRepository interface
type TemplateRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(db *DB, logger *zap.Logger) repositories.TemplateRepository {
	return &TemplateRepository{db: db, logger: logger}
}

func (r *TemplateRepository) collection() *mongo.Collection {
	return r.db.Collection(models.Template{}.CollectionName())
}

// Create creates a new template
func (r *TemplateRepository) Create(ctx context.Context, template *models.Template) error {
	count, err := r.collection().CountDocuments(ctx, bson.M{"key": template.Key})
	if err != nil {
		return fmt.Errorf("failed to check template key uniqueness: %w", err)
	}
	if count > 0 {
		return services.ErrDuplicateTemplate
	}
	if _, err := r.collection().InsertOne(ctx, template); err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	r.logger.Debug("template created", zap.String("key", template.Key))
	return nil
}

// GetByID retrieves a template by ID
func (r *TemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	template := &models.Template{}
	err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(template)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return template, nil
}

// GetByKey retrieves a template by its key
func (r *TemplateRepository) GetByKey(ctx context.Context, key string) (*models.Template, error) {
	template := &models.Template{}
	err := r.collection().FindOne(ctx, bson.M{"key": key}).Decode(template)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get template by key: %w", err)
	}
	return template, nil
}

// List retrieves templates ordered for client display
func (r *TemplateRepository) List(ctx context.Context, enabledOnly bool) ([]*models.Template, error) {
	filter := bson.M{}
	if enabledOnly {
		filter["enabled"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "key", Value: 1}})
	cursor, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer cursor.Close(ctx)

	var templates []*models.Template
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, fmt.Errorf("failed to decode templates: %w", err)
	}
	return templates, nil
}

// Update updates a template
func (r *TemplateRepository) Update(ctx context.Context, template *models.Template) error {
	result, err := r.collection().ReplaceOne(ctx, bson.M{"_id": template.ID}, template)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	if result.MatchedCount == 0 {
		return services.ErrTemplateNotFound
	}
	return nil
}

// Delete deletes a template
func (r *TemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	if result.DeletedCount == 0 {
		return services.ErrTemplateNotFound
	}
	return nil
}

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

// BindingRepository implements the repositories.BindingRepository interface
type BindingRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewBindingRepository creates a new binding repository
func NewBindingRepository(db *DB, logger *zap.Logger) repositories.BindingRepository {
	return &BindingRepository{db: db, logger: logger}
}

func (r *BindingRepository) collection() *mongo.Collection {
	return r.db.Collection(models.AppBinding{}.CollectionName())
}

// Create registers a new app binding
func (r *BindingRepository) Create(ctx context.Context, binding *models.AppBinding) error {
	count, err := r.collection().CountDocuments(ctx, bson.M{"app_caller_code": binding.AppCallerCode})
	if err != nil {
		return fmt.Errorf("failed to check binding uniqueness: %w", err)
	}
	if count > 0 {
		return services.ErrDuplicateCallerCode
	}
	if _, err := r.collection().InsertOne(ctx, binding); err != nil {
		return fmt.Errorf("failed to create binding: %w", err)
	}
	r.logger.Debug("app binding created", zap.String("app_caller_code", binding.AppCallerCode))
	return nil
}

// GetByCallerCode retrieves the binding for an app caller code
func (r *BindingRepository) GetByCallerCode(ctx context.Context, appCallerCode string) (*models.AppBinding, error) {
	binding := &models.AppBinding{}
	err := r.collection().FindOne(ctx, bson.M{"app_caller_code": appCallerCode}).Decode(binding)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrBindingNotFound
		}
		return nil, fmt.Errorf("failed to get binding: %w", err)
	}
	return binding, nil
}

// List retrieves all bindings
func (r *BindingRepository) List(ctx context.Context) ([]*models.AppBinding, error) {
	opts := options.Find().SetSort(bson.D{{Key: "app_caller_code", Value: 1}})
	cursor, err := r.collection().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list bindings: %w", err)
	}
	defer cursor.Close(ctx)

	var bindings []*models.AppBinding
	if err := cursor.All(ctx, &bindings); err != nil {
		return nil, fmt.Errorf("failed to decode bindings: %w", err)
	}
	return bindings, nil
}

// Update updates a binding
func (r *BindingRepository) Update(ctx context.Context, binding *models.AppBinding) error {
	result, err := r.collection().ReplaceOne(ctx, bson.M{"_id": binding.ID}, binding)
	if err != nil {
		return fmt.Errorf("failed to update binding: %w", err)
	}
	if result.MatchedCount == 0 {
		return services.ErrBindingNotFound
	}
	return nil
}

// Delete deletes a binding
func (r *BindingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete binding: %w", err)
	}
	if result.DeletedCount == 0 {
		return services.ErrBindingNotFound
	}
	return nil
}

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

// PoolRepository implements the repositories.PoolRepository interface
type PoolRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPoolRepository creates a new pool repository
func NewPoolRepository(db *DB, logger *zap.Logger) repositories.PoolRepository {
	return &PoolRepository{db: db, logger: logger}
}

func (r *PoolRepository) collection() *mongo.Collection {
	return r.db.Collection(models.Pool{}.CollectionName())
}

// Create creates a new pool
func (r *PoolRepository) Create(ctx context.Context, pool *models.Pool) error {
	if _, err := r.collection().InsertOne(ctx, pool); err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}
	r.logger.Debug("pool created", zap.String("id", pool.ID.String()))
	return nil
}

// GetByID retrieves a pool by ID
func (r *PoolRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Pool, error) {
	pool := &models.Pool{}
	err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(pool)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrPoolNotFound
		}
		return nil, fmt.Errorf("failed to get pool: %w", err)
	}
	return pool, nil
}

// GetByIDs retrieves pools for a set of IDs, skipping missing ones
func (r *PoolRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Pool, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := r.collection().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to query pools: %w", err)
	}
	return r.decodePools(ctx, cursor)
}

// GetByCapabilityType retrieves all pools for a capability type ordered by priority
func (r *PoolRepository) GetByCapabilityType(ctx context.Context, capability models.CapabilityType) ([]*models.Pool, error) {
	opts := options.Find().SetSort(bson.D{{Key: "priority", Value: 1}})
	cursor, err := r.collection().Find(ctx, bson.M{"capability_type": capability}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query pools: %w", err)
	}
	return r.decodePools(ctx, cursor)
}

// GetDefaultsForType retrieves pools flagged as default for a capability type
func (r *PoolRepository) GetDefaultsForType(ctx context.Context, capability models.CapabilityType) ([]*models.Pool, error) {
	opts := options.Find().SetSort(bson.D{{Key: "priority", Value: 1}})
	filter := bson.M{"capability_type": capability, "is_default_for_type": true}
	cursor, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query default pools: %w", err)
	}
	return r.decodePools(ctx, cursor)
}

// List retrieves all pools with pagination
func (r *PoolRepository) List(ctx context.Context, limit, offset int) ([]*models.Pool, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "capability_type", Value: 1}, {Key: "priority", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))
	cursor, err := r.collection().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list pools: %w", err)
	}
	return r.decodePools(ctx, cursor)
}

// Update updates a pool
func (r *PoolRepository) Update(ctx context.Context, pool *models.Pool) error {
	result, err := r.collection().ReplaceOne(ctx, bson.M{"_id": pool.ID}, pool)
	if err != nil {
		return fmt.Errorf("failed to update pool: %w", err)
	}
	if result.MatchedCount == 0 {
		return services.ErrPoolNotFound
	}
	r.logger.Debug("pool updated", zap.String("id", pool.ID.String()))
	return nil
}

// ClearDefaultForType unsets the default flag on every pool of a capability
// type except the given one
func (r *PoolRepository) ClearDefaultForType(ctx context.Context, capability models.CapabilityType, except uuid.UUID) error {
	filter := bson.M{
		"capability_type":     capability,
		"is_default_for_type": true,
		"_id":                 bson.M{"$ne": except},
	}
	update := bson.M{"$set": bson.M{"is_default_for_type": false}}
	if _, err := r.collection().UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to clear default pools: %w", err)
	}
	return nil
}

// Delete deletes a pool
func (r *PoolRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete pool: %w", err)
	}
	if result.DeletedCount == 0 {
		return services.ErrPoolNotFound
	}
	return nil
}

func (r *PoolRepository) decodePools(ctx context.Context, cursor *mongo.Cursor) ([]*models.Pool, error) {
	defer cursor.Close(ctx)
	var pools []*models.Pool
	if err := cursor.All(ctx, &pools); err != nil {
		return nil, fmt.Errorf("failed to decode pools: %w", err)
	}
	return pools, nil
}

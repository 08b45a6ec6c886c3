package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/prdhub/agentadmin/models"
	"github.com/prdhub/agentadmin/repositories"
)

// The legacy default generation model is a singleton document.
const legacyEndpointDocID = "default_generation_model"

// LegacyEndpointRepository implements repositories.LegacyEndpointRepository
type LegacyEndpointRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewLegacyEndpointRepository creates a new legacy endpoint repository
func NewLegacyEndpointRepository(db *DB, logger *zap.Logger) repositories.LegacyEndpointRepository {
	return &LegacyEndpointRepository{db: db, logger: logger}
}

func (r *LegacyEndpointRepository) collection() *mongo.Collection {
	return r.db.Collection(models.LegacyEndpoint{}.CollectionName())
}

// Get retrieves the configured legacy endpoint, if any. Returns (nil, nil)
// when none has ever been configured.
func (r *LegacyEndpointRepository) Get(ctx context.Context) (*models.LegacyEndpoint, error) {
	endpoint := &models.LegacyEndpoint{}
	err := r.collection().FindOne(ctx, bson.M{"_id": legacyEndpointDocID}).Decode(endpoint)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get legacy endpoint: %w", err)
	}
	return endpoint, nil
}

// Set stores or replaces the legacy endpoint
func (r *LegacyEndpointRepository) Set(ctx context.Context, endpoint *models.LegacyEndpoint) error {
	endpoint.ID = legacyEndpointDocID
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection().ReplaceOne(ctx, bson.M{"_id": legacyEndpointDocID}, endpoint, opts); err != nil {
		return fmt.Errorf("failed to set legacy endpoint: %w", err)
	}
	r.logger.Debug("legacy endpoint updated",
		zap.String("platform_id", endpoint.PlatformID),
		zap.String("model_id", endpoint.ModelID))
	return nil
}

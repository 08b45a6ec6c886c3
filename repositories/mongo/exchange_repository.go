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
	"github.com/prdhub/agentadmin/services"
)

// ExchangeRepository implements the repositories.ExchangeRepository interface
type ExchangeRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewExchangeRepository creates a new exchange repository
func NewExchangeRepository(db *DB, logger *zap.Logger) repositories.ExchangeRepository {
	return &ExchangeRepository{db: db, logger: logger}
}

func (r *ExchangeRepository) collection() *mongo.Collection {
	return r.db.Collection(models.Exchange{}.CollectionName())
}

// Insert inserts a new exchange record
func (r *ExchangeRepository) Insert(ctx context.Context, exchange *models.Exchange) error {
	if _, err := r.collection().InsertOne(ctx, exchange); err != nil {
		return fmt.Errorf("failed to insert exchange: %w", err)
	}
	return nil
}

// GetByID retrieves an exchange by ID
func (r *ExchangeRepository) GetByID(ctx context.Context, id string) (*models.Exchange, error) {
	exchange := &models.Exchange{}
	err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(exchange)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrExchangeNotFound
		}
		return nil, fmt.Errorf("failed to get exchange: %w", err)
	}
	return exchange, nil
}

// List retrieves exchanges, optionally filtered by caller code, newest first.
// ULID primary keys sort by creation time so _id descending is newest first.
func (r *ExchangeRepository) List(ctx context.Context, appCallerCode string, limit, offset int) ([]*models.Exchange, error) {
	filter := bson.M{}
	if appCallerCode != "" {
		filter["app_caller_code"] = appCallerCode
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))
	cursor, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}
	defer cursor.Close(ctx)

	var exchanges []*models.Exchange
	if err := cursor.All(ctx, &exchanges); err != nil {
		return nil, fmt.Errorf("failed to decode exchanges: %w", err)
	}
	return exchanges, nil
}

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

// TeamRepository implements the repositories.TeamRepository interface
type TeamRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *DB, logger *zap.Logger) repositories.TeamRepository {
	return &TeamRepository{db: db, logger: logger}
}

func (r *TeamRepository) collection() *mongo.Collection {
	return r.db.Collection(models.Team{}.CollectionName())
}

// Create creates a new team
func (r *TeamRepository) Create(ctx context.Context, team *models.Team) error {
	if _, err := r.collection().InsertOne(ctx, team); err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}
	r.logger.Debug("team created", zap.String("id", team.ID.String()))
	return nil
}

// GetByID retrieves a team by ID
func (r *TeamRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	team := &models.Team{}
	err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(team)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

// GetByInviteCode retrieves a team by its invite code
func (r *TeamRepository) GetByInviteCode(ctx context.Context, inviteCode string) (*models.Team, error) {
	team := &models.Team{}
	err := r.collection().FindOne(ctx, bson.M{"invite_code": inviteCode}).Decode(team)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team by invite code: %w", err)
	}
	return team, nil
}

// List retrieves all teams with pagination
func (r *TeamRepository) List(ctx context.Context, limit, offset int) ([]*models.Team, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))
	cursor, err := r.collection().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer cursor.Close(ctx)

	var teams []*models.Team
	if err := cursor.All(ctx, &teams); err != nil {
		return nil, fmt.Errorf("failed to decode teams: %w", err)
	}
	return teams, nil
}

// Update updates a team
func (r *TeamRepository) Update(ctx context.Context, team *models.Team) error {
	team.MemberCount = len(team.Members)
	result, err := r.collection().ReplaceOne(ctx, bson.M{"_id": team.ID}, team)
	if err != nil {
		return fmt.Errorf("failed to update team: %w", err)
	}
	if result.MatchedCount == 0 {
		return services.ErrTeamNotFound
	}
	return nil
}

// Delete deletes a team
func (r *TeamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	if result.DeletedCount == 0 {
		return services.ErrTeamNotFound
	}
	return nil
}

package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prdhub/agentadmin/models"
	"github.com/prdhub/agentadmin/repositories"
	"github.com/prdhub/agentadmin/services"
)

// Service manages platform user accounts
type Service struct {
	users  repositories.UserRepository
	logger *zap.Logger
}

// NewService creates a user service
func NewService(users repositories.UserRepository, logger *zap.Logger) *Service {
	return &Service{users: users, logger: logger}
}

// Create adds a new user account. Usernames are unique.
func (s *Service) Create(ctx context.Context, username, displayName, email string, role models.UserRole) (*models.User, error) {
	if username == "" {
		return nil, services.ErrInvalidInput.WithDetail("reason", "username is required")
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil && !services.IsNotFoundError(err) {
		return nil, err
	}
	if existing != nil {
		return nil, services.NewDomainError(services.ErrorTypeConflict, "username already taken", nil).
			WithDetail("username", username)
	}

	u := models.NewUser(username, displayName, email, role)
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user created",
		zap.String("user_id", u.ID.String()),
		zap.String("username", u.Username))
	return u, nil
}

// Get retrieves a user by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// GetByUsername retrieves a user by username
func (s *Service) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.users.GetByUsername(ctx, username)
}

// List retrieves users with pagination
func (s *Service) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return s.users.List(ctx, limit, offset)
}

// Update replaces a user's editable profile fields. The username is
// immutable.
func (s *Service) Update(ctx context.Context, u *models.User) (*models.User, error) {
	current, err := s.users.GetByID(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	current.DisplayName = u.DisplayName
	current.Email = u.Email
	current.Role = u.Role
	current.AvatarURL = u.AvatarURL
	current.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

// SetDisabled disables or re-enables an account
func (s *Service) SetDisabled(ctx context.Context, id uuid.UUID, disabled bool) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Disabled = disabled
	u.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes a user account
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.users.Delete(ctx, id)
}

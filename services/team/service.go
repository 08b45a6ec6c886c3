package team

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/prdhub/agentadmin/models"
	"github.com/prdhub/agentadmin/repositories"
	"github.com/prdhub/agentadmin/services"
)

// Service manages teams and their memberships
type Service struct {
	teams  repositories.TeamRepository
	logger *zap.Logger
}

// NewService creates a team service
func NewService(teams repositories.TeamRepository, logger *zap.Logger) *Service {
	return &Service{teams: teams, logger: logger}
}

// Create creates a team with the given owner. The invite code is generated
// server-side and returned on the created team.
func (s *Service) Create(ctx context.Context, name string, owner models.TeamMember) (*models.Team, error) {
	if name == "" {
		return nil, services.ErrInvalidInput.WithDetail("reason", "team name is required")
	}

	team := models.NewTeam(name, newInviteCode(), owner)
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, err
	}

	s.logger.Info("team created",
		zap.String("team_id", team.ID.String()),
		zap.String("name", team.Name))
	return team, nil
}

// Get retrieves a team by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	return s.teams.GetByID(ctx, id)
}

// List retrieves teams with pagination
func (s *Service) List(ctx context.Context, limit, offset int) ([]*models.Team, error) {
	return s.teams.List(ctx, limit, offset)
}

// Rename changes a team's name
func (s *Service) Rename(ctx context.Context, id uuid.UUID, name string) (*models.Team, error) {
	if name == "" {
		return nil, services.ErrInvalidInput.WithDetail("reason", "team name is required")
	}

	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	team.Name = name
	team.UpdatedAt = time.Now()
	if err := s.teams.Update(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

// Join adds a member to the team matching the invite code
func (s *Service) Join(ctx context.Context, inviteCode string, member models.TeamMember) (*models.Team, error) {
	team, err := s.teams.GetByInviteCode(ctx, inviteCode)
	if err != nil {
		return nil, err
	}

	for _, m := range team.Members {
		if m.UserID == member.UserID {
			return team, nil
		}
	}

	member.Role = models.TeamRoleMember
	member.JoinedAt = time.Now()
	team.Members = append(team.Members, member)
	team.MemberCount = len(team.Members)
	team.UpdatedAt = time.Now()

	if err := s.teams.Update(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

// RemoveMember removes a member from a team. The owner cannot be removed.
func (s *Service) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) (*models.Team, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	kept := team.Members[:0]
	found := false
	for _, m := range team.Members {
		if m.UserID == userID {
			if m.Role == models.TeamRoleOwner {
				return nil, services.ErrInvalidInput.WithDetail("reason", "team owner cannot be removed")
			}
			found = true
			continue
		}
		kept = append(kept, m)
	}
	if !found {
		return nil, services.ErrUserNotFound.WithDetail("user_id", userID.String())
	}

	team.Members = kept
	team.MemberCount = len(team.Members)
	team.UpdatedAt = time.Now()
	if err := s.teams.Update(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

// Delete removes a team
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.teams.Delete(ctx, id)
}

// newInviteCode generates a short shareable invite code from the random
// tail of a ULID.
func newInviteCode() string {
	id := ulid.Make().String()
	return id[len(id)-8:]
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// TeamRole represents a member's role within a team
type TeamRole string

const (
	TeamRoleOwner  TeamRole = "owner"
	TeamRoleAdmin  TeamRole = "admin"
	TeamRoleMember TeamRole = "member"
)

// TeamMember is a single membership record embedded in a Team
type TeamMember struct {
	UserID      uuid.UUID `json:"user_id" bson:"user_id"`
	DisplayName string    `json:"display_name" bson:"display_name"`
	Role        TeamRole  `json:"role" bson:"role"`
	JoinedAt    time.Time `json:"joined_at" bson:"joined_at"`
}

// Team represents a working group of platform users
type Team struct {
	ID          uuid.UUID    `json:"id" bson:"_id"`
	Name        string       `json:"name" bson:"name"`
	InviteCode  string       `json:"invite_code" bson:"invite_code"`
	Members     []TeamMember `json:"members" bson:"members"`
	MemberCount int          `json:"member_count" bson:"member_count"`
	CreatedAt   time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" bson:"updated_at"`
}

// CollectionName returns the MongoDB collection for the Team model
func (Team) CollectionName() string {
	return "teams"
}

// NewTeam creates a new Team with its creator as owner
func NewTeam(name, inviteCode string, owner TeamMember) *Team {
	now := time.Now()
	owner.Role = TeamRoleOwner
	owner.JoinedAt = now
	return &Team{
		ID:          uuid.New(),
		Name:        name,
		InviteCode:  inviteCode,
		Members:     []TeamMember{owner},
		MemberCount: 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

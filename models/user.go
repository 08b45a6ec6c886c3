package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents a platform-level role
type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleOperator UserRole = "operator"
	UserRoleMember   UserRole = "member"
)

// User represents a platform user account
type User struct {
	ID          uuid.UUID `json:"id" bson:"_id"`
	Username    string    `json:"username" bson:"username"`
	DisplayName string    `json:"display_name" bson:"display_name"`
	Email       string    `json:"email" bson:"email"`
	Role        UserRole  `json:"role" bson:"role"`
	AvatarURL   string    `json:"avatar_url,omitempty" bson:"avatar_url,omitempty"`
	Disabled    bool      `json:"disabled" bson:"disabled"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// CollectionName returns the MongoDB collection for the User model
func (User) CollectionName() string {
	return "users"
}

// NewUser creates a new User account
func NewUser(username, displayName, email string, role UserRole) *User {
	now := time.Now()
	return &User{
		ID:          uuid.New(),
		Username:    username,
		DisplayName: displayName,
		Email:       email,
		Role:        role,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

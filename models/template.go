package models

import (
	"time"

	"github.com/google/uuid"
)

// Template is a reusable prompt/agent template shown to platform clients
type Template struct {
	ID        uuid.UUID `json:"id" bson:"_id"`
	Key       string    `json:"key" bson:"key"`
	Title     string    `json:"title" bson:"title"`
	Role      string    `json:"role" bson:"role"`
	Order     int       `json:"order" bson:"order"`
	Content   string    `json:"content" bson:"content"`
	Enabled   bool      `json:"enabled" bson:"enabled"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// CollectionName returns the MongoDB collection for the Template model
func (Template) CollectionName() string {
	return "templates"
}

// NewTemplate creates a new Template
func NewTemplate(key, title, role, content string, order int) *Template {
	now := time.Now()
	return &Template{
		ID:        uuid.New(),
		Key:       key,
		Title:     title,
		Role:      role,
		Order:     order,
		Content:   content,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

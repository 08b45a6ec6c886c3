package models

import (
	"time"

	"github.com/google/uuid"
)

// AppBinding declares which capability types an application feature code may
// request and which dedicated pools it is bound to. A caller code without a
// binding for the requested capability type is rejected before resolution.
type AppBinding struct {
	ID            uuid.UUID                       `json:"id" bson:"_id"`
	AppCallerCode string                          `json:"app_caller_code" bson:"app_caller_code"`
	Description   string                          `json:"description,omitempty" bson:"description,omitempty"`
	Capabilities  map[CapabilityType][]uuid.UUID  `json:"capabilities" bson:"capabilities"`
	CreatedAt     time.Time                       `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time                       `json:"updated_at" bson:"updated_at"`
}

// CollectionName returns the MongoDB collection for the AppBinding model
func (AppBinding) CollectionName() string {
	return "app_bindings"
}

// NewAppBinding creates a new AppBinding for a caller code
func NewAppBinding(appCallerCode, description string) *AppBinding {
	now := time.Now()
	return &AppBinding{
		ID:            uuid.New(),
		AppCallerCode: appCallerCode,
		Description:   description,
		Capabilities:  make(map[CapabilityType][]uuid.UUID),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// PoolsFor returns the dedicated pool IDs bound for a capability type and
// whether the capability type is granted at all.
func (b *AppBinding) PoolsFor(capability CapabilityType) ([]uuid.UUID, bool) {
	pools, ok := b.Capabilities[capability]
	return pools, ok
}

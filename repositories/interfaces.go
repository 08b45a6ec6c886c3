package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/prdhub/agentadmin/models"
)

// PoolRepository handles model pool data operations
type PoolRepository interface {
	// Create creates a new pool
	Create(ctx context.Context, pool *models.Pool) error

	// GetByID retrieves a pool by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Pool, error)

	// GetByIDs retrieves pools for a set of IDs, skipping missing ones
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Pool, error)

	// GetByCapabilityType retrieves all pools for a capability type ordered by priority
	GetByCapabilityType(ctx context.Context, capability models.CapabilityType) ([]*models.Pool, error)

	// GetDefaultsForType retrieves pools flagged as default for a capability type
	GetDefaultsForType(ctx context.Context, capability models.CapabilityType) ([]*models.Pool, error)

	// List retrieves all pools with pagination
	List(ctx context.Context, limit, offset int) ([]*models.Pool, error)

	// Update updates a pool
	Update(ctx context.Context, pool *models.Pool) error

	// ClearDefaultForType unsets the default flag on every pool of a capability
	// type except the given one. Used to keep the single-default invariant.
	ClearDefaultForType(ctx context.Context, capability models.CapabilityType, except uuid.UUID) error

	// Delete deletes a pool
	Delete(ctx context.Context, id uuid.UUID) error
}

// BindingRepository handles app binding data operations
type BindingRepository interface {
	// Create registers a new app binding
	Create(ctx context.Context, binding *models.AppBinding) error

	// GetByCallerCode retrieves the binding for an app caller code
	GetByCallerCode(ctx context.Context, appCallerCode string) (*models.AppBinding, error)

	// List retrieves all bindings
	List(ctx context.Context) ([]*models.AppBinding, error)

	// Update updates a binding
	Update(ctx context.Context, binding *models.AppBinding) error

	// Delete deletes a binding
	Delete(ctx context.Context, id uuid.UUID) error
}

// LegacyEndpointRepository handles the legacy default generation model record
type LegacyEndpointRepository interface {
	// Get retrieves the configured legacy endpoint, if any
	Get(ctx context.Context) (*models.LegacyEndpoint, error)

	// Set stores or replaces the legacy endpoint
	Set(ctx context.Context, endpoint *models.LegacyEndpoint) error
}

// TeamRepository handles team data operations
type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error)
	GetByInviteCode(ctx context.Context, inviteCode string) (*models.Team, error)
	List(ctx context.Context, limit, offset int) ([]*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TemplateRepository handles template data operations
type TemplateRepository interface {
	Create(ctx context.Context, template *models.Template) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Template, error)
	GetByKey(ctx context.Context, key string) (*models.Template, error)
	List(ctx context.Context, enabledOnly bool) ([]*models.Template, error)
	Update(ctx context.Context, template *models.Template) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReportRepository handles report data operations
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	List(ctx context.Context, status models.ReportStatus, limit, offset int) ([]*models.Report, error)
	Update(ctx context.Context, report *models.Report) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserRepository handles user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ExchangeRepository handles dispatch exchange records
type ExchangeRepository interface {
	Insert(ctx context.Context, exchange *models.Exchange) error
	GetByID(ctx context.Context, id string) (*models.Exchange, error)
	List(ctx context.Context, appCallerCode string, limit, offset int) ([]*models.Exchange, error)
}

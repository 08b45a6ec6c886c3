package mongo

import (
	"context"

	"go.uber.org/zap"

	"github.com/prdhub/agentadmin/config"
	"github.com/prdhub/agentadmin/repositories"
)

// RepositoryFactory creates and manages all repositories
type RepositoryFactory struct {
	db     *DB
	logger *zap.Logger
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*RepositoryFactory, error) {
	db, err := NewDB(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	return &RepositoryFactory{db: db, logger: logger}, nil
}

// GetDB returns the underlying database handle
func (f *RepositoryFactory) GetDB() *DB {
	return f.db
}

// NewRepositories creates all repository instances
func (f *RepositoryFactory) NewRepositories() *repositories.Repositories {
	return &repositories.Repositories{
		Pools:           NewPoolRepository(f.db, f.logger),
		Bindings:        NewBindingRepository(f.db, f.logger),
		LegacyEndpoints: NewLegacyEndpointRepository(f.db, f.logger),
		Teams:           NewTeamRepository(f.db, f.logger),
		Templates:       NewTemplateRepository(f.db, f.logger),
		Reports:         NewReportRepository(f.db, f.logger),
		Users:           NewUserRepository(f.db, f.logger),
		Exchanges:       NewExchangeRepository(f.db, f.logger),
	}
}

// Close disconnects the underlying client
func (f *RepositoryFactory) Close(ctx context.Context) error {
	return f.db.Close(ctx)
}

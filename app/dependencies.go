package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/prdhub/agentadmin/config"
	"github.com/prdhub/agentadmin/middleware"
	"github.com/prdhub/agentadmin/repositories"
	mongorepo "github.com/prdhub/agentadmin/repositories/mongo"
	"github.com/prdhub/agentadmin/services/binding"
	"github.com/prdhub/agentadmin/services/dispatch"
	"github.com/prdhub/agentadmin/services/exchange"
	"github.com/prdhub/agentadmin/services/gateway"
	"github.com/prdhub/agentadmin/services/health"
	"github.com/prdhub/agentadmin/services/providers"
	"github.com/prdhub/agentadmin/services/registry"
	"github.com/prdhub/agentadmin/services/report"
	"github.com/prdhub/agentadmin/services/resolver"
	"github.com/prdhub/agentadmin/services/team"
	"github.com/prdhub/agentadmin/services/template"
	"github.com/prdhub/agentadmin/services/user"
)

// Dependencies is the central wiring point for dependency injection
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *mongorepo.DB
	Logger *zap.Logger

	// Repositories
	Repos *repositories.Repositories

	// Dispatch core
	Tracker   *health.Tracker
	Engine    *dispatch.Engine
	Predictor *dispatch.Predictor
	Prober    *dispatch.Prober

	// Services
	Registry  *registry.Service
	Bindings  *binding.Service
	Resolver  *resolver.Service
	Gateway   *gateway.Service
	Teams     *team.Service
	Templates *template.Service
	Reports   *report.Service
	Users     *user.Service
	Exchanges *exchange.Service

	// Auth
	AuthMiddleware *middleware.AuthMiddleware
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	factory, err := mongorepo.NewRepositoryFactory(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.DB = factory.GetDB()
	deps.Repos = factory.NewRepositories()

	deps.initDispatch(cfg)
	deps.initServices(cfg)

	deps.AuthMiddleware = middleware.NewAuthMiddleware(cfg.Auth.JWTSecret, logger)

	logger.Info("all dependencies initialized")
	return deps, nil
}

// initDispatch wires the health tracker and the dispatch engine around it
func (d *Dependencies) initDispatch(cfg *config.Config) {
	d.Tracker = health.NewTracker(health.Config{
		DegradedThreshold:    cfg.Health.DegradedThreshold,
		UnavailableThreshold: cfg.Health.UnavailableThreshold,
		RecoveryThreshold:    cfg.Health.RecoveryThreshold,
		LatencySmoothing:     cfg.Health.LatencySmoothing,
	}, d.Logger)

	sender := providers.NewHTTPSender(d.Logger)

	d.Engine = dispatch.NewEngine(sender, d.Tracker, dispatch.Config{
		AttemptTimeout: cfg.Dispatch.AttemptTimeout,
		RetryOnFailure: cfg.Dispatch.RetryOnFailure,
	}, d.Logger)
	d.Predictor = dispatch.NewPredictor(d.Engine)
	d.Prober = dispatch.NewProber(sender, d.Tracker, dispatch.ProbeConfig{
		Timeout:       cfg.Probe.Timeout,
		MaxTokens:     cfg.Probe.MaxTokens,
		MaxConcurrent: cfg.Probe.MaxConcurrent,
		PreviewLength: cfg.Probe.PreviewLength,
	}, d.Logger)
}

// initServices wires the domain services over repositories and the dispatch
// core
func (d *Dependencies) initServices(cfg *config.Config) {
	d.Registry = registry.NewService(d.Repos.Pools, d.Repos.LegacyEndpoints, d.Logger)
	d.Bindings = binding.NewService(d.Repos.Bindings, d.Repos.Pools, d.Logger)
	d.Resolver = resolver.NewService(d.Repos.Pools, d.Repos.Bindings, d.Repos.LegacyEndpoints, d.Logger)
	d.Gateway = gateway.NewService(d.Resolver, d.Engine, d.Repos.Exchanges, d.Logger)
	d.Teams = team.NewService(d.Repos.Teams, d.Logger)
	d.Templates = template.NewService(d.Repos.Templates, d.Logger)
	d.Reports = report.NewService(d.Repos.Reports, d.Logger)
	d.Users = user.NewService(d.Repos.Users, d.Logger)
	d.Exchanges = exchange.NewService(d.Repos.Exchanges, d.Logger)
}

// Close releases held resources
func (d *Dependencies) Close(ctx context.Context) error {
	if d.DB != nil {
		return d.DB.Close(ctx)
	}
	return nil
}

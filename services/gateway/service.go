package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prdhub/agentadmin/models"
	"github.com/prdhub/agentadmin/repositories"
	"github.com/prdhub/agentadmin/services"
	"github.com/prdhub/agentadmin/services/dispatch"
	"github.com/prdhub/agentadmin/services/providers"
	"github.com/prdhub/agentadmin/services/resolver"
)

// DispatchRequest is an incoming model call from a platform feature
type DispatchRequest struct {
	AppCallerCode  string                `json:"app_caller_code"`
	CapabilityType models.CapabilityType `json:"capability_type" validate:"required"`
	Messages       []providers.Message   `json:"messages" validate:"required,min=1"`
	MaxTokens      int                   `json:"max_tokens,omitempty" validate:"gte=0"`
	Temperature    float64               `json:"temperature,omitempty" validate:"gte=0,lte=2"`
	Metadata       map[string]string     `json:"metadata,omitempty"`
}

// DispatchResult is the outcome of a completed dispatch
type DispatchResult struct {
	ExchangeID     string             `json:"exchange_id"`
	Content        string             `json:"content"`
	Model          string             `json:"model"`
	ResolutionType string             `json:"resolution_type"`
	PoolID         uuid.UUID          `json:"pool_id"`
	EndpointID     string             `json:"endpoint_id"`
	Strategy       string             `json:"strategy"`
	Attempts       int                `json:"attempts"`
	LatencyMs      int64              `json:"latency_ms"`
	Usage          *models.TokenUsage `json:"usage,omitempty"`
}

// Service is the dispatch gateway: it resolves the model source for a
// caller, runs the dispatch engine against the resolved pools in priority
// order and records every completed dispatch as an exchange.
type Service struct {
	resolver  *resolver.Service
	engine    *dispatch.Engine
	exchanges repositories.ExchangeRepository
	logger    *zap.Logger
}

// NewService creates a gateway service
func NewService(res *resolver.Service, engine *dispatch.Engine, exchanges repositories.ExchangeRepository, logger *zap.Logger) *Service {
	return &Service{
		resolver:  res,
		engine:    engine,
		exchanges: exchanges,
		logger:    logger,
	}
}

// Dispatch resolves and executes one model call. When resolution yields
// several dedicated pools, lower-priority pools act as fallback after a
// higher-priority pool fails or is exhausted.
func (s *Service) Dispatch(ctx context.Context, req *DispatchRequest) (*DispatchResult, error) {
	start := time.Now()

	source, err := s.resolver.Resolve(ctx, req.AppCallerCode, req.CapabilityType)
	if err != nil {
		return nil, err
	}
	if source.Type == resolver.ResolutionNone || len(source.Pools) == 0 {
		s.record(ctx, req, string(source.Type), nil, nil, 0, time.Since(start), services.ErrNoModelAvailable)
		return nil, services.ErrNoModelAvailable.
			WithDetail("capability_type", string(req.CapabilityType))
	}

	call := &providers.Request{
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Metadata:    req.Metadata,
	}

	var lastErr error
	attempts := 0
	for _, pool := range source.Pools {
		result, err := s.engine.Dispatch(ctx, pool, call)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			attempts += countAttempts(err)
			lastErr = err
			s.logger.Warn("pool dispatch failed, trying next pool",
				zap.String("pool_id", pool.ID.String()),
				zap.String("app_caller_code", req.AppCallerCode),
				zap.Error(err))
			continue
		}

		attempts += result.Attempts
		latency := time.Since(start)
		exchangeID := s.record(ctx, req, string(source.Type), pool, result, attempts, latency, nil)

		return &DispatchResult{
			ExchangeID:     exchangeID,
			Content:        result.Response.Content,
			Model:          result.Response.Model,
			ResolutionType: string(source.Type),
			PoolID:         pool.ID,
			EndpointID:     result.EndpointID,
			Strategy:       string(pool.Strategy),
			Attempts:       attempts,
			LatencyMs:      latency.Milliseconds(),
			Usage:          result.Response.Usage,
		}, nil
	}

	s.record(ctx, req, string(source.Type), source.Pools[0], nil, attempts, time.Since(start), lastErr)

	if errors.Is(lastErr, services.ErrPoolExhausted) {
		return nil, services.ErrNoModelAvailable.
			WithDetail("capability_type", string(req.CapabilityType)).
			WithDetail("pools_tried", len(source.Pools))
	}
	return nil, fmt.Errorf("all resolved pools failed: %w", lastErr)
}

// record writes the exchange for a completed dispatch. A write failure is
// logged but never fails the dispatch itself.
func (s *Service) record(ctx context.Context, req *DispatchRequest, resolution string, pool *models.Pool, result *dispatch.Result, attempts int, latency time.Duration, dispatchErr error) string {
	exchange := &models.Exchange{
		ID:             models.NewExchangeID(),
		AppCallerCode:  req.AppCallerCode,
		CapabilityType: req.CapabilityType,
		ResolutionType: resolution,
		Success:        dispatchErr == nil,
		Attempts:       attempts,
		LatencyMs:      latency.Milliseconds(),
		CreatedAt:      time.Now().UTC(),
	}
	if pool != nil {
		poolID := pool.ID
		exchange.PoolID = &poolID
		exchange.Strategy = string(pool.Strategy)
	}
	if result != nil {
		exchange.EndpointID = result.EndpointID
		exchange.TokenUsage = result.Response.Usage
	}
	if dispatchErr != nil {
		exchange.ErrorText = dispatchErr.Error()
	}

	if err := s.exchanges.Insert(ctx, exchange); err != nil {
		s.logger.Error("failed to record exchange",
			zap.String("exchange_id", exchange.ID),
			zap.Error(err))
	}
	return exchange.ID
}

// countAttempts extracts how many endpoint attempts a failed pool dispatch
// made.
func countAttempts(err error) int {
	var agg *dispatch.AggregateError
	if errors.As(err, &agg) {
		return len(agg.Attempts)
	}
	return 0
}

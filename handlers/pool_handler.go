package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/prdhub/agentadmin/app"
	"github.com/prdhub/agentadmin/models"
	"github.com/prdhub/agentadmin/utils"
)

// CreatePoolRequest represents a request to create a model pool
type CreatePoolRequest struct {
	Name             string                  `json:"name" validate:"required"`
	CapabilityType   models.CapabilityType   `json:"capability_type" validate:"required"`
	Priority         int                     `json:"priority" validate:"gte=0"`
	Strategy         models.DispatchStrategy `json:"strategy" validate:"required"`
	IsDefaultForType bool                    `json:"is_default_for_type"`
	Endpoints        []models.Endpoint       `json:"endpoints,omitempty"`
}

// UpdatePoolRequest represents a request to update a model pool
type UpdatePoolRequest struct {
	Name             *string                  `json:"name,omitempty"`
	Priority         *int                     `json:"priority,omitempty" validate:"omitempty,gte=0"`
	Strategy         *models.DispatchStrategy `json:"strategy,omitempty"`
	IsDefaultForType *bool                    `json:"is_default_for_type,omitempty"`
}

// ProbeRequest represents a request to probe pool endpoints
type ProbeRequest struct {
	EndpointIDs []string `json:"endpoint_ids,omitempty"`
	Prompt      string   `json:"prompt,omitempty"`
}

// ListPoolsHandler handles GET /api/v1/pools
func ListPoolsHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := paginationParams(r)

		pools, err := deps.Registry.ListPools(r.Context(), limit, offset)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, pools)
	}
}

// CreatePoolHandler handles POST /api/v1/pools
func CreatePoolHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePoolRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Invalid request body", nil)
			return
		}
		if err := utils.ValidateStruct(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Validation failed", fieldDetails(err))
			return
		}

		pool := models.NewPool(req.Name, req.CapabilityType, req.Strategy, req.Priority)
		pool.IsDefaultForType = req.IsDefaultForType
		pool.Endpoints = req.Endpoints

		if err := deps.Registry.CreatePool(r.Context(), pool); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		deps.Logger.Info("pool created",
			zap.String("pool_id", pool.ID.String()),
			zap.String("capability_type", string(pool.CapabilityType)))
		_ = utils.WriteCreated(w, pool)
	}
}

// GetPoolHandler handles GET /api/v1/pools/{id}
func GetPoolHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.ParseUUID(chi.URLParam(r, "id"))
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid pool ID", nil)
			return
		}

		pool, err := deps.Registry.GetPool(r.Context(), id)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, pool)
	}
}

// UpdatePoolHandler handles PUT /api/v1/pools/{id}
func UpdatePoolHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.ParseUUID(chi.URLParam(r, "id"))
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid pool ID", nil)
			return
		}

		var req UpdatePoolRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Invalid request body", nil)
			return
		}

		pool, err := deps.Registry.GetPool(r.Context(), id)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		if req.Name != nil {
			pool.Name = *req.Name
		}
		if req.Priority != nil {
			pool.Priority = *req.Priority
		}
		if req.Strategy != nil {
			pool.Strategy = *req.Strategy
		}
		if req.IsDefaultForType != nil {
			pool.IsDefaultForType = *req.IsDefaultForType
		}

		if err := deps.Registry.UpdatePool(r.Context(), pool); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, pool)
	}
}

// DeletePoolHandler handles DELETE /api/v1/pools/{id}
func DeletePoolHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.ParseUUID(chi.URLParam(r, "id"))
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid pool ID", nil)
			return
		}

		if err := deps.Registry.DeletePool(r.Context(), id); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		utils.WriteNoContent(w)
	}
}

// SetDefaultPoolHandler handles POST /api/v1/pools/{id}/default
func SetDefaultPoolHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.ParseUUID(chi.URLParam(r, "id"))
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid pool ID", nil)
			return
		}

		pool, err := deps.Registry.SetDefault(r.Context(), id)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, pool)
	}
}

// AddEndpointHandler handles POST /api/v1/pools/{id}/endpoints
func AddEndpointHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.ParseUUID(chi.URLParam(r, "id"))
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid pool ID", nil)
			return
		}

		var endpoint models.Endpoint
		if err := json.NewDecoder(r.Body).Decode(&endpoint); err != nil {
			_ = utils.WriteBadRequest(w, "Invalid request body", nil)
			return
		}
		if endpoint.PlatformID == "" || endpoint.ModelID == "" {
			_ = utils.WriteBadRequest(w, "platform_id and model_id are required", nil)
			return
		}

		pool, err := deps.Registry.AddEndpoint(r.Context(), id, endpoint)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteCreated(w, pool)
	}
}

// RemoveEndpointHandler handles DELETE /api/v1/pools/{id}/endpoints/{endpointID}
func RemoveEndpointHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.ParseUUID(chi.URLParam(r, "id"))
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid pool ID", nil)
			return
		}
		endpointID := chi.URLParam(r, "endpointID")

		pool, err := deps.Registry.RemoveEndpoint(r.Context(), id, endpointID)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, pool)
	}
}

// PoolHealthHandler handles GET /api/v1/pools/{id}/health
func PoolHealthHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.ParseUUID(chi.URLParam(r, "id"))
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid pool ID", nil)
			return
		}

		pool, err := deps.Registry.GetPool(r.Context(), id)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, deps.Tracker.Snapshot(pool))
	}
}

// ResetPoolHealthHandler handles POST /api/v1/pools/{id}/health/reset.
// An optional endpoint_id query parameter restricts the reset to one
// endpoint.
func ResetPoolHealthHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.ParseUUID(chi.URLParam(r, "id"))
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid pool ID", nil)
			return
		}

		endpointID := r.URL.Query().Get("endpoint_id")
		deps.Tracker.Reset(id, endpointID)

		deps.Logger.Info("health state reset",
			zap.String("pool_id", id.String()),
			zap.String("endpoint_id", endpointID))
		utils.WriteNoContent(w)
	}
}

// ProbePoolHandler handles POST /api/v1/pools/{id}/probe
func ProbePoolHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.ParseUUID(chi.URLParam(r, "id"))
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid pool ID", nil)
			return
		}

		var req ProbeRequest
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				_ = utils.WriteBadRequest(w, "Invalid request body", nil)
				return
			}
		}
		if req.Prompt == "" {
			req.Prompt = "ping"
		}

		pool, err := deps.Registry.GetPool(r.Context(), id)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		report, err := deps.Prober.Test(r.Context(), pool, req.EndpointIDs, req.Prompt)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, report)
	}
}

// PredictPoolHandler handles GET /api/v1/pools/{id}/prediction
func PredictPoolHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.ParseUUID(chi.URLParam(r, "id"))
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid pool ID", nil)
			return
		}

		pool, err := deps.Registry.GetPool(r.Context(), id)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, deps.Predictor.Predict(pool))
	}
}

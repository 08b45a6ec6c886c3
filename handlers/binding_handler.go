package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/prdhub/agentadmin/app"
	"github.com/prdhub/agentadmin/models"
	"github.com/prdhub/agentadmin/utils"
)

// RegisterBindingRequest represents a request to register an app caller code
type RegisterBindingRequest struct {
	AppCallerCode string                                `json:"app_caller_code" validate:"required"`
	Description   string                                `json:"description,omitempty"`
	Capabilities  map[models.CapabilityType][]uuid.UUID `json:"capabilities"`
}

// UpdateBindingRequest represents a request to update a binding's grants
type UpdateBindingRequest struct {
	Description  *string                               `json:"description,omitempty"`
	Capabilities map[models.CapabilityType][]uuid.UUID `json:"capabilities,omitempty"`
}

// ListBindingsHandler handles GET /api/v1/bindings
func ListBindingsHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bindings, err := deps.Bindings.List(r.Context())
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, bindings)
	}
}

// RegisterBindingHandler handles POST /api/v1/bindings
func RegisterBindingHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterBindingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Invalid request body", nil)
			return
		}
		if err := utils.ValidateStruct(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Validation failed", fieldDetails(err))
			return
		}

		binding := models.NewAppBinding(req.AppCallerCode, req.Description)
		if req.Capabilities != nil {
			binding.Capabilities = req.Capabilities
		}

		if err := deps.Bindings.Register(r.Context(), binding); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteCreated(w, binding)
	}
}

// GetBindingHandler handles GET /api/v1/bindings/{code}
func GetBindingHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		binding, err := deps.Bindings.Get(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, binding)
	}
}

// UpdateBindingHandler handles PUT /api/v1/bindings/{code}
func UpdateBindingHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateBindingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Invalid request body", nil)
			return
		}

		binding, err := deps.Bindings.Get(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		if req.Description != nil {
			binding.Description = *req.Description
		}
		if req.Capabilities != nil {
			binding.Capabilities = req.Capabilities
		}

		if err := deps.Bindings.Update(r.Context(), binding); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, binding)
	}
}

// DeleteBindingHandler handles DELETE /api/v1/bindings/{code}
func DeleteBindingHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		binding, err := deps.Bindings.Get(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		if err := deps.Bindings.Delete(r.Context(), binding.ID); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		utils.WriteNoContent(w)
	}
}

package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prdhub/agentadmin/app"
	"github.com/prdhub/agentadmin/middleware"
	"github.com/prdhub/agentadmin/models"
	"github.com/prdhub/agentadmin/utils"
)

// SetLegacyEndpointRequest represents a request to set the fallback
// generation model used when no pool matches
type SetLegacyEndpointRequest struct {
	PlatformID string `json:"platform_id" validate:"required"`
	ModelID    string `json:"model_id" validate:"required"`
	BaseURL    string `json:"base_url,omitempty" validate:"omitempty,url"`
	APIKey     string `json:"api_key,omitempty"`
	MaxTokens  int    `json:"max_tokens,omitempty" validate:"gte=0"`
	Enabled    bool   `json:"enabled"`
}

// GetLegacyEndpointHandler handles GET /api/v1/legacy-endpoint
func GetLegacyEndpointHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		endpoint, err := deps.Registry.GetLegacyEndpoint(r.Context())
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		if endpoint == nil {
			_ = utils.WriteNotFound(w, "No legacy endpoint configured")
			return
		}
		_ = utils.WriteOK(w, endpoint)
	}
}

// SetLegacyEndpointHandler handles PUT /api/v1/legacy-endpoint
func SetLegacyEndpointHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SetLegacyEndpointRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Invalid request body", nil)
			return
		}
		if err := utils.ValidateStruct(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Validation failed", fieldDetails(err))
			return
		}

		endpoint := &models.LegacyEndpoint{
			PlatformID: req.PlatformID,
			ModelID:    req.ModelID,
			BaseURL:    req.BaseURL,
			APIKey:     req.APIKey,
			MaxTokens:  req.MaxTokens,
			Enabled:    req.Enabled,
			UpdatedAt:  time.Now().UTC(),
		}
		if claims := middleware.GetClaimsFromContext(r.Context()); claims != nil {
			if operatorID, err := utils.ParseUUID(claims.Subject); err == nil {
				endpoint.UpdatedBy = &operatorID
			}
		}

		if err := deps.Registry.SetLegacyEndpoint(r.Context(), endpoint); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, endpoint)
	}
}

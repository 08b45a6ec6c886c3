package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prdhub/agentadmin/app"
	"github.com/prdhub/agentadmin/models"
	"github.com/prdhub/agentadmin/utils"
)

// CreateTemplateRequest represents a request to create a template
type CreateTemplateRequest struct {
	Key     string `json:"key" validate:"required"`
	Title   string `json:"title" validate:"required"`
	Role    string `json:"role,omitempty"`
	Order   int    `json:"order" validate:"gte=0"`
	Content string `json:"content" validate:"required"`
}

// UpdateTemplateRequest represents a request to update a template
type UpdateTemplateRequest struct {
	Title   *string `json:"title,omitempty"`
	Role    *string `json:"role,omitempty"`
	Order   *int    `json:"order,omitempty" validate:"omitempty,gte=0"`
	Content *string `json:"content,omitempty"`
	Enabled *bool   `json:"enabled,omitempty"`
}

// ListTemplatesHandler handles GET /api/v1/templates. The enabled_only
// query parameter limits the listing to templates visible to clients.
func ListTemplatesHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enabledOnly := r.URL.Query().Get("enabled_only") == "true"
		templates, err := deps.Templates.List(r.Context(), enabledOnly)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, templates)
	}
}

// CreateTemplateHandler handles POST /api/v1/templates
func CreateTemplateHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateTemplateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Invalid request body", nil)
			return
		}
		if err := utils.ValidateStruct(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Validation failed", fieldDetails(err))
			return
		}

		t := models.NewTemplate(req.Key, req.Title, req.Role, req.Content, req.Order)
		if err := deps.Templates.Create(r.Context(), t); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteCreated(w, t)
	}
}

// GetTemplateHandler handles GET /api/v1/templates/{id}
func GetTemplateHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.ParseUUID(chi.URLParam(r, "id"))
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid template ID", nil)
			return
		}

		t, err := deps.Templates.Get(r.Context(), id)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, t)
	}
}

// UpdateTemplateHandler handles PUT /api/v1/templates/{id}
func UpdateTemplateHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.ParseUUID(chi.URLParam(r, "id"))
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid template ID", nil)
			return
		}

		var req UpdateTemplateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Invalid request body", nil)
			return
		}

		t, err := deps.Templates.Get(r.Context(), id)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		if req.Title != nil {
			t.Title = *req.Title
		}
		if req.Role != nil {
			t.Role = *req.Role
		}
		if req.Order != nil {
			t.Order = *req.Order
		}
		if req.Content != nil {
			t.Content = *req.Content
		}
		if req.Enabled != nil {
			t.Enabled = *req.Enabled
		}

		if err := deps.Templates.Update(r.Context(), t); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, t)
	}
}

// DeleteTemplateHandler handles DELETE /api/v1/templates/{id}
func DeleteTemplateHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.ParseUUID(chi.URLParam(r, "id"))
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid template ID", nil)
			return
		}

		if err := deps.Templates.Delete(r.Context(), id); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		utils.WriteNoContent(w)
	}
}

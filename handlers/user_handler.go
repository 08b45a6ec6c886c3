package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prdhub/agentadmin/app"
	"github.com/prdhub/agentadmin/models"
	"github.com/prdhub/agentadmin/utils"
)

// CreateUserRequest represents a request to create a user account
type CreateUserRequest struct {
	Username    string          `json:"username" validate:"required,min=3,max=64"`
	DisplayName string          `json:"display_name" validate:"required"`
	Email       string          `json:"email" validate:"required,email"`
	Role        models.UserRole `json:"role" validate:"required,oneof=admin operator member"`
}

// UpdateUserRequest represents a request to update a user's profile
type UpdateUserRequest struct {
	DisplayName *string          `json:"display_name,omitempty"`
	Email       *string          `json:"email,omitempty" validate:"omitempty,email"`
	Role        *models.UserRole `json:"role,omitempty" validate:"omitempty,oneof=admin operator member"`
	AvatarURL   *string          `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

// SetUserDisabledRequest represents a request to disable or re-enable an
// account
type SetUserDisabledRequest struct {
	Disabled bool `json:"disabled"`
}

// ListUsersHandler handles GET /api/v1/users
func ListUsersHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := paginationParams(r)
		users, err := deps.Users.List(r.Context(), limit, offset)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, users)
	}
}

// CreateUserHandler handles POST /api/v1/users
func CreateUserHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Invalid request body", nil)
			return
		}
		if err := utils.ValidateStruct(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Validation failed", fieldDetails(err))
			return
		}

		user, err := deps.Users.Create(r.Context(), req.Username, req.DisplayName, req.Email, req.Role)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteCreated(w, user)
	}
}

// GetUserHandler handles GET /api/v1/users/{id}
func GetUserHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.ParseUUID(chi.URLParam(r, "id"))
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid user ID", nil)
			return
		}

		user, err := deps.Users.Get(r.Context(), id)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, user)
	}
}

// UpdateUserHandler handles PUT /api/v1/users/{id}
func UpdateUserHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.ParseUUID(chi.URLParam(r, "id"))
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid user ID", nil)
			return
		}

		var req UpdateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Invalid request body", nil)
			return
		}
		if err := utils.ValidateStruct(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Validation failed", fieldDetails(err))
			return
		}

		current, err := deps.Users.Get(r.Context(), id)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		if req.DisplayName != nil {
			current.DisplayName = *req.DisplayName
		}
		if req.Email != nil {
			current.Email = *req.Email
		}
		if req.Role != nil {
			current.Role = *req.Role
		}
		if req.AvatarURL != nil {
			current.AvatarURL = *req.AvatarURL
		}

		user, err := deps.Users.Update(r.Context(), current)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, user)
	}
}

// SetUserDisabledHandler handles POST /api/v1/users/{id}/disabled
func SetUserDisabledHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.ParseUUID(chi.URLParam(r, "id"))
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid user ID", nil)
			return
		}

		var req SetUserDisabledRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Invalid request body", nil)
			return
		}

		user, err := deps.Users.SetDisabled(r.Context(), id, req.Disabled)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, user)
	}
}

// DeleteUserHandler handles DELETE /api/v1/users/{id}
func DeleteUserHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.ParseUUID(chi.URLParam(r, "id"))
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid user ID", nil)
			return
		}

		if err := deps.Users.Delete(r.Context(), id); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		utils.WriteNoContent(w)
	}
}

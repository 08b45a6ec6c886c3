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

// CreateTeamRequest represents a request to create a team
type CreateTeamRequest struct {
	Name             string    `json:"name" validate:"required"`
	OwnerID          uuid.UUID `json:"owner_id" validate:"required"`
	OwnerDisplayName string    `json:"owner_display_name" validate:"required"`
}

// RenameTeamRequest represents a request to rename a team
type RenameTeamRequest struct {
	Name string `json:"name" validate:"required"`
}

// JoinTeamRequest represents a request to join a team by invite code
type JoinTeamRequest struct {
	InviteCode  string    `json:"invite_code" validate:"required"`
	UserID      uuid.UUID `json:"user_id" validate:"required"`
	DisplayName string    `json:"display_name" validate:"required"`
}

// ListTeamsHandler handles GET /api/v1/teams
func ListTeamsHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := paginationParams(r)
		teams, err := deps.Teams.List(r.Context(), limit, offset)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, teams)
	}
}

// CreateTeamHandler handles POST /api/v1/teams
func CreateTeamHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateTeamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Invalid request body", nil)
			return
		}
		if err := utils.ValidateStruct(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Validation failed", fieldDetails(err))
			return
		}

		team, err := deps.Teams.Create(r.Context(), req.Name, models.TeamMember{
			UserID:      req.OwnerID,
			DisplayName: req.OwnerDisplayName,
		})
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteCreated(w, team)
	}
}

// GetTeamHandler handles GET /api/v1/teams/{id}
func GetTeamHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.ParseUUID(chi.URLParam(r, "id"))
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid team ID", nil)
			return
		}

		team, err := deps.Teams.Get(r.Context(), id)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, team)
	}
}

// RenameTeamHandler handles PUT /api/v1/teams/{id}
func RenameTeamHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.ParseUUID(chi.URLParam(r, "id"))
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid team ID", nil)
			return
		}

		var req RenameTeamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Invalid request body", nil)
			return
		}
		if err := utils.ValidateStruct(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Validation failed", fieldDetails(err))
			return
		}

		team, err := deps.Teams.Rename(r.Context(), id, req.Name)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, team)
	}
}

// JoinTeamHandler handles POST /api/v1/teams/join
func JoinTeamHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JoinTeamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Invalid request body", nil)
			return
		}
		if err := utils.ValidateStruct(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Validation failed", fieldDetails(err))
			return
		}

		team, err := deps.Teams.Join(r.Context(), req.InviteCode, models.TeamMember{
			UserID:      req.UserID,
			DisplayName: req.DisplayName,
		})
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, team)
	}
}

// RemoveTeamMemberHandler handles DELETE /api/v1/teams/{id}/members/{userID}
func RemoveTeamMemberHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teamID, err := utils.ParseUUID(chi.URLParam(r, "id"))
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid team ID", nil)
			return
		}
		userID, err := utils.ParseUUID(chi.URLParam(r, "userID"))
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid user ID", nil)
			return
		}

		team, err := deps.Teams.RemoveMember(r.Context(), teamID, userID)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, team)
	}
}

// DeleteTeamHandler handles DELETE /api/v1/teams/{id}
func DeleteTeamHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.ParseUUID(chi.URLParam(r, "id"))
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid team ID", nil)
			return
		}

		if err := deps.Teams.Delete(r.Context(), id); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		utils.WriteNoContent(w)
	}
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/prdhub/agentadmin/app"
	"github.com/prdhub/agentadmin/middleware"
	"github.com/prdhub/agentadmin/models"
	"github.com/prdhub/agentadmin/utils"
)

// FileReportRequest represents a request to file a report
type FileReportRequest struct {
	ReporterID uuid.UUID             `json:"reporter_id" validate:"required"`
	Category   models.ReportCategory `json:"category" validate:"required,oneof=defect content feedback"`
	Title      string                `json:"title" validate:"required"`
	Content    string                `json:"content,omitempty"`
}

// TransitionReportRequest represents a request to move a report through its
// workflow
type TransitionReportRequest struct {
	Status models.ReportStatus `json:"status" validate:"required,oneof=open triaged resolved closed"`
}

// ListReportsHandler handles GET /api/v1/reports. An optional status query
// parameter filters by workflow state.
func ListReportsHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := paginationParams(r)
		status := models.ReportStatus(r.URL.Query().Get("status"))

		reports, err := deps.Reports.List(r.Context(), status, limit, offset)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, reports)
	}
}

// FileReportHandler handles POST /api/v1/reports
func FileReportHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req FileReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Invalid request body", nil)
			return
		}
		if err := utils.ValidateStruct(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Validation failed", fieldDetails(err))
			return
		}

		report, err := deps.Reports.File(r.Context(), req.ReporterID, req.Category, req.Title, req.Content)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteCreated(w, report)
	}
}

// GetReportHandler handles GET /api/v1/reports/{id}
func GetReportHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.ParseUUID(chi.URLParam(r, "id"))
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid report ID", nil)
			return
		}

		report, err := deps.Reports.Get(r.Context(), id)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, report)
	}
}

// TransitionReportHandler handles POST /api/v1/reports/{id}/transition
func TransitionReportHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.ParseUUID(chi.URLParam(r, "id"))
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid report ID", nil)
			return
		}

		var req TransitionReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Invalid request body", nil)
			return
		}
		if err := utils.ValidateStruct(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Validation failed", fieldDetails(err))
			return
		}

		var operatorID uuid.UUID
		if claims := middleware.GetClaimsFromContext(r.Context()); claims != nil {
			if parsed, err := utils.ParseUUID(claims.Subject); err == nil {
				operatorID = parsed
			}
		}

		report, err := deps.Reports.Transition(r.Context(), id, req.Status, operatorID)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, report)
	}
}

// DeleteReportHandler handles DELETE /api/v1/reports/{id}
func DeleteReportHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.ParseUUID(chi.URLParam(r, "id"))
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid report ID", nil)
			return
		}

		if err := deps.Reports.Delete(r.Context(), id); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		utils.WriteNoContent(w)
	}
}

package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/prdhub/agentadmin/app"
	"github.com/prdhub/agentadmin/services/gateway"
	"github.com/prdhub/agentadmin/utils"
)

// DispatchHandler handles POST /api/v1/dispatch. This is the entry point
// platform features call: the caller code and capability type select the
// model source, the pool's strategy selects the endpoint(s).
func DispatchHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req gateway.DispatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Invalid request body", nil)
			return
		}
		if err := utils.ValidateStruct(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Validation failed", fieldDetails(err))
			return
		}

		result, err := deps.Gateway.Dispatch(r.Context(), &req)
		if err != nil {
			deps.Logger.Warn("dispatch failed",
				zap.String("app_caller_code", req.AppCallerCode),
				zap.String("capability_type", string(req.CapabilityType)),
				zap.Error(err))
			HandleServiceError(w, err, deps.Logger)
			return
		}

		_ = utils.WriteOK(w, result)
	}
}

package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/prdhub/agentadmin/app"
	"github.com/prdhub/agentadmin/utils"
)

// HealthCheck handles GET /healthz. Liveness only; no dependencies are
// consulted.
func HealthCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	}
}

// ReadinessCheck handles GET /readyz. Fails when the database is
// unreachable.
func ReadinessCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.DB.Ping(r.Context()); err != nil {
			deps.Logger.Error("readiness check failed", zap.Error(err))
			_ = utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"reason": "database unreachable",
			})
			return
		}
		_ = utils.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "ready",
		})
	}
}

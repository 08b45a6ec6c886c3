package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prdhub/agentadmin/app"
	"github.com/prdhub/agentadmin/utils"
)

// ListExchangesHandler handles GET /api/v1/exchanges. An optional
// app_caller_code query parameter filters by the feature that produced the
// dispatch.
func ListExchangesHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := paginationParams(r)
		appCallerCode := r.URL.Query().Get("app_caller_code")

		exchanges, err := deps.Exchanges.List(r.Context(), appCallerCode, limit, offset)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, exchanges)
	}
}

// GetExchangeHandler handles GET /api/v1/exchanges/{id}
func GetExchangeHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		exchange, err := deps.Exchanges.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, exchange)
	}
}

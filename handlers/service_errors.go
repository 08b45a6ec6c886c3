package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/prdhub/agentadmin/services"
	"github.com/prdhub/agentadmin/services/dispatch"
	"github.com/prdhub/agentadmin/utils"
)

// HandleServiceError maps domain errors to HTTP responses. Handlers stay
// thin: they decode, call a service and hand any error here.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	details := services.GetErrorDetails(err)

	switch {
	case services.IsNotFoundError(err):
		if werr := utils.WriteNotFound(w, err.Error()); werr != nil {
			logger.Error("failed to write not found response", zap.Error(werr))
		}

	case services.IsValidationError(err):
		if werr := utils.WriteBadRequest(w, err.Error(), details); werr != nil {
			logger.Error("failed to write bad request response", zap.Error(werr))
		}

	case services.IsUnauthorizedError(err):
		if werr := utils.WriteUnauthorized(w, err.Error()); werr != nil {
			logger.Error("failed to write unauthorized response", zap.Error(werr))
		}

	case services.IsForbiddenError(err):
		if werr := utils.WriteForbidden(w, err.Error()); werr != nil {
			logger.Error("failed to write forbidden response", zap.Error(werr))
		}

	case services.IsConflictError(err):
		if werr := utils.WriteConflict(w, err.Error(), details); werr != nil {
			logger.Error("failed to write conflict response", zap.Error(werr))
		}

	case errors.Is(err, services.ErrAppCodeNotRegistered):
		// An unregistered caller code is a caller mistake, not an outage
		if werr := utils.WriteForbidden(w, err.Error()); werr != nil {
			logger.Error("failed to write forbidden response", zap.Error(werr))
		}

	case services.IsRoutingError(err):
		if werr := utils.WriteServiceUnavailable(w, err.Error(), details); werr != nil {
			logger.Error("failed to write service unavailable response", zap.Error(werr))
		}

	case isDispatchFailure(err):
		if werr := utils.WriteBadGateway(w, err.Error(), details); werr != nil {
			logger.Error("failed to write bad gateway response", zap.Error(werr))
		}

	default:
		logger.Error("internal server error", zap.Error(err))
		if werr := utils.WriteInternalServerError(w, "An internal error occurred"); werr != nil {
			logger.Error("failed to write internal error response", zap.Error(werr))
		}
	}
}

// isDispatchFailure reports whether the error chain ends in upstream
// endpoint failures rather than an application fault
func isDispatchFailure(err error) bool {
	var agg *dispatch.AggregateError
	return errors.As(err, &agg)
}

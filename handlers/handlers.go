package handlers

import (
	"net/http"
	"strconv"

	"github.com/prdhub/agentadmin/utils"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// paginationParams reads limit/offset query parameters with sane bounds
func paginationParams(r *http.Request) (limit, offset int) {
	limit = defaultPageLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// fieldDetails converts validation field errors into response details
func fieldDetails(err error) map[string]interface{} {
	fields := utils.GetValidationFields(err)
	if fields == nil {
		return nil
	}
	details := make(map[string]interface{}, len(fields))
	for field, msg := range fields {
		details[field] = msg
	}
	return details
}

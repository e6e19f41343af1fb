package server

import (
	"errors"
	"net/http"

	"github.com/teamdash/roadmap-service/internal/apperr"
	"github.com/teamdash/roadmap-service/internal/azdo"
	"github.com/teamdash/roadmap-service/internal/logging"
	"github.com/teamdash/roadmap-service/internal/storage"
)

// writeError maps domain errors onto the API error envelope. Validation
// failures arrive as ready-made APIErrors; upstream and storage errors are
// translated here.
func writeError(w http.ResponseWriter, err error) {
	apiErr := toAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		logging.Error("request failed", "status", apiErr.Status, "error", err.Error())
	}
	writeJSON(w, apiErr.Status, apiErr.Response())
}

func toAPIError(err error) *apperr.APIError {
	var apiErr *apperr.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, azdo.ErrNotFound):
		return apperr.New(http.StatusNotFound, "NOT_FOUND", "work item not found in Azure DevOps")
	case errors.Is(err, storage.ErrDeploymentNotFound):
		return apperr.New(http.StatusNotFound, "NOT_FOUND", "deployment not found")
	case errors.Is(err, storage.ErrDeploymentExists):
		return apperr.New(http.StatusConflict, "DEPLOYMENT_EXISTS", "deployment already exists")
	}

	var statusErr *azdo.StatusError
	if errors.As(err, &statusErr) {
		return apperr.New(http.StatusBadGateway, "UPSTREAM_ERROR", "Azure DevOps request failed")
	}

	return apperr.New(http.StatusInternalServerError, "INTERNAL", "internal server error")
}

package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/teamdash/roadmap-service/internal/apperr"
	"github.com/teamdash/roadmap-service/internal/service"
	"github.com/teamdash/roadmap-service/internal/storage"
)

type deploymentResponse struct {
	ID             string    `json:"id"`
	ReleaseVersion string    `json:"releaseVersion"`
	Environment    string    `json:"environment"`
	WorkItemIDs    []int     `json:"workItemIds"`
	DeployedBy     string    `json:"deployedBy"`
	DeployedAt     time.Time `json:"deployedAt"`
	Notes          string    `json:"notes,omitempty"`
}

func deploymentToAPI(d storage.Deployment) deploymentResponse {
	ids := d.WorkItemIDs
	if ids == nil {
		ids = []int{}
	}
	return deploymentResponse{
		ID:             d.ID,
		ReleaseVersion: d.ReleaseVersion,
		Environment:    d.Environment,
		WorkItemIDs:    ids,
		DeployedBy:     d.DeployedBy,
		DeployedAt:     d.DeployedAt.UTC(),
		Notes:          d.Notes,
	}
}

// POST /api/deployments
func (h *Handler) CreateDeployment(w http.ResponseWriter, r *http.Request) {
	var input service.CreateDeploymentInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, apperr.New(http.StatusBadRequest, "INVALID_BODY", "malformed request body"))
		return
	}
	deployment, err := h.svc.CreateDeployment(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, deploymentToAPI(deployment))
}

// GET /api/deployments
func (h *Handler) ListDeployments(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, apperr.New(http.StatusBadRequest, "INVALID_LIMIT", "limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	deployments, err := h.svc.ListDeployments(r.Context(), r.URL.Query().Get("environment"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]deploymentResponse, 0, len(deployments))
	for _, d := range deployments {
		resp = append(resp, deploymentToAPI(d))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /api/deployments/{id}
func (h *Handler) GetDeployment(w http.ResponseWriter, r *http.Request) {
	deployment, err := h.svc.GetDeployment(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deploymentToAPI(deployment))
}

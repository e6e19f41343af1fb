// Package server exposes the dashboard's REST API.
package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/teamdash/roadmap-service/internal/apperr"
	"github.com/teamdash/roadmap-service/internal/service"
)

// Handler holds the HTTP handlers over the service layer.
type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// NewRouter wires every route of the API.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/roadmap", h.ListRoadmap).Methods(http.MethodGet)
	api.HandleFunc("/roadmap/{id:[0-9]+}", h.GetRoadmapItem).Methods(http.MethodGet)

	api.HandleFunc("/workitems", h.ListWorkItems).Methods(http.MethodGet)
	api.HandleFunc("/workitems/{id:[0-9]+}", h.GetWorkItem).Methods(http.MethodGet)
	api.HandleFunc("/workitems/{id:[0-9]+}/duedate", h.UpdateDueDate).Methods(http.MethodPatch)
	api.HandleFunc("/workitems/{id:[0-9]+}/fields", h.UpdateFields).Methods(http.MethodPatch)
	api.HandleFunc("/workitems/{id:[0-9]+}/state", h.UpdateState).Methods(http.MethodPost)
	api.HandleFunc("/workitems/{id:[0-9]+}/duedate-history", h.DueDateHistory).Methods(http.MethodGet)

	api.HandleFunc("/stats/duedates", h.DueDateStats).Methods(http.MethodGet)
	api.HandleFunc("/stats/cycletime", h.CycleTimeStats).Methods(http.MethodGet)

	api.HandleFunc("/deployments", h.CreateDeployment).Methods(http.MethodPost)
	api.HandleFunc("/deployments", h.ListDeployments).Methods(http.MethodGet)
	api.HandleFunc("/deployments/{id}", h.GetDeployment).Methods(http.MethodGet)

	return r
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pathID extracts the numeric {id} route variable.
func pathID(r *http.Request) (int, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, apperr.New(http.StatusBadRequest, "INVALID_ID", fmt.Sprintf("work item id must be a positive integer, got %q", raw))
	}
	return id, nil
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, apperr.New(http.StatusBadRequest, "INVALID_DATE", fmt.Sprintf("%s must be YYYY-MM-DD, got %q", name, raw))
	}
	return &parsed, nil
}

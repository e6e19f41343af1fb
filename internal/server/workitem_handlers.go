package server

import (
	"net/http"

	"github.com/teamdash/roadmap-service/internal/apperr"
	"github.com/teamdash/roadmap-service/internal/service"
)

// GET /api/workitems
func (h *Handler) ListWorkItems(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "from")
	if err != nil {
		writeError(w, err)
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		writeError(w, err)
		return
	}

	items, err := h.svc.ListWorkItems(r.Context(), service.ListWorkItemsQuery{
		Type:     r.URL.Query().Get("type"),
		AreaPath: r.URL.Query().Get("areaPath"),
		From:     from,
		To:       to,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// GET /api/workitems/{id}
func (h *Handler) GetWorkItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	item, err := h.svc.GetWorkItem(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// PATCH /api/workitems/{id}/duedate
func (h *Handler) UpdateDueDate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body struct {
		DueDate string `json:"dueDate"`
		Reason  string `json:"reason"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, apperr.New(http.StatusBadRequest, "INVALID_BODY", "malformed request body"))
		return
	}
	item, err := h.svc.UpdateDueDate(r.Context(), id, body.DueDate, body.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// PATCH /api/workitems/{id}/fields
func (h *Handler) UpdateFields(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var fields map[string]any
	if err := decodeJSON(r, &fields); err != nil {
		writeError(w, apperr.New(http.StatusBadRequest, "INVALID_BODY", "malformed request body"))
		return
	}
	item, err := h.svc.UpdateFields(r.Context(), id, fields)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// POST /api/workitems/{id}/state
func (h *Handler) UpdateState(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body struct {
		State string `json:"state"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, apperr.New(http.StatusBadRequest, "INVALID_BODY", "malformed request body"))
		return
	}
	item, err := h.svc.UpdateState(r.Context(), id, body.State)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// GET /api/workitems/{id}/duedate-history
func (h *Handler) DueDateHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	changes, err := h.svc.DueDateHistory(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, changes)
}

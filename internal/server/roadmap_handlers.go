package server

import "net/http"

// GET /api/roadmap
func (h *Handler) ListRoadmap(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListRoadmap(r.Context(), r.URL.Query().Get("type"), r.URL.Query().Get("areaPath"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// GET /api/roadmap/{id}
func (h *Handler) GetRoadmapItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	item, err := h.svc.GetRoadmapItem(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

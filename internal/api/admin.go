package api

import (
	"encoding/json"
	"net/http"

	"github.com/CourseCompass/Compass/internal/planner"
	"github.com/CourseCompass/Compass/internal/store"
)

type AdminHandler struct {
	store   store.Store
	planner *planner.Planner
}

func NewAdminHandler(s store.Store, p *planner.Planner) *AdminHandler {
	return &AdminHandler{store: s, planner: p}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) SetPenaltyBase(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PenaltyBase float64 `json:"penalty_base"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	// Invalid values are rejected without erroring; the previous base
	// stays in effect either way.
	applied := h.planner.SetPenaltyBase(req.PenaltyBase)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"applied":      applied,
		"penalty_base": h.planner.PenaltyBase(),
	})
}

func (h *AdminHandler) RefreshAggregates(w http.ResponseWriter, r *http.Request) {
	if err := h.planner.RefreshAggregates(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, h.planner.Aggregates())
}

func (h *AdminHandler) PatchAggregates(w http.ResponseWriter, r *http.Request) {
	var patch planner.AggregatePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	writeJSON(w, http.StatusOK, h.planner.UpdateAggregates(patch))
}

package api

import (
	"encoding/json"
	"net/http"

	"github.com/CourseCompass/Compass/internal/planner"
	"github.com/CourseCompass/Compass/internal/scoring"
)

type PreferencesHandler struct {
	planner *planner.Planner
}

func NewPreferencesHandler(p *planner.Planner) *PreferencesHandler {
	return &PreferencesHandler{planner: p}
}

type preferenceResponse struct {
	Preset  string                    `json:"preset"`
	Profile scoring.PreferenceProfile `json:"profile"`
	Presets []string                  `json:"presets"`
}

func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	name, profile := h.planner.Preference()
	writeJSON(w, http.StatusOK, preferenceResponse{
		Preset:  name,
		Profile: profile,
		Presets: scoring.PresetNames(),
	})
}

func (h *PreferencesHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Preset string `json:"preset"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	// Unknown presets fall back to balanced rather than erroring.
	name, profile := h.planner.SetPreference(req.Preset)
	writeJSON(w, http.StatusOK, preferenceResponse{
		Preset:  name,
		Profile: profile,
		Presets: scoring.PresetNames(),
	})
}

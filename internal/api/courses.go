package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/CourseCompass/Compass/internal/planner"
	"github.com/CourseCompass/Compass/internal/prereq"
	"github.com/CourseCompass/Compass/internal/store"
)

type CoursesHandler struct {
	store       store.Store
	planner     *planner.Planner
	futureDepth int
}

func NewCoursesHandler(s store.Store, p *planner.Planner, futureDepth int) *CoursesHandler {
	if futureDepth <= 0 {
		futureDepth = prereq.DefaultFutureDepth
	}
	return &CoursesHandler{store: s, planner: p, futureDepth: futureDepth}
}

func (h *CoursesHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": "database unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *CoursesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	course, err := h.store.GetCourse(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if course == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "course not found"})
		return
	}

	offerings, err := h.store.ListOfferings(r.Context(), id, 100)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	course.Offerings = offerings
	writeJSON(w, http.StatusOK, course)
}

func (h *CoursesHandler) Prereqs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	groups, err := h.store.GetPrereqGroups(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if groups == nil {
		groups = []store.PrereqGroup{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"course_id": id,
		"groups":    groups,
	})
}

func (h *CoursesHandler) PrereqSource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	src, err := h.store.GetPrereqSource(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, src)
}

func (h *CoursesHandler) Future(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	depth, ok := queryInt(r, "depth", h.futureDepth)
	if !ok || depth < 0 || depth > 6 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "depth must be between 0 and 6"})
		return
	}

	tree, err := prereq.BuildFutureTree(r.Context(), h.store, id, depth)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"course_id": id,
		"tree":      tree,
	})
}

func (h *CoursesHandler) Tree(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	prereqDepth, ok := queryInt(r, "prereq_depth", prereq.DefaultPrereqDepth)
	if !ok || prereqDepth < 1 || prereqDepth > 100 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "prereq_depth must be between 1 and 100"})
		return
	}
	futureDepth, ok := queryInt(r, "future_depth", h.futureDepth)
	if !ok || futureDepth < 0 || futureDepth > 6 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "future_depth must be between 0 and 6"})
		return
	}

	exists, err := h.store.CourseExists(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !exists {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "course not found"})
		return
	}

	course, err := h.store.GetCourse(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if course == nil {
		// Edge-only course: respond minimally rather than 404.
		course = &store.Course{ID: id}
	}

	prereqTree, err := prereq.BuildTree(r.Context(), h.store, id, prereqDepth)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	futureTree, err := prereq.BuildFutureTree(r.Context(), h.store, id, futureDepth)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	ids := prereqTree.CourseIDs()
	var walkFuture func(*prereq.FutureNode)
	seen := map[string]bool{}
	for _, cid := range ids {
		seen[cid] = true
	}
	walkFuture = func(n *prereq.FutureNode) {
		if n == nil {
			return
		}
		if !seen[n.CourseID] {
			seen[n.CourseID] = true
			ids = append(ids, n.CourseID)
		}
		for _, ch := range n.Children {
			walkFuture(ch)
		}
	}
	walkFuture(futureTree)

	metrics, err := h.store.GetMetricsMap(r.Context(), ids)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"course":         course,
		"prereq_tree":    prereqTree,
		"future_tree":    futureTree,
		"course_metrics": metrics,
		"aggregates":     h.planner.Aggregates(),
	})
}

func (h *CoursesHandler) Plan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	depth, ok := queryInt(r, "depth", 0)
	if !ok || depth < 0 || depth > 100 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "depth must be between 0 and 100"})
		return
	}

	plan, err := h.planner.Plan(r.Context(), id, depth)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if plan == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "course not found"})
		return
	}

	selectionTotal.WithLabelValues(plan.Preset).Inc()
	selectionDuration.Observe(time.Duration(plan.DurationMs * int64(time.Millisecond)).Seconds())

	writeJSON(w, http.StatusOK, plan)
}

func (h *CoursesHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, ok := queryInt(r, "limit", 20)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
		return
	}
	limit = clampLimit(limit)

	if !suggestable(q) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"items": []store.Suggestion{}})
		return
	}

	items, err := h.store.SuggestCourses(r.Context(), q, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if items == nil {
		items = []store.Suggestion{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func queryInt(r *http.Request, name string, def int) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CourseCompass/Compass/internal/config"
	"github.com/CourseCompass/Compass/internal/planner"
	"github.com/CourseCompass/Compass/internal/store"
)

func NewRouter(s store.Store, p *planner.Planner, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RequestMetrics)
	r.Use(RateLimitMiddleware(cfg.API.RateLimitPerMinute))

	courses := NewCoursesHandler(s, p, cfg.Selection.FutureDepth)
	prefs := NewPreferencesHandler(p)
	admin := NewAdminHandler(s, p)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", courses.Health)

		r.Get("/courses/suggest", courses.Suggest)
		r.Get("/courses/{id}", courses.Get)
		r.Get("/courses/{id}/prereqs", courses.Prereqs)
		r.Get("/courses/{id}/prereq-source", courses.PrereqSource)
		r.Get("/courses/{id}/future", courses.Future)
		r.Get("/courses/{id}/tree", courses.Tree)
		r.Get("/courses/{id}/plan", courses.Plan)

		r.Get("/preferences", prefs.Get)
		r.Put("/preferences", prefs.Put)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.Server.AdminToken))
			r.Get("/admin/stats", admin.Stats)
			r.Put("/admin/penalty-base", admin.SetPenaltyBase)
			r.Post("/admin/aggregates/refresh", admin.RefreshAggregates)
			r.Patch("/admin/aggregates", admin.PatchAggregates)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

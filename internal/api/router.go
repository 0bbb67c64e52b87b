package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Verdict/internal/session"
)

func NewRouter(m *session.Manager, adminToken string, rateLimit int, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(rateLimit))

	sessions := NewSessionsHandler(m)
	matrix := NewMatrixHandler(m)
	curves := NewCurvesHandler(m)
	results := NewResultsHandler(m)
	admin := NewAdminHandler(m)
	live := NewLiveHandler(m, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", sessions.Create)
		r.Get("/sessions", sessions.List)

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", sessions.Get)
			r.Delete("/", sessions.Delete)
			r.Get("/history", sessions.History)
			r.Get("/live", live.Live)

			r.Post("/choices", matrix.AddChoice)
			r.Delete("/choices/{name}", matrix.RemoveChoice)
			r.Post("/criteria", matrix.AddCriterion)
			r.Delete("/criteria/{name}", matrix.RemoveCriterion)
			r.Put("/weights/{criterion}", matrix.SetWeight)
			r.Delete("/weights/{criterion}", matrix.ClearWeight)
			r.Put("/ratings", matrix.SetRatings)
			r.Put("/ratings/{choice}/{criterion}", matrix.SetRating)
			r.Delete("/ratings/{choice}/{criterion}", matrix.ClearRating)

			r.Get("/curves/{criterion}/points", curves.Points)
			r.Post("/curves/{criterion}/points", curves.AddPoint)
			r.Put("/curves/{criterion}/points", curves.MovePoint)
			r.Delete("/curves/{criterion}/points", curves.RemovePoint)
			r.Get("/curves/{criterion}/lookup", curves.Lookup)

			r.Get("/results", results.Results)
			r.Get("/results/{choice}", results.Choice)
		})

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(adminToken))
			r.Get("/stats", admin.Stats)
			r.Post("/sessions/{id}/evict", admin.Evict)
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

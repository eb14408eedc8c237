/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/budgets/*             Budget management
  /api/planned-operations/*  Planned operation management
  /api/forecast              Monthly forecast summaries

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/forecaster: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", h.ListBudgets)
			r.Post("/", h.CreateBudget)
			r.Get("/{id}", h.GetBudget)
			r.Put("/{id}", h.UpdateBudget)
			r.Delete("/{id}", h.DeleteBudget)
			r.Post("/{id}/split", h.SplitBudget)
		})

		r.Route("/planned-operations", func(r chi.Router) {
			r.Get("/", h.ListPlannedOperations)
			r.Post("/", h.CreatePlannedOperation)
			r.Get("/{id}", h.GetPlannedOperation)
			r.Put("/{id}", h.UpdatePlannedOperation)
			r.Delete("/{id}", h.DeletePlannedOperation)
			r.Post("/{id}/archive", h.ArchivePlannedOperation)
			r.Post("/{id}/split", h.SplitPlannedOperation)
		})

		r.Get("/forecast", h.GetForecast)
	})

	return r
}

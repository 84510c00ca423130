/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for dashboards

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
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
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Site routes
		r.Route("/sites/{siteID}", func(r chi.Router) {
			r.Post("/rules", h.SetRules)
			r.Get("/rules", h.GetRules)
			r.Post("/filter", h.Filter)
			r.Post("/orders", h.EvaluateOrder)
			r.Post("/orders/confirm", h.ConfirmOrder)
			r.Get("/orders", h.ListOrders)
		})

		// Catalog routes
		r.Get("/vendors", h.ListVendors)

		// Audit routes
		r.Route("/audit", func(r chi.Router) {
			r.Get("/", h.GetAuditTrail)
			r.Delete("/", h.ClearAuditTrail)
		})
	})

	return r
}

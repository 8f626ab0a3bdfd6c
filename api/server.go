/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client address for the rate limiter
  3. Logger:     Request logging
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests for the dashboard frontend
  6. RateLimit:  Per-IP limit on /api (ulule/limiter, in-memory store)

ROUTE GROUPS:
  /api/employees/*      Employees, dashboard, checklist, notifications
  /api/deliveries       Delivery registration
  /api/occurrences      Occurrence registration
  /api/commissions/*    Preview, posting, history, statistics
  /api/reports/*        Monthly report (JSON, xlsx)
  /api/settings         Versioned commission settings
  /api/scenarios/*      Demo scenarios

SECURITY NOTE:
  No authentication middleware. The employee in the URL is trusted.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RouterOptions tune the middleware stack.
type RouterOptions struct {
	// RateLimit uses limiter's formatted rate ("100-M"). Empty disables it.
	RateLimit      string
	AllowedOrigins []string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) (*chi.Mux, error) {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	rateLimit, err := rateLimitMiddleware(opts.RateLimit)
	if err != nil {
		return nil, err
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		if rateLimit != nil {
			r.Use(rateLimit)
		}

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetEmployee)
				r.Get("/dashboard", h.GetDashboard)
				r.Get("/deliveries", h.ListDeliveries)
				r.Get("/occurrences", h.ListOccurrences)
				r.Get("/notifications", h.ListNotifications)
				r.Post("/notifications/{nid}/read", h.MarkNotificationRead)

				r.Route("/checklist", func(r chi.Router) {
					r.Get("/template", h.GetChecklistTemplate)
					r.Get("/current", h.GetCurrentChecklist)
					r.Put("/answers", h.SaveChecklistAnswers)
					r.Post("/submit", h.SubmitChecklist)
				})
			})
		})

		r.Post("/deliveries", h.CreateDelivery)
		r.Post("/occurrences", h.CreateOccurrence)

		r.Route("/commissions", func(r chi.Router) {
			r.Get("/", h.ListCommissions)
			r.Get("/preview", h.PreviewCommission)
			r.Post("/post", h.PostCommission)
			r.Get("/statistics", h.GetStatistics)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/monthly", h.GetMonthlyReport)
			r.Get("/monthly.xlsx", h.ExportMonthlyReport)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.GetSettings)
			r.Put("/", h.UpdateSettings)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r, nil
}

func rateLimitMiddleware(formatted string) (func(http.Handler) http.Handler, error) {
	if formatted == "" {
		return nil, nil
	}
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", formatted, err)
	}
	instance := limiter.New(memory.NewStore(), rate)
	return stdlib.NewMiddleware(instance).Handler, nil
}

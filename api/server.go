/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. zap logger: Structured request logging
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/state              Full session snapshot
  /api/income/*           Income record edits
  /api/deduction/*        Deduction record edits
  /api/grade              Grade ladder selection
  /api/bonuses/*          Bonus rule CRUD
  /api/projection/*       Trust projection parameters and output
  /api/preferences        UI flags
  /api/reset              Confirmed reset to defaults
  /api/reference/*        Static lookup tables
  /api/export/*           PDF summary export

SECURITY NOTE:
  No authentication middleware. This is a single-user estimator; all
  endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.GetState)
		r.Get("/results", h.GetResults)

		r.Put("/income/{field}", h.SetIncomeField)
		r.Put("/deduction/{field}", h.SetDeductionField)
		r.Put("/grade", h.SelectGrade)

		r.Route("/bonuses", func(r chi.Router) {
			r.Post("/", h.AddBonus)
			r.Put("/{id}", h.UpdateBonus)
			r.Delete("/{id}", h.RemoveBonus)
		})

		r.Route("/projection", func(r chi.Router) {
			r.Get("/", h.GetProjection)
			r.Put("/params", h.SetTrustParams)
			r.Put("/overrides/{year}", h.SetStructuralOverride)
			r.Delete("/overrides/{year}", h.ClearStructuralOverride)
		})

		r.Put("/preferences", h.SetPreferences)
		r.Post("/reset", h.Reset)

		// Static lookup tables
		r.Route("/reference", func(r chi.Router) {
			r.Get("/grades", h.ListGrades)
			r.Get("/health-grades", h.ListHealthGrades)
			r.Get("/dividends", h.ListDividends)
			r.Get("/payout-calendar", h.GetPayoutCalendar)
		})

		r.Get("/export/summary.pdf", h.ExportSummaryPDF)
	})

	return r
}

// requestLogger emits one structured log line per request.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

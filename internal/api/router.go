package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/api/handlers"
	custommiddleware "github.com/qrvalidation/Valuation-Recon-Backend/internal/api/middleware"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/config"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	sourceService *service.SourceService,
	reconService *service.ReconciliationService,
	annotationService *service.AnnotationService,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		// Source data namespace
		r.Route("/source", func(r chi.Router) {
			sourceHandler := handlers.NewSourceHandler(sourceService)
			r.Get("/status", sourceHandler.Status)
			r.Get("/complete-dates", sourceHandler.CompleteDates)
			r.With(custommiddleware.APIKeyMiddleware).
				Post("/{table}/import", sourceHandler.Import)
		})

		// Reconciliation namespace
		r.Route("/reconciliation", func(r chi.Router) {
			reconHandler := handlers.NewReconHandler(reconService)
			annotationHandler := handlers.NewAnnotationHandler(annotationService)

			r.With(custommiddleware.APIKeyMiddleware).
				Post("/run", reconHandler.Run)
			r.With(custommiddleware.APIKeyMiddleware).
				Post("/run-range", reconHandler.RunRange)

			r.Route("/{date}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateReportingDateMiddleware)
				r.Get("/", reconHandler.Result)
				r.Get("/highlights/{set}", reconHandler.Highlights)
				r.Get("/large-deals", reconHandler.LargeDeals)
				r.Get("/missing-aat", reconHandler.MissingAAT)
				r.Get("/diagnostics", reconHandler.Diagnostics)

				r.Get("/annotations", annotationHandler.List)
				r.Get("/annotations/{key}", annotationHandler.Get)
				r.Put("/annotations/{key}", annotationHandler.Set)
			})
		})
	})

	return r
}

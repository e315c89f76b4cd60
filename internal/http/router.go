package http

import (
	"net/http"

	"access-insights/internal/ingestors"
	"access-insights/internal/shared/loggers"
	"access-insights/internal/shared/metrics"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(intakeService ingestors.IntakeService, httpLogger loggers.Logger) http.Handler {
	router := chi.NewRouter()
	setupMiddleware(router, httpLogger)

	// Initialize handlers
	ingestBatchHandler := NewIngestBatchHandler(intakeService)

	// Routes
	router.Post("/batches", errorHandlingAdapter(ingestBatchHandler))
	router.Get("/metrics", metrics.PromHTTP.Handler().ServeHTTP)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return router
}

package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter builds the ingestion API router.
// Every route under /api/v1 except /health requires the shared API key.
func NewRouter(store Store, apiKey string) http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	protected := api.NewRoute().Subrouter()
	protected.Use(requireAPIKey(apiKey))
	protected.Handle("/results", &resultsHandler{store: store}).Methods(http.MethodPost)

	return r
}

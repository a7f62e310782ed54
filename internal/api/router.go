/**
 * @description
 * This file sets up the HTTP router for the sync-service. It defines the API
 * endpoints, associates them with their handlers, and applies middleware for
 * logging, panic recovery, timeouts, and authentication.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SyncRoutes creates and returns a new router for the sync service.
func SyncRoutes(h *SyncHandlers, jwksURL string) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// Group routes that require authentication.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwksURL))

		r.Post("/sync", h.SyncHandler)
		r.Post("/link/plaid/exchange", h.PlaidExchangeHandler)
		r.Post("/link/teller/connect", h.TellerConnectHandler)
		r.Post("/categorize/bulk", h.BulkCategorizeHandler)
		r.Get("/categories", h.ListCategoriesHandler)
	})

	return r
}

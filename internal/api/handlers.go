/**
 * @description
 * This file contains the HTTP handlers for the sync-service's API endpoints.
 * Handlers parse incoming requests, resolve the authenticated subject into an
 * internal user id, call the application service, and write the HTTP response.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: Service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/monetra/sync-service/internal/app"
	"github.com/monetra/sync-service/internal/domain"
	"github.com/monetra/sync-service/internal/store"
)

// SyncHandlers holds the application service and limits that handlers use.
type SyncHandlers struct {
	service         *app.Service
	rateLimiter     *app.RedisSyncRateLimiter
	syncRatePerHour int
}

// NewSyncHandlers creates the handler set. The rate limiter may be nil, which
// disables manual-sync throttling.
func NewSyncHandlers(service *app.Service, rateLimiter *app.RedisSyncRateLimiter, syncRatePerHour int) *SyncHandlers {
	return &SyncHandlers{
		service:         service,
		rateLimiter:     rateLimiter,
		syncRatePerHour: syncRatePerHour,
	}
}

type plaidExchangeRequest struct {
	PublicToken string `json:"public_token"`
}

type tellerConnectRequest struct {
	AccessToken  string `json:"access_token"`
	EnrollmentID string `json:"enrollment_id"`
}

type bulkCategorizeRequest struct {
	TransactionIDs []uuid.UUID `json:"transaction_ids"`
}

// resolveUser pulls the authenticated subject off the context and resolves it
// to the internal user UUID. Writes the error response itself on failure.
func (h *SyncHandlers) resolveUser(w http.ResponseWriter, r *http.Request, endpoint string) (uuid.UUID, bool) {
	subject, ok := GetAuthSubject(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return uuid.Nil, false
	}
	userID, err := h.service.ResolveInternalUserID(r.Context(), subject)
	if err != nil {
		log.Printf("level=warn component=api endpoint=%s outcome=reject reason=user_resolution_failed subject=%s err=%v", endpoint, subject, err)
		h.writeError(w, http.StatusBadRequest, "User not found")
		return uuid.Nil, false
	}
	return userID, true
}

// SyncHandler triggers a full sync of the user's linked provider items.
func (h *SyncHandlers) SyncHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUser(w, r, "sync")
	if !ok {
		return
	}

	if h.rateLimiter != nil && h.syncRatePerHour > 0 {
		count, retryAfter, err := h.rateLimiter.ConsumeRateLimit(r.Context(), "manual_sync", userID.String(), h.syncRatePerHour, time.Hour)
		if err != nil {
			log.Printf("level=warn component=api endpoint=sync msg=\"rate limit check failed; allowing request\" user_id=%s err=%v", userID, err)
		} else if count > h.syncRatePerHour {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			h.writeError(w, http.StatusTooManyRequests, "Too many sync requests. Please wait and try again.")
			return
		}
	}

	result, err := h.service.SyncAllForUser(r.Context(), userID)
	if err != nil {
		log.Printf("level=warn component=api endpoint=sync outcome=failed user_id=%s err=%v", userID, err)
		h.writeError(w, http.StatusInternalServerError, "Sync failed")
		return
	}

	log.Printf("level=info component=api endpoint=sync outcome=completed user_id=%s accounts=%d transactions=%d", userID, result.AccountsSynced, result.TransactionsSynced)
	h.writeJSON(w, http.StatusOK, result)
}

// PlaidExchangeHandler completes a Plaid link and runs the initial sync.
func (h *SyncHandlers) PlaidExchangeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUser(w, r, "plaid_exchange")
	if !ok {
		return
	}

	var req plaidExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if strings.TrimSpace(req.PublicToken) == "" {
		h.writeError(w, http.StatusBadRequest, "public_token is required")
		return
	}

	result, err := h.service.ExchangePlaidToken(r.Context(), userID, req.PublicToken)
	if err != nil {
		log.Printf("level=warn component=api endpoint=plaid_exchange outcome=failed user_id=%s err=%v", userID, err)
		h.writeError(w, http.StatusBadGateway, "Failed to complete Plaid link")
		return
	}

	log.Printf("level=info component=api endpoint=plaid_exchange outcome=completed user_id=%s accounts=%d transactions=%d", userID, len(result.Accounts), result.TransactionsSynced)
	h.writeJSON(w, http.StatusOK, result)
}

// TellerConnectHandler persists a Teller enrollment and runs the initial sync.
func (h *SyncHandlers) TellerConnectHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUser(w, r, "teller_connect")
	if !ok {
		return
	}

	var req tellerConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if strings.TrimSpace(req.AccessToken) == "" || strings.TrimSpace(req.EnrollmentID) == "" {
		h.writeError(w, http.StatusBadRequest, "access_token and enrollment_id are required")
		return
	}

	result, err := h.service.ConnectTeller(r.Context(), userID, req.AccessToken, req.EnrollmentID)
	if err != nil {
		log.Printf("level=warn component=api endpoint=teller_connect outcome=failed user_id=%s err=%v", userID, err)
		h.writeError(w, http.StatusBadGateway, "Failed to complete Teller link")
		return
	}

	log.Printf("level=info component=api endpoint=teller_connect outcome=completed user_id=%s accounts=%d transactions=%d", userID, len(result.Accounts), result.TransactionsSynced)
	h.writeJSON(w, http.StatusOK, result)
}

// BulkCategorizeHandler categorizes the given transactions for the user.
func (h *SyncHandlers) BulkCategorizeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUser(w, r, "bulk_categorize")
	if !ok {
		return
	}

	var req bulkCategorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if len(req.TransactionIDs) == 0 {
		h.writeError(w, http.StatusBadRequest, "transaction_ids is required")
		return
	}

	result, err := h.service.BulkCategorize(r.Context(), userID, req.TransactionIDs)
	if err != nil {
		log.Printf("level=warn component=api endpoint=bulk_categorize outcome=failed user_id=%s err=%v", userID, err)
		h.writeError(w, http.StatusInternalServerError, "Categorization failed")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// ListCategoriesHandler returns the user's category set, seeding it on first use.
func (h *SyncHandlers) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUser(w, r, "list_categories")
	if !ok {
		return
	}

	categories, err := h.service.ListCategories(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			h.writeError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("level=warn component=api endpoint=list_categories outcome=failed user_id=%s err=%v", userID, err)
		h.writeError(w, http.StatusInternalServerError, "Failed to list categories")
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}

	h.writeJSON(w, http.StatusOK, categories)
}

// writeJSON writes a JSON response with the given status.
func (h *SyncHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *SyncHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

/**
 * @description
 * This file contains the HTTP handlers for the wallet-service's wallet and
 * ledger-entry endpoints, plus the shared response helpers. Handlers are
 * responsible for parsing incoming requests, calling the appropriate methods
 * on the application service, and writing the HTTP response. They act as the
 * bridge between the web layer and the business logic layer.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cashtide/wallet-service/internal/app"
	"github.com/cashtide/wallet-service/internal/domain"
	"github.com/cashtide/wallet-service/internal/store"
	"github.com/cashtide/wallet-service/pkg/extractclient"
)

// WalletHandlers holds the application service that handlers will use.
type WalletHandlers struct {
	service *app.Service
}

// NewWalletHandlers creates a new instance of WalletHandlers.
func NewWalletHandlers(service *app.Service) *WalletHandlers {
	return &WalletHandlers{service: service}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *WalletHandlers) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			log.Printf("level=error component=api msg=\"failed to encode response\" err=%v", err)
		}
	}
}

func (h *WalletHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message})
}

// currentUserID pulls the authenticated user from the request context.
func (h *WalletHandlers) currentUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return uuid.Nil, false
	}
	return userID, true
}

// pathID parses a UUID path parameter, writing a 400 on failure.
func (h *WalletHandlers) pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// handleServiceError maps service and store errors onto HTTP statuses. A
// wallet the caller cannot see is reported exactly like a wallet that does
// not exist, so probing for IDs reveals nothing.
func (h *WalletHandlers) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrValidation),
		errors.Is(err, app.ErrMissingContent),
		errors.Is(err, app.ErrMissingURL),
		errors.Is(err, app.ErrSelfShare),
		errors.Is(err, app.ErrInvalidPayload):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrWalletNotFound), errors.Is(err, app.ErrAccessDenied):
		h.writeError(w, http.StatusNotFound, "Wallet not found or access denied")
	case errors.Is(err, store.ErrUserNotFound):
		h.writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, store.ErrShareNotFound), errors.Is(err, app.ErrNotInvitee):
		h.writeError(w, http.StatusNotFound, "Sharing invitation not found")
	case errors.Is(err, store.ErrTransactionNotFound):
		h.writeError(w, http.StatusNotFound, "Transaction not found")
	case errors.Is(err, store.ErrSubscriptionNotFound):
		h.writeError(w, http.StatusNotFound, "Subscription not found")
	case errors.Is(err, store.ErrFreeTrialNotFound):
		h.writeError(w, http.StatusNotFound, "Free trial not found")
	case errors.Is(err, store.ErrIntentionNotFound):
		h.writeError(w, http.StatusNotFound, "Extraction not found")
	case errors.Is(err, app.ErrReadOnlyAccess), errors.Is(err, app.ErrNotWalletOwner):
		h.writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrShareExists),
		errors.Is(err, app.ErrShareResolved),
		errors.Is(err, app.ErrIntentionProcessed),
		errors.Is(err, app.ErrConfirmInProgress):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, extractclient.ErrMalformedResponse):
		h.writeError(w, http.StatusBadGateway, "Extraction service returned an unusable response")
	case errors.Is(err, app.ErrExtractorUnavailable):
		h.writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		log.Printf("level=error component=api msg=\"unhandled service error\" err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// --- Wallet handlers ---

// ListWalletsHandler returns the caller's owned and shared wallets.
func (h *WalletHandlers) ListWalletsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	wallets, err := h.service.ListWallets(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, wallets)
}

// CreateWalletHandler creates a wallet owned by the caller.
func (h *WalletHandlers) CreateWalletHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	var req domain.CreateWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	wallet, err := h.service.CreateWallet(r.Context(), userID, req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, wallet)
}

// GetWalletHandler returns a single wallet.
func (h *WalletHandlers) GetWalletHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	walletID, ok := h.pathID(w, r, "walletID")
	if !ok {
		return
	}
	wallet, err := h.service.GetWallet(r.Context(), userID, walletID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, wallet)
}

// UpdateWalletHandler patches wallet metadata.
func (h *WalletHandlers) UpdateWalletHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	walletID, ok := h.pathID(w, r, "walletID")
	if !ok {
		return
	}
	var patch domain.UpdateWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	wallet, err := h.service.UpdateWallet(r.Context(), userID, walletID, patch)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, wallet)
}

// DeleteWalletHandler removes a wallet and everything in it.
func (h *WalletHandlers) DeleteWalletHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	walletID, ok := h.pathID(w, r, "walletID")
	if !ok {
		return
	}
	if err := h.service.DeleteWallet(r.Context(), userID, walletID); err != nil {
		h.handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// WalletSummaryHandler returns the converted totals for a wallet.
func (h *WalletHandlers) WalletSummaryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	walletID, ok := h.pathID(w, r, "walletID")
	if !ok {
		return
	}
	summary, err := h.service.WalletSummary(r.Context(), userID, walletID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// --- Transaction handlers ---

// ListTransactionsHandler returns a wallet's transactions, newest first.
func (h *WalletHandlers) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	walletID, ok := h.pathID(w, r, "walletID")
	if !ok {
		return
	}
	transactions, err := h.service.ListTransactions(r.Context(), userID, walletID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, transactions)
}

// CreateTransactionHandler records a manual transaction.
func (h *WalletHandlers) CreateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	walletID, ok := h.pathID(w, r, "walletID")
	if !ok {
		return
	}
	var req domain.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	tx, err := h.service.CreateTransaction(r.Context(), userID, walletID, req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, tx)
}

// UpdateTransactionHandler patches a transaction.
func (h *WalletHandlers) UpdateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	transactionID, ok := h.pathID(w, r, "transactionID")
	if !ok {
		return
	}
	var patch domain.UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	tx, err := h.service.UpdateTransaction(r.Context(), userID, transactionID, patch)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tx)
}

// DeleteTransactionHandler removes a transaction.
func (h *WalletHandlers) DeleteTransactionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	transactionID, ok := h.pathID(w, r, "transactionID")
	if !ok {
		return
	}
	if err := h.service.DeleteTransaction(r.Context(), userID, transactionID); err != nil {
		h.handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Subscription handlers ---

// ListSubscriptionsHandler returns a wallet's subscriptions.
func (h *WalletHandlers) ListSubscriptionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	walletID, ok := h.pathID(w, r, "walletID")
	if !ok {
		return
	}
	subs, err := h.service.ListSubscriptions(r.Context(), userID, walletID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, subs)
}

// CreateSubscriptionHandler records a recurring commitment.
func (h *WalletHandlers) CreateSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	walletID, ok := h.pathID(w, r, "walletID")
	if !ok {
		return
	}
	var req domain.CreateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	sub, err := h.service.CreateSubscription(r.Context(), userID, walletID, req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, sub)
}

// UpdateSubscriptionHandler patches a subscription.
func (h *WalletHandlers) UpdateSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	subscriptionID, ok := h.pathID(w, r, "subscriptionID")
	if !ok {
		return
	}
	var patch domain.UpdateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	sub, err := h.service.UpdateSubscription(r.Context(), userID, subscriptionID, patch)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sub)
}

// DeleteSubscriptionHandler removes a subscription.
func (h *WalletHandlers) DeleteSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	subscriptionID, ok := h.pathID(w, r, "subscriptionID")
	if !ok {
		return
	}
	if err := h.service.DeleteSubscription(r.Context(), userID, subscriptionID); err != nil {
		h.handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Free trial handlers ---

// ListFreeTrialsHandler returns a wallet's free trials.
func (h *WalletHandlers) ListFreeTrialsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	walletID, ok := h.pathID(w, r, "walletID")
	if !ok {
		return
	}
	trials, err := h.service.ListFreeTrials(r.Context(), userID, walletID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, trials)
}

// CreateFreeTrialHandler records a trial period.
func (h *WalletHandlers) CreateFreeTrialHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	walletID, ok := h.pathID(w, r, "walletID")
	if !ok {
		return
	}
	var req domain.CreateFreeTrialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	trial, err := h.service.CreateFreeTrial(r.Context(), userID, walletID, req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, trial)
}

// UpdateFreeTrialHandler patches a free trial.
func (h *WalletHandlers) UpdateFreeTrialHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	trialID, ok := h.pathID(w, r, "trialID")
	if !ok {
		return
	}
	var patch domain.UpdateFreeTrialRequest
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	trial, err := h.service.UpdateFreeTrial(r.Context(), userID, trialID, patch)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, trial)
}

// DeleteFreeTrialHandler removes a free trial.
func (h *WalletHandlers) DeleteFreeTrialHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	trialID, ok := h.pathID(w, r, "trialID")
	if !ok {
		return
	}
	if err := h.service.DeleteFreeTrial(r.Context(), userID, trialID); err != nil {
		h.handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

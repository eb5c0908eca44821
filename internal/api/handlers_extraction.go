/**
 * @description
 * HTTP handlers for the extraction pipeline: capturing page content from the
 * browser extension, polling an intention's status, and confirming its
 * candidate entries into the ledger.
 */

package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/cashtide/wallet-service/internal/domain"
)

// CaptureExtractionHandler runs extraction over submitted page content and
// stores the result as a pending intention.
func (h *WalletHandlers) CaptureExtractionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	var req domain.CaptureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.CaptureExtraction(r.Context(), userID, req)
	if err != nil {
		log.Printf("level=warn component=api endpoint=capture outcome=failed user_id=%s err=%v", userID, err)
		h.handleServiceError(w, err)
		return
	}

	log.Printf("level=info component=api endpoint=capture outcome=accepted user_id=%s extraction_id=%s entries=%d",
		userID, result.IntentionID, len(result.Payload.Entries))
	h.writeJSON(w, http.StatusCreated, result)
}

// ExtractionStatusHandler returns the caller's intention with its payload.
func (h *WalletHandlers) ExtractionStatusHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	extractionID, ok := h.pathID(w, r, "extractionID")
	if !ok {
		return
	}
	intention, err := h.service.GetExtractionStatus(r.Context(), userID, extractionID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, intention)
}

// ConfirmExtractionHandler commits a pending intention's entries. The body is
// optional: a `confirmed_data` payload, when present, replaces the captured
// entries so the reviewer's edits win over the machine's candidates.
func (h *WalletHandlers) ConfirmExtractionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	extractionID, ok := h.pathID(w, r, "extractionID")
	if !ok {
		return
	}
	var req domain.ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.ConfirmExtraction(r.Context(), userID, extractionID, req.ConfirmedData)
	if err != nil {
		log.Printf("level=warn component=api endpoint=confirm outcome=failed user_id=%s extraction_id=%s err=%v", userID, extractionID, err)
		h.handleServiceError(w, err)
		return
	}

	log.Printf("level=info component=api endpoint=confirm outcome=completed user_id=%s extraction_id=%s committed=%d skipped=%d",
		userID, extractionID, len(result.Committed), len(result.Skipped))
	h.writeJSON(w, http.StatusOK, result)
}

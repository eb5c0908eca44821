/**
 * @description
 * HTTP handlers for the sharing grant lifecycle: inviting a user to a
 * wallet, listing and responding to invitations, changing a grant's tier,
 * and revoking a grant.
 */

package api

import (
	"encoding/json"
	"net/http"

	"github.com/cashtide/wallet-service/internal/domain"
)

type respondToInvitationRequest struct {
	Accept bool `json:"accept"`
}

type updateShareLevelRequest struct {
	Level domain.PermissionLevel `json:"permission_level"`
}

// ShareWalletHandler invites a user, identified by email, to a wallet.
func (h *WalletHandlers) ShareWalletHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	walletID, ok := h.pathID(w, r, "walletID")
	if !ok {
		return
	}
	var req domain.ShareWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	share, err := h.service.ShareWallet(r.Context(), userID, walletID, req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, share)
}

// ListPendingInvitationsHandler returns the caller's unresolved invitations.
func (h *WalletHandlers) ListPendingInvitationsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	invitations, err := h.service.ListPendingInvitations(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, invitations)
}

// RespondToInvitationHandler accepts or declines a pending invitation.
func (h *WalletHandlers) RespondToInvitationHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	shareID, ok := h.pathID(w, r, "shareID")
	if !ok {
		return
	}
	var req respondToInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	share, err := h.service.RespondToInvitation(r.Context(), userID, shareID, req.Accept)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, share)
}

// UpdateShareLevelHandler changes an existing grant's tier.
func (h *WalletHandlers) UpdateShareLevelHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	shareID, ok := h.pathID(w, r, "shareID")
	if !ok {
		return
	}
	var req updateShareLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	share, err := h.service.UpdateShareLevel(r.Context(), userID, shareID, req.Level)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, share)
}

// RevokeShareHandler removes a grant, whether pending or accepted.
func (h *WalletHandlers) RevokeShareHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	shareID, ok := h.pathID(w, r, "shareID")
	if !ok {
		return
	}
	if err := h.service.RevokeShare(r.Context(), userID, shareID); err != nil {
		h.handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

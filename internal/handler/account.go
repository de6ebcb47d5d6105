package handler

import (
	"net/http"

	"github.com/vaultpass/zkvault/internal/model"
	"github.com/vaultpass/zkvault/internal/service"
)

// AccountHandler serves the authenticated account's own resources.
type AccountHandler struct {
	auth  *service.AuthService
	vault *service.VaultService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(auth *service.AuthService, vault *service.VaultService) *AccountHandler {
	return &AccountHandler{auth: auth, vault: vault}
}

// HandleGetAccount handles GET /api/v1/account requests.
func (h *AccountHandler) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	resp, err := h.auth.GetAccount(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleChangePassword handles PATCH /api/v1/account/password requests.
// The body carries the whole vault re-encrypted under the new key.
func (h *AccountHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	var req model.RotateCredentialRequest
	if !decodeJSON(w, r, maxVaultBody, &req) {
		return
	}

	if err := h.vault.RotateCredential(r.Context(), id, req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "password changed"})
}

// HandleDeleteAccount handles DELETE /api/v1/account requests.
func (h *AccountHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	var req model.DeleteAccountRequest
	if !decodeJSON(w, r, maxAuthBody, &req) {
		return
	}

	if err := h.auth.DeleteAccount(r.Context(), id, req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "account deleted"})
}

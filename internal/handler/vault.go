package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vaultpass/zkvault/internal/model"
	"github.com/vaultpass/zkvault/internal/service"
)

// VaultHandler handles HTTP requests for vault entry operations.
type VaultHandler struct {
	service *service.VaultService
}

// NewVaultHandler creates a new VaultHandler.
func NewVaultHandler(svc *service.VaultService) *VaultHandler {
	return &VaultHandler{service: svc}
}

// HandleListEntries handles GET /api/v1/vault requests.
func (h *VaultHandler) HandleListEntries(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	entries, err := h.service.ListEntries(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// HandleCreateEntry handles POST /api/v1/vault requests.
func (h *VaultHandler) HandleCreateEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	var req model.EntryPayload
	if !decodeJSON(w, r, maxVaultBody, &req) {
		return
	}

	resp, err := h.service.CreateEntry(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleGetEntry handles GET /api/v1/vault/{id} requests.
func (h *VaultHandler) HandleGetEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}
	entryID, ok := entryIDParam(w, r)
	if !ok {
		return
	}

	resp, err := h.service.GetEntry(r.Context(), id, entryID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleUpdateEntry handles PUT /api/v1/vault/{id} requests.
func (h *VaultHandler) HandleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}
	entryID, ok := entryIDParam(w, r)
	if !ok {
		return
	}

	var req model.EntryPayload
	if !decodeJSON(w, r, maxVaultBody, &req) {
		return
	}

	resp, err := h.service.UpdateEntry(r.Context(), id, entryID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleDeleteEntry handles DELETE /api/v1/vault/{id} requests.
func (h *VaultHandler) HandleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}
	entryID, ok := entryIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteEntry(r.Context(), id, entryID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// entryIDParam reads the {id} URL parameter, which must be a UUID.
func entryIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid entry id"))
		return "", false
	}
	return id.String(), true
}

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vaultpass/zkvault/internal/middleware"
	"github.com/vaultpass/zkvault/internal/service"
)

const (
	maxAuthBody  = 1 << 20  // 1MB
	maxVaultBody = 10 << 20 // 10MB
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorResponse(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// decodeJSON reads a size-limited JSON body into v. On failure it has already
// written the response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return false
	}
	return true
}

// accountID returns the authenticated account, or writes 401.
func accountID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
	}
	return id, ok
}

// writeServiceError maps service sentinels to status codes. Anything
// unrecognised is logged and reported as a bare 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUsernameRequired),
		errors.Is(err, service.ErrPasswordRequired),
		errors.Is(err, service.ErrEntryIDNotAllowed):
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidCredential), errors.Is(err, service.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrUsernameTaken), errors.Is(err, service.ErrIncompleteReencryption):
		writeJSON(w, http.StatusConflict, errorResponse(err.Error()))
	default:
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimw.GetReqID(r.Context()),
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
	}
}

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vaultpass/zkvault/internal/service"
)

type contextKey string

const accountIDKey contextKey = "accountID"

// TokenValidator resolves a bearer token to the account it speaks for.
// A rejected token is reported as service.ErrInvalidToken; any other error
// is an infrastructure failure.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (string, error)
}

// BearerAuth returns middleware that requires a valid Bearer token in the Authorization header.
func BearerAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			scheme, token, found := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
				writeJSONError(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			accountID, err := validator.ValidateToken(r.Context(), token)
			if errors.Is(err, service.ErrInvalidToken) {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			if err != nil {
				slog.Error("token validation failed", "path", r.URL.Path, "error", err)
				writeJSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAccountID(r.Context(), accountID)))
		})
	}
}

// AccountIDFromContext extracts the authenticated account ID from the request context.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(accountIDKey).(string)
	return id, ok && id != ""
}

// WithAccountID returns a copy of ctx carrying accountID, as BearerAuth does.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountIDKey, accountID)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

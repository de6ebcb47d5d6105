package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vaultpass/zkvault/internal/middleware"
	"github.com/vaultpass/zkvault/internal/service"
)

// RateLimit configures the per-IP limit on the unauthenticated auth routes.
type RateLimit struct {
	RPS   float64
	Burst int
}

// NewRouter wires every route of the API. ctx bounds the rate limiter's
// background sweep.
func NewRouter(ctx context.Context, auth *service.AuthService, vault *service.VaultService, limit RateLimit) http.Handler {
	authHandler := NewAuthHandler(auth)
	accountHandler := NewAccountHandler(auth, vault)
	vaultHandler := NewVaultHandler(vault)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(ctx, limit.RPS, limit.Burst))
			r.Post("/auth/register", authHandler.HandleRegister)
			r.Post("/auth/login", authHandler.HandleLogin)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(auth))

			r.Get("/account", accountHandler.HandleGetAccount)
			r.Patch("/account/password", accountHandler.HandleChangePassword)
			r.Delete("/account", accountHandler.HandleDeleteAccount)

			r.Get("/vault", vaultHandler.HandleListEntries)
			r.Post("/vault", vaultHandler.HandleCreateEntry)
			r.Get("/vault/{id}", vaultHandler.HandleGetEntry)
			r.Put("/vault/{id}", vaultHandler.HandleUpdateEntry)
			r.Delete("/vault/{id}", vaultHandler.HandleDeleteEntry)
		})
	})

	return r
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vaultpass/zkvault/internal/config"
	"github.com/vaultpass/zkvault/internal/crypto"
	"github.com/vaultpass/zkvault/internal/handler"
	"github.com/vaultpass/zkvault/internal/repository"
	"github.com/vaultpass/zkvault/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("store initialization failed", "store", cfg.Store, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	hasher, err := crypto.NewCredentialHasher(cfg.HashAlgorithm, cfg.BcryptCost)
	if err != nil {
		slog.Error("invalid credential hash settings", "error", err)
		os.Exit(1)
	}
	signer := crypto.NewTokenSigner(cfg.JWTSecret, cfg.JWTExpiry)

	authService := service.NewAuthService(store, hasher, signer)
	vaultService := service.NewVaultService(store, hasher)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: handler.NewRouter(ctx, authService, vaultService, handler.RateLimit{
			RPS:   cfg.RateLimitRPS,
			Burst: cfg.RateLimitBurst,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.Store, "hash", hasher.Algorithm)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

// openStore builds the configured Store and returns a func that releases it.
func openStore(ctx context.Context, cfg config.Config) (repository.Store, func(), error) {
	if cfg.Store == config.StoreMemory {
		slog.Warn("using in-memory store, data is lost on exit")
		return repository.NewMemoryStore(), func() {}, nil
	}

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}

	if cfg.MigrateOnStart {
		if err := repository.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
	}

	return repository.NewMySQLStore(db), func() { db.Close() }, nil
}

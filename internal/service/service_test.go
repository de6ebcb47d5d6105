package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vaultpass/zkvault/internal/crypto"
	"github.com/vaultpass/zkvault/internal/model"
	"github.com/vaultpass/zkvault/internal/repository"
)

// fastHasher keeps argon2id but with parameters cheap enough for tests.
func fastHasher(t *testing.T) *crypto.CredentialHasher {
	t.Helper()
	h, err := crypto.NewCredentialHasher(crypto.AlgorithmArgon2id, 0)
	require.NoError(t, err)
	h.Argon = crypto.HashParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	return h
}

func newTestServices(t *testing.T, store repository.Store) (*AuthService, *VaultService) {
	t.Helper()
	hasher := fastHasher(t)
	signer := crypto.NewTokenSigner("test-secret", time.Hour)
	return NewAuthService(store, hasher, signer), NewVaultService(store, hasher)
}

func field(s string) *crypto.EncryptedField {
	f := crypto.EncryptedField(s)
	return &f
}

// registerAndLogin returns the new account id and a fresh token.
func registerAndLogin(t *testing.T, auth *AuthService, username, prehash string) (string, string) {
	t.Helper()
	ctx := context.Background()
	acc, err := auth.Register(ctx, model.CredentialRequest{Username: username, PrehashedPassword: prehash})
	require.NoError(t, err)
	tok, err := auth.Login(ctx, model.CredentialRequest{Username: username, PrehashedPassword: prehash})
	require.NoError(t, err)
	return acc.ID, tok.Token
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultpass/zkvault/internal/model"
	"github.com/vaultpass/zkvault/internal/repository"
)

func TestRegister_Validation(t *testing.T) {
	auth, _ := newTestServices(t, repository.NewMemoryStore())

	tests := []struct {
		name string
		req  model.CredentialRequest
		want error
	}{
		{"empty username", model.CredentialRequest{Username: "", PrehashedPassword: "h"}, ErrUsernameRequired},
		{"blank username", model.CredentialRequest{Username: "   ", PrehashedPassword: "h"}, ErrUsernameRequired},
		{"empty password", model.CredentialRequest{Username: "max", PrehashedPassword: ""}, ErrPasswordRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Register(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	auth, _ := newTestServices(t, repository.NewMemoryStore())
	ctx := context.Background()

	_, err := auth.Register(ctx, model.CredentialRequest{Username: "max", PrehashedPassword: "h1"})
	require.NoError(t, err)

	_, err = auth.Register(ctx, model.CredentialRequest{Username: "max", PrehashedPassword: "h2"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegister_StoresOnlyHash(t *testing.T) {
	store := repository.NewMemoryStore()
	auth, _ := newTestServices(t, store)

	acc, err := auth.Register(context.Background(), model.CredentialRequest{Username: "max", PrehashedPassword: "h1"})
	require.NoError(t, err)

	stored, err := store.GetAccountByID(context.Background(), acc.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "h1", stored.CredentialHash)
	assert.Contains(t, stored.CredentialHash, "$argon2id$")
	assert.NotEmpty(t, stored.Generation)
}

func TestLogin(t *testing.T) {
	auth, _ := newTestServices(t, repository.NewMemoryStore())
	ctx := context.Background()
	accountID, token := registerAndLogin(t, auth, "max", "h1")

	got, err := auth.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, accountID, got)

	_, err = auth.Login(ctx, model.CredentialRequest{Username: "max", PrehashedPassword: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = auth.Login(ctx, model.CredentialRequest{Username: "nobody", PrehashedPassword: "h1"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestValidateToken_Rejects(t *testing.T) {
	store := repository.NewMemoryStore()
	auth, _ := newTestServices(t, store)
	ctx := context.Background()
	accountID, token := registerAndLogin(t, auth, "max", "h1")

	_, err := auth.ValidateToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Changing the generation out from under the token revokes it.
	acc, err := store.GetAccountByID(ctx, accountID)
	require.NoError(t, err)
	require.NoError(t, store.UpdateAccountCredential(ctx, accountID, acc.CredentialHash, "other-generation"))

	_, err = auth.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGetAccount(t *testing.T) {
	auth, _ := newTestServices(t, repository.NewMemoryStore())
	ctx := context.Background()
	accountID, _ := registerAndLogin(t, auth, "max", "h1")

	got, err := auth.GetAccount(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, "max", got.Username)

	_, err = auth.GetAccount(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAccount(t *testing.T) {
	store := repository.NewMemoryStore()
	auth, vault := newTestServices(t, store)
	ctx := context.Background()
	accountID, token := registerAndLogin(t, auth, "max", "h1")

	e1, err := vault.CreateEntry(ctx, accountID, model.EntryPayload{EncryptedName: field("n1")})
	require.NoError(t, err)
	e2, err := vault.CreateEntry(ctx, accountID, model.EntryPayload{EncryptedPassword: field("p2")})
	require.NoError(t, err)

	err = auth.DeleteAccount(ctx, accountID, model.DeleteAccountRequest{PrehashedPassword: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredential)
	_, err = vault.GetEntry(ctx, accountID, e1.ID)
	require.NoError(t, err, "rejected deletion must not remove entries")

	require.NoError(t, auth.DeleteAccount(ctx, accountID, model.DeleteAccountRequest{PrehashedPassword: "h1"}))

	for _, id := range []string{e1.ID, e2.ID} {
		_, err = vault.GetEntry(ctx, accountID, id)
		assert.ErrorIs(t, err, ErrNotFound)
	}
	_, err = auth.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = auth.Login(ctx, model.CredentialRequest{Username: "max", PrehashedPassword: "h1"})
	assert.ErrorIs(t, err, ErrInvalidCredential)

	err = auth.DeleteAccount(ctx, accountID, model.DeleteAccountRequest{PrehashedPassword: "h1"})
	assert.ErrorIs(t, err, ErrNotFound)
}

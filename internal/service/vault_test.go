package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultpass/zkvault/internal/model"
	"github.com/vaultpass/zkvault/internal/repository"
)

func TestCreateEntry_RejectsClientID(t *testing.T) {
	auth, vault := newTestServices(t, repository.NewMemoryStore())
	accountID, _ := registerAndLogin(t, auth, "max", "h1")

	_, err := vault.CreateEntry(context.Background(), accountID, model.EntryPayload{ID: "chosen-by-client"})
	assert.ErrorIs(t, err, ErrEntryIDNotAllowed)
}

func TestEntryCRUD(t *testing.T) {
	auth, vault := newTestServices(t, repository.NewMemoryStore())
	ctx := context.Background()
	accountID, _ := registerAndLogin(t, auth, "max", "h1")

	created, err := vault.CreateEntry(ctx, accountID, model.EntryPayload{
		EncryptedName:     field("n1"),
		EncryptedPassword: field("p1"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := vault.GetEntry(ctx, accountID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "n1", string(*got.EncryptedName))
	assert.Nil(t, got.EncryptedLink)

	updated, err := vault.UpdateEntry(ctx, accountID, created.ID, model.EntryPayload{
		ID:            "ignored",
		EncryptedName: field("n2"),
		EncryptedLink: field("l2"),
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "n2", string(*updated.EncryptedName))
	assert.Nil(t, updated.EncryptedPassword)

	list, err := vault.ListEntries(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "l2", string(*list[0].EncryptedLink))

	require.NoError(t, vault.DeleteEntry(ctx, accountID, created.ID))
	_, err = vault.GetEntry(ctx, accountID, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, vault.DeleteEntry(ctx, accountID, created.ID), ErrNotFound)
}

func TestEntries_NotVisibleToOtherAccounts(t *testing.T) {
	auth, vault := newTestServices(t, repository.NewMemoryStore())
	ctx := context.Background()
	alice, _ := registerAndLogin(t, auth, "alice", "ha")
	bob, _ := registerAndLogin(t, auth, "bob", "hb")

	entry, err := vault.CreateEntry(ctx, alice, model.EntryPayload{EncryptedName: field("secret")})
	require.NoError(t, err)

	_, err = vault.GetEntry(ctx, bob, entry.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = vault.UpdateEntry(ctx, bob, entry.ID, model.EntryPayload{EncryptedName: field("x")})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, vault.DeleteEntry(ctx, bob, entry.ID), ErrNotFound)

	list, err := vault.ListEntries(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestEntriesToPayload_EmptySlice(t *testing.T) {
	result := entriesToPayload(nil)

	if result == nil {
		t.Fatal("expected non-nil empty slice, got nil")
	}
	if len(result) != 0 {
		t.Errorf("expected empty slice, got %d elements", len(result))
	}
}

package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/vaultpass/zkvault/internal/crypto"
	"github.com/vaultpass/zkvault/internal/model"
	"github.com/vaultpass/zkvault/internal/repository"
)

// VaultService handles vault entry business logic. It only ever sees ciphertext.
type VaultService struct {
	store  repository.Store
	hasher *crypto.CredentialHasher
}

// NewVaultService creates a new VaultService.
func NewVaultService(store repository.Store, hasher *crypto.CredentialHasher) *VaultService {
	return &VaultService{store: store, hasher: hasher}
}

// ListEntries returns every entry owned by the account.
func (s *VaultService) ListEntries(ctx context.Context, accountID string) ([]model.EntryPayload, error) {
	entries, err := s.store.ListEntriesByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return entriesToPayload(entries), nil
}

// GetEntry returns one owned entry.
func (s *VaultService) GetEntry(ctx context.Context, accountID, entryID string) (model.EntryPayload, error) {
	entry, err := s.store.GetEntryByID(ctx, accountID, entryID)
	if err != nil {
		return model.EntryPayload{}, notFound(err)
	}
	return entry.Payload(), nil
}

// CreateEntry stores a new entry under a server-assigned id.
func (s *VaultService) CreateEntry(ctx context.Context, accountID string, req model.EntryPayload) (model.EntryPayload, error) {
	if req.ID != "" {
		return model.EntryPayload{}, ErrEntryIDNotAllowed
	}

	entry := &model.VaultEntry{ID: uuid.NewString(), AccountID: accountID}
	entry.ApplyFields(req)

	// The account lock orders this insert against a concurrent rotation.
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.LockAccount(ctx, accountID); err != nil {
			return err
		}
		return tx.UpsertEntry(ctx, entry)
	})
	if err != nil {
		return model.EntryPayload{}, notFound(err)
	}

	return entry.Payload(), nil
}

// UpdateEntry replaces all four ciphertext fields of an owned entry. The id in
// the path wins over any id in the body.
func (s *VaultService) UpdateEntry(ctx context.Context, accountID, entryID string, req model.EntryPayload) (model.EntryPayload, error) {
	var updated model.VaultEntry
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.LockAccount(ctx, accountID); err != nil {
			return err
		}
		existing, err := tx.GetEntryByID(ctx, accountID, entryID)
		if err != nil {
			return err
		}
		existing.ApplyFields(req)
		if err := tx.UpsertEntry(ctx, existing); err != nil {
			return err
		}
		updated = *existing
		return nil
	})
	if err != nil {
		return model.EntryPayload{}, notFound(err)
	}

	return updated.Payload(), nil
}

// DeleteEntry removes one owned entry.
func (s *VaultService) DeleteEntry(ctx context.Context, accountID, entryID string) error {
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.LockAccount(ctx, accountID); err != nil {
			return err
		}
		return tx.DeleteEntry(ctx, accountID, entryID)
	})
	return notFound(err)
}

// notFound folds the repository's not-found sentinels into ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, repository.ErrEntryNotFound) || errors.Is(err, repository.ErrAccountNotFound) {
		return ErrNotFound
	}
	return err
}

// entriesToPayload converts stored entries to their wire shape.
func entriesToPayload(entries []model.VaultEntry) []model.EntryPayload {
	result := make([]model.EntryPayload, len(entries))
	for i, e := range entries {
		result[i] = e.Payload()
	}
	return result
}

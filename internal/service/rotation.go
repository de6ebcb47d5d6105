package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vaultpass/zkvault/internal/crypto"
	"github.com/vaultpass/zkvault/internal/model"
	"github.com/vaultpass/zkvault/internal/repository"
)

// RotateCredential replaces the account's credential and re-keys the whole
// vault in one transaction. The request must carry every owned entry exactly
// once, re-encrypted under the new key. On success the generation marker
// changes, which revokes every token issued before.
func (s *VaultService) RotateCredential(ctx context.Context, accountID string, req model.RotateCredentialRequest) error {
	if req.NewPrehashedPassword == "" {
		return ErrPasswordRequired
	}

	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.LockAccount(ctx, accountID); err != nil {
			return err
		}
		account, err := tx.GetAccountByID(ctx, accountID)
		if err != nil {
			return err
		}

		ok, err := s.hasher.Verify(req.OldPrehashedPassword, account.CredentialHash)
		if err != nil {
			return fmt.Errorf("verifying credential: %w", err)
		}
		if !ok {
			return ErrInvalidCredential
		}

		stored, err := tx.ListEntriesByAccount(ctx, accountID)
		if err != nil {
			return err
		}
		if !sameIDSet(stored, req.ReencryptedEntries) {
			return ErrIncompleteReencryption
		}

		staged := make([]*model.VaultEntry, 0, len(req.ReencryptedEntries))
		for _, p := range req.ReencryptedEntries {
			existing, err := tx.GetEntryByID(ctx, accountID, p.ID)
			if err != nil {
				return err
			}
			if reusesCiphertext(existing, p) {
				return ErrIncompleteReencryption
			}
			existing.ApplyFields(p)
			staged = append(staged, existing)
		}

		newHash, err := s.hasher.Hash(req.NewPrehashedPassword)
		if err != nil {
			return fmt.Errorf("hashing credential: %w", err)
		}

		for _, e := range staged {
			if err := tx.UpsertEntry(ctx, e); err != nil {
				return err
			}
		}
		return tx.UpdateAccountCredential(ctx, accountID, newHash, crypto.NewGeneration())
	})
	if err != nil {
		if errors.Is(err, ErrIncompleteReencryption) {
			slog.Warn("credential rotation rejected", "account_id", accountID, "error", err)
		}
		return notFound(err)
	}

	slog.Info("credential rotated", "account_id", accountID, "entries", len(req.ReencryptedEntries))
	return nil
}

// sameIDSet reports whether the payload ids are exactly the stored ids.
// A repeated payload id is a mismatch.
func sameIDSet(stored []model.VaultEntry, payload []model.EntryPayload) bool {
	if len(stored) != len(payload) {
		return false
	}

	want := make(map[string]struct{}, len(stored))
	for _, e := range stored {
		want[e.ID] = struct{}{}
	}
	for _, p := range payload {
		if _, ok := want[p.ID]; !ok {
			return false
		}
		delete(want, p.ID)
	}
	return len(want) == 0
}

// reusesCiphertext reports whether any non-null resubmitted field is byte for
// byte the ciphertext already stored. Under a new key with a fresh IV that
// cannot happen, so it means the entry was not re-encrypted.
func reusesCiphertext(existing *model.VaultEntry, p model.EntryPayload) bool {
	pairs := [][2]*crypto.EncryptedField{
		{existing.Name, p.EncryptedName},
		{existing.Link, p.EncryptedLink},
		{existing.Username, p.EncryptedUsername},
		{existing.Password, p.EncryptedPassword},
	}
	for _, pair := range pairs {
		if pair[0] != nil && pair[1] != nil && *pair[0] == *pair[1] {
			return true
		}
	}
	return false
}

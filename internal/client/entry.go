package client

import (
	"fmt"

	"github.com/vaultpass/zkvault/internal/crypto"
	"github.com/vaultpass/zkvault/internal/model"
)

// Entry is a decrypted vault entry. It exists only on the client; the wire
// type is model.EntryPayload, which carries ciphertext only.
type Entry struct {
	ID       string
	Name     *string
	Link     *string
	Username *string
	Password *string
}

// SealEntry encrypts every field of e under key.
func SealEntry(e Entry, key []byte) (model.EntryPayload, error) {
	p := model.EntryPayload{ID: e.ID}
	fields := []struct {
		name string
		in   *string
		out  **crypto.EncryptedField
	}{
		{"name", e.Name, &p.EncryptedName},
		{"link", e.Link, &p.EncryptedLink},
		{"username", e.Username, &p.EncryptedUsername},
		{"password", e.Password, &p.EncryptedPassword},
	}
	for _, f := range fields {
		blob, err := crypto.EncryptField(f.in, key)
		if err != nil {
			return model.EntryPayload{}, fmt.Errorf("encrypting %s: %w", f.name, err)
		}
		*f.out = blob
	}
	return p, nil
}

// OpenEntry decrypts every field of p under key. A field that does not
// decrypt fails the whole entry.
func OpenEntry(p model.EntryPayload, key []byte) (Entry, error) {
	e := Entry{ID: p.ID}
	fields := []struct {
		name string
		in   *crypto.EncryptedField
		out  **string
	}{
		{"name", p.EncryptedName, &e.Name},
		{"link", p.EncryptedLink, &e.Link},
		{"username", p.EncryptedUsername, &e.Username},
		{"password", p.EncryptedPassword, &e.Password},
	}
	for _, f := range fields {
		plain, err := crypto.DecryptField(f.in, key)
		if err != nil {
			return Entry{}, fmt.Errorf("entry %s %s: %w", p.ID, f.name, err)
		}
		*f.out = plain
	}
	return e, nil
}

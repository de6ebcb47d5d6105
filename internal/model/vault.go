package model

import (
	"time"

	"github.com/vaultpass/zkvault/internal/crypto"
)

// VaultEntry represents a stored vault entry. Every field is ciphertext and
// each one is independently optional.
type VaultEntry struct {
	ID        string
	AccountID string
	Name      *crypto.EncryptedField
	Link      *crypto.EncryptedField
	Username  *crypto.EncryptedField
	Password  *crypto.EncryptedField
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EntryPayload is the wire shape of a vault entry in both directions.
// It only ever carries ciphertext.
type EntryPayload struct {
	ID                string                 `json:"id,omitempty"`
	EncryptedName     *crypto.EncryptedField `json:"encryptedName"`
	EncryptedLink     *crypto.EncryptedField `json:"encryptedLink"`
	EncryptedUsername *crypto.EncryptedField `json:"encryptedUsername"`
	EncryptedPassword *crypto.EncryptedField `json:"encryptedPassword"`
}

// Payload converts a stored entry to its wire shape.
func (e VaultEntry) Payload() EntryPayload {
	return EntryPayload{
		ID:                e.ID,
		EncryptedName:     e.Name,
		EncryptedLink:     e.Link,
		EncryptedUsername: e.Username,
		EncryptedPassword: e.Password,
	}
}

// ApplyFields replaces all four ciphertext fields with the payload's.
func (e *VaultEntry) ApplyFields(p EntryPayload) {
	e.Name = p.EncryptedName
	e.Link = p.EncryptedLink
	e.Username = p.EncryptedUsername
	e.Password = p.EncryptedPassword
}

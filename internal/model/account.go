package model

import "time"

// Account represents an account in the database.
type Account struct {
	ID             string
	Username       string
	CredentialHash string
	Generation     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CredentialRequest carries a username and the client-side pre-hash of the master password.
// It is used for both registration and login.
type CredentialRequest struct {
	Username          string `json:"username"`
	PrehashedPassword string `json:"prehashedPassword"`
}

// RotateCredentialRequest carries the old and new pre-hash together with every
// vault entry re-encrypted under the key derived from the new master password.
type RotateCredentialRequest struct {
	OldPrehashedPassword string         `json:"oldPrehashedPassword"`
	NewPrehashedPassword string         `json:"newPrehashedPassword"`
	ReencryptedEntries   []EntryPayload `json:"reencryptedEntries"`
}

// DeleteAccountRequest confirms account deletion with the current pre-hash.
type DeleteAccountRequest struct {
	PrehashedPassword string `json:"prehashedPassword"`
}

// MessageResponse is a human readable outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse is returned on successful login.
type TokenResponse struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AccountResponse represents account data safe for API responses (no credential fields).
type AccountResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

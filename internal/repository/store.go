package repository

import (
	"context"
	"errors"

	"github.com/vaultpass/zkvault/internal/model"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrEntryNotFound     = errors.New("vault entry not found")
)

// Tx is the set of account and entry operations the services need. Every
// entry operation is scoped to the owning account id.
type Tx interface {
	// LockAccount takes an exclusive lock on the account row until the transaction ends.
	LockAccount(ctx context.Context, accountID string) error
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccountByUsername(ctx context.Context, username string) (*model.Account, error)
	GetAccountByID(ctx context.Context, id string) (*model.Account, error)
	UpdateAccountCredential(ctx context.Context, accountID, credentialHash, generation string) error
	DeleteAccount(ctx context.Context, accountID string) error

	ListEntriesByAccount(ctx context.Context, accountID string) ([]model.VaultEntry, error)
	GetEntryByID(ctx context.Context, accountID, entryID string) (*model.VaultEntry, error)
	UpsertEntry(ctx context.Context, entry *model.VaultEntry) error
	DeleteEntry(ctx context.Context, accountID, entryID string) error
	DeleteEntriesByAccount(ctx context.Context, accountID string) error
}

// Store runs Tx operations either one at a time or grouped in a transaction.
// WithTx commits when fn returns nil and discards every write otherwise.
type Store interface {
	Tx
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

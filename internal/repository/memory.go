package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vaultpass/zkvault/internal/model"
)

// MemoryStore is an in-process Store. Transactions are serialized and work on
// a staged copy of the data that replaces the live state only on commit.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState
	now   func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: &memState{
			accounts: make(map[string]model.Account),
			entries:  make(map[string]model.VaultEntry),
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithTx runs fn against a staged copy and commits it only if fn returns nil.
func (s *MemoryStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.state.clone()
	if err := fn(ctx, &memTx{state: staged, now: s.now}); err != nil {
		return err
	}
	s.state = staged
	return nil
}

// read runs fn against the live state under the store lock. fn must not write.
func (s *MemoryStore) read(fn func(tx *memTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&memTx{state: s.state, now: s.now})
}

func (s *MemoryStore) LockAccount(ctx context.Context, accountID string) error {
	return s.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.LockAccount(ctx, accountID)
	})
}

func (s *MemoryStore) CreateAccount(ctx context.Context, account *model.Account) error {
	return s.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.CreateAccount(ctx, account)
	})
}

func (s *MemoryStore) GetAccountByUsername(ctx context.Context, username string) (account *model.Account, err error) {
	err = s.read(func(tx *memTx) error {
		account, err = tx.GetAccountByUsername(ctx, username)
		return err
	})
	return account, err
}

func (s *MemoryStore) GetAccountByID(ctx context.Context, id string) (account *model.Account, err error) {
	err = s.read(func(tx *memTx) error {
		account, err = tx.GetAccountByID(ctx, id)
		return err
	})
	return account, err
}

func (s *MemoryStore) UpdateAccountCredential(ctx context.Context, accountID, credentialHash, generation string) error {
	return s.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.UpdateAccountCredential(ctx, accountID, credentialHash, generation)
	})
}

func (s *MemoryStore) DeleteAccount(ctx context.Context, accountID string) error {
	return s.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.DeleteAccount(ctx, accountID)
	})
}

func (s *MemoryStore) ListEntriesByAccount(ctx context.Context, accountID string) (entries []model.VaultEntry, err error) {
	err = s.read(func(tx *memTx) error {
		entries, err = tx.ListEntriesByAccount(ctx, accountID)
		return err
	})
	return entries, err
}

func (s *MemoryStore) GetEntryByID(ctx context.Context, accountID, entryID string) (entry *model.VaultEntry, err error) {
	err = s.read(func(tx *memTx) error {
		entry, err = tx.GetEntryByID(ctx, accountID, entryID)
		return err
	})
	return entry, err
}

func (s *MemoryStore) UpsertEntry(ctx context.Context, entry *model.VaultEntry) error {
	return s.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.UpsertEntry(ctx, entry)
	})
}

func (s *MemoryStore) DeleteEntry(ctx context.Context, accountID, entryID string) error {
	return s.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.DeleteEntry(ctx, accountID, entryID)
	})
}

func (s *MemoryStore) DeleteEntriesByAccount(ctx context.Context, accountID string) error {
	return s.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.DeleteEntriesByAccount(ctx, accountID)
	})
}

type memState struct {
	accounts map[string]model.Account
	entries  map[string]model.VaultEntry
}

// clone copies the maps. Entry field pointers are shared, which is safe
// because stored values are never mutated in place.
func (st *memState) clone() *memState {
	c := &memState{
		accounts: make(map[string]model.Account, len(st.accounts)),
		entries:  make(map[string]model.VaultEntry, len(st.entries)),
	}
	for k, v := range st.accounts {
		c.accounts[k] = v
	}
	for k, v := range st.entries {
		c.entries[k] = v
	}
	return c
}

type memTx struct {
	state *memState
	now   func() time.Time
}

// LockAccount only checks existence; MemoryStore.WithTx already holds the store lock.
func (t *memTx) LockAccount(_ context.Context, accountID string) error {
	if _, ok := t.state.accounts[accountID]; !ok {
		return ErrAccountNotFound
	}
	return nil
}

func (t *memTx) CreateAccount(_ context.Context, account *model.Account) error {
	for _, a := range t.state.accounts {
		if a.Username == account.Username {
			return ErrDuplicateUsername
		}
	}
	now := t.now()
	account.CreatedAt, account.UpdatedAt = now, now
	t.state.accounts[account.ID] = *account
	return nil
}

func (t *memTx) GetAccountByUsername(_ context.Context, username string) (*model.Account, error) {
	for _, a := range t.state.accounts {
		if a.Username == username {
			return &a, nil
		}
	}
	return nil, ErrAccountNotFound
}

func (t *memTx) GetAccountByID(_ context.Context, id string) (*model.Account, error) {
	a, ok := t.state.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &a, nil
}

func (t *memTx) UpdateAccountCredential(_ context.Context, accountID, credentialHash, generation string) error {
	a, ok := t.state.accounts[accountID]
	if !ok {
		return ErrAccountNotFound
	}
	a.CredentialHash = credentialHash
	a.Generation = generation
	a.UpdatedAt = t.now()
	t.state.accounts[accountID] = a
	return nil
}

func (t *memTx) DeleteAccount(ctx context.Context, accountID string) error {
	if _, ok := t.state.accounts[accountID]; !ok {
		return ErrAccountNotFound
	}
	delete(t.state.accounts, accountID)
	return t.DeleteEntriesByAccount(ctx, accountID)
}

func (t *memTx) ListEntriesByAccount(_ context.Context, accountID string) ([]model.VaultEntry, error) {
	entries := []model.VaultEntry{}
	for _, e := range t.state.entries {
		if e.AccountID == accountID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

func (t *memTx) GetEntryByID(_ context.Context, accountID, entryID string) (*model.VaultEntry, error) {
	e, ok := t.state.entries[entryID]
	if !ok || e.AccountID != accountID {
		return nil, ErrEntryNotFound
	}
	return &e, nil
}

func (t *memTx) UpsertEntry(_ context.Context, entry *model.VaultEntry) error {
	now := t.now()
	existing, ok := t.state.entries[entry.ID]
	if ok {
		if existing.AccountID != entry.AccountID {
			return nil
		}
		existing.ApplyFields(entry.Payload())
		existing.UpdatedAt = now
		t.state.entries[entry.ID] = existing
		return nil
	}
	if _, ok := t.state.accounts[entry.AccountID]; !ok {
		return ErrAccountNotFound
	}
	stored := *entry
	stored.CreatedAt, stored.UpdatedAt = now, now
	t.state.entries[entry.ID] = stored
	return nil
}

func (t *memTx) DeleteEntry(_ context.Context, accountID, entryID string) error {
	e, ok := t.state.entries[entryID]
	if !ok || e.AccountID != accountID {
		return ErrEntryNotFound
	}
	delete(t.state.entries, entryID)
	return nil
}

func (t *memTx) DeleteEntriesByAccount(_ context.Context, accountID string) error {
	for id, e := range t.state.entries {
		if e.AccountID == accountID {
			delete(t.state.entries, id)
		}
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vaultpass/zkvault/internal/crypto"
	"github.com/vaultpass/zkvault/internal/model"
)

const entryColumns = `id, account_id, name, link, username, password, created_at, updated_at`

// upsertEntryQuery inserts a new entry or replaces the fields of an existing one.
// An existing row owned by another account is left untouched.
const upsertEntryQuery = `
	INSERT INTO vault_entries (id, account_id, name, link, username, password)
	VALUES (?, ?, ?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE
		name     = IF(account_id = VALUES(account_id), VALUES(name), name),
		link     = IF(account_id = VALUES(account_id), VALUES(link), link),
		username = IF(account_id = VALUES(account_id), VALUES(username), username),
		password = IF(account_id = VALUES(account_id), VALUES(password), password)`

// VaultRepository handles vault entry persistence operations.
type VaultRepository struct {
	db DBTX
}

// NewVaultRepository creates a new VaultRepository bound to a pool or a transaction.
func NewVaultRepository(db DBTX) *VaultRepository {
	return &VaultRepository{db: db}
}

// ListEntriesByAccount retrieves all entries owned by an account, oldest first.
func (r *VaultRepository) ListEntriesByAccount(ctx context.Context, accountID string) ([]model.VaultEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM vault_entries WHERE account_id = ? ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	entries := []model.VaultEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}

	return entries, rows.Err()
}

// GetEntryByID retrieves an entry only if it is owned by the account.
func (r *VaultRepository) GetEntryByID(ctx context.Context, accountID, entryID string) (*model.VaultEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM vault_entries WHERE id = ? AND account_id = ?`

	e, err := scanEntry(r.db.QueryRowContext(ctx, query, entryID, accountID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	return e, err
}

// UpsertEntry inserts or updates an entry's ciphertext fields.
func (r *VaultRepository) UpsertEntry(ctx context.Context, entry *model.VaultEntry) error {
	_, err := r.db.ExecContext(ctx, upsertEntryQuery,
		entry.ID,
		entry.AccountID,
		fieldArg(entry.Name),
		fieldArg(entry.Link),
		fieldArg(entry.Username),
		fieldArg(entry.Password),
	)
	if err != nil {
		return fmt.Errorf("upserting entry: %w", err)
	}
	return nil
}

// DeleteEntry removes one entry owned by the account.
func (r *VaultRepository) DeleteEntry(ctx context.Context, accountID, entryID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM vault_entries WHERE id = ? AND account_id = ?`, entryID, accountID)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	return requireAffected(result, ErrEntryNotFound)
}

// DeleteEntriesByAccount removes every entry owned by the account.
func (r *VaultRepository) DeleteEntriesByAccount(ctx context.Context, accountID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM vault_entries WHERE account_id = ?`, accountID); err != nil {
		return fmt.Errorf("deleting entries: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*model.VaultEntry, error) {
	var (
		e                              model.VaultEntry
		name, link, username, password sql.NullString
	)
	err := row.Scan(&e.ID, &e.AccountID, &name, &link, &username, &password, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("reading entry: %w", err)
	}

	e.Name = fieldFromNull(name)
	e.Link = fieldFromNull(link)
	e.Username = fieldFromNull(username)
	e.Password = fieldFromNull(password)
	return &e, nil
}

func fieldArg(f *crypto.EncryptedField) sql.NullString {
	if f == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*f), Valid: true}
}

func fieldFromNull(ns sql.NullString) *crypto.EncryptedField {
	if !ns.Valid {
		return nil
	}
	f := crypto.EncryptedField(ns.String)
	return &f
}

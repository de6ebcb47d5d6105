package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/vaultpass/zkvault/internal/model"
)

const accountColumns = `id, username, credential_hash, generation, created_at, updated_at`

// AccountRepository handles account persistence operations.
type AccountRepository struct {
	db DBTX
}

// NewAccountRepository creates a new AccountRepository bound to a pool or a transaction.
func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

// LockAccount locks the account row for the rest of the enclosing transaction.
func (r *AccountRepository) LockAccount(ctx context.Context, accountID string) error {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM accounts WHERE id = ? FOR UPDATE`, accountID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("locking account: %w", err)
	}
	return nil
}

// CreateAccount inserts a new account. The caller assigns ID and Generation.
func (r *AccountRepository) CreateAccount(ctx context.Context, account *model.Account) error {
	query := `INSERT INTO accounts (id, username, credential_hash, generation) VALUES (?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, account.ID, account.Username, account.CredentialHash, account.Generation)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("inserting account: %w", err)
	}

	return nil
}

// GetAccountByUsername retrieves an account by its username.
func (r *AccountRepository) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, username))
}

// GetAccountByID retrieves an account by its ID.
func (r *AccountRepository) GetAccountByID(ctx context.Context, id string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// UpdateAccountCredential replaces the credential hash and the generation marker together.
func (r *AccountRepository) UpdateAccountCredential(ctx context.Context, accountID, credentialHash, generation string) error {
	query := `UPDATE accounts SET credential_hash = ?, generation = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, credentialHash, generation, accountID)
	if err != nil {
		return fmt.Errorf("updating credential: %w", err)
	}
	return requireAffected(result, ErrAccountNotFound)
}

// DeleteAccount removes the account. Entries go with it through the foreign key.
func (r *AccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, accountID)
	if err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}
	return requireAffected(result, ErrAccountNotFound)
}

func (r *AccountRepository) scanOne(row *sql.Row) (*model.Account, error) {
	account := &model.Account{}
	err := row.Scan(
		&account.ID, &account.Username, &account.CredentialHash,
		&account.Generation, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("reading account: %w", err)
	}
	return account, nil
}

// requireAffected turns a zero row count into notFound.
func requireAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// isDuplicateEntryError checks if a MySQL error is a duplicate entry error (code 1062).
func isDuplicateEntryError(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}

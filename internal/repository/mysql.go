package repository

import (
	"context"
	"database/sql"
)

// mysqlTx binds both repositories to the same DBTX.
type mysqlTx struct {
	*AccountRepository
	*VaultRepository
}

func newMySQLTx(db DBTX) mysqlTx {
	return mysqlTx{
		AccountRepository: NewAccountRepository(db),
		VaultRepository:   NewVaultRepository(db),
	}
}

// MySQLStore is the Store backed by MySQL.
type MySQLStore struct {
	mysqlTx
	db *sql.DB
}

// NewMySQLStore creates a Store on top of an open pool.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{mysqlTx: newMySQLTx(db), db: db}
}

// WithTx runs fn in a single database transaction.
func (s *MySQLStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return withTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, newMySQLTx(tx))
	})
}

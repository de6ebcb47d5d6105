package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/vaultpass/zkvault/internal/model"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

var accountRowColumns = []string{"id", "username", "credential_hash", "generation", "created_at", "updated_at"}

func TestCreateAccount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	q := `(?s)^INSERT\s+INTO\s+accounts\s*\(id,\s*username,\s*credential_hash,\s*generation\)\s*VALUES\s*\(\?,\s*\?,\s*\?,\s*\?\)$`
	mock.ExpectExec(q).
		WithArgs("acc-1", "alice", "$argon2id$hash", "gen-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.CreateAccount(context.Background(), &model.Account{
		ID: "acc-1", Username: "alice", CredentialHash: "$argon2id$hash", Generation: "gen-1",
	})
	if err != nil {
		t.Fatalf("CreateAccount() unexpected error: %v", err)
	}
	expectationsMet(t, mock)
}

func TestCreateAccount_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectExec(`INSERT\s+INTO\s+accounts`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice' for key 'username'"})

	err := repo.CreateAccount(context.Background(), &model.Account{ID: "acc-1", Username: "alice"})
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("CreateAccount() error = %v, want %v", err, ErrDuplicateUsername)
	}
}

func TestCreateAccount_DBError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectExec(`INSERT\s+INTO\s+accounts`).WillReturnError(errors.New("db down"))

	err := repo.CreateAccount(context.Background(), &model.Account{ID: "acc-1", Username: "alice"})
	if err == nil || !regexp.MustCompile(`inserting account: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetAccountByUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	q := `(?s)^SELECT\s+id,\s*username,\s*credential_hash,\s*generation,\s*created_at,\s*updated_at\s+FROM\s+accounts\s+WHERE\s+username\s*=\s*\?$`
	mock.ExpectQuery(q).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(accountRowColumns).AddRow("acc-1", "alice", "hash", "gen-1", created, created))

	got, err := repo.GetAccountByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetAccountByUsername() unexpected error: %v", err)
	}
	if got.ID != "acc-1" || got.Generation != "gen-1" || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected account: %+v", got)
	}
}

func TestGetAccountByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery(`FROM\s+accounts\s+WHERE\s+id\s*=\s*\?$`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetAccountByID(context.Background(), "ghost")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("GetAccountByID() error = %v, want %v", err, ErrAccountNotFound)
	}
}

func TestLockAccount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	q := `(?s)^SELECT\s+id\s+FROM\s+accounts\s+WHERE\s+id\s*=\s*\?\s+FOR\s+UPDATE$`
	mock.ExpectQuery(q).WithArgs("acc-1").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("acc-1"))
	mock.ExpectQuery(q).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	if err := repo.LockAccount(context.Background(), "acc-1"); err != nil {
		t.Fatalf("LockAccount() unexpected error: %v", err)
	}
	if err := repo.LockAccount(context.Background(), "ghost"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("LockAccount() error = %v, want %v", err, ErrAccountNotFound)
	}
	expectationsMet(t, mock)
}

func TestUpdateAccountCredential(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	q := `(?s)^UPDATE\s+accounts\s+SET\s+credential_hash\s*=\s*\?,\s*generation\s*=\s*\?\s+WHERE\s+id\s*=\s*\?$`
	mock.ExpectExec(q).WithArgs("new-hash", "gen-2", "acc-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("new-hash", "gen-2", "ghost").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.UpdateAccountCredential(context.Background(), "acc-1", "new-hash", "gen-2"); err != nil {
		t.Fatalf("UpdateAccountCredential() unexpected error: %v", err)
	}
	err := repo.UpdateAccountCredential(context.Background(), "ghost", "new-hash", "gen-2")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("UpdateAccountCredential() error = %v, want %v", err, ErrAccountNotFound)
	}
	expectationsMet(t, mock)
}

func TestDeleteAccount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectExec(`^DELETE\s+FROM\s+accounts\s+WHERE\s+id\s*=\s*\?$`).
		WithArgs("acc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.DeleteAccount(context.Background(), "acc-1"); err != nil {
		t.Fatalf("DeleteAccount() unexpected error: %v", err)
	}
	expectationsMet(t, mock)
}

func TestIsDuplicateEntryError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"mysql 1062", &mysql.MySQLError{Number: 1062}, true},
		{"other mysql error", &mysql.MySQLError{Number: 1146}, false},
		{"message match", errors.New("Error 1062: Duplicate entry 'x'"), true},
		{"unrelated", errors.New("connection refused"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDuplicateEntryError(tt.err); got != tt.want {
				t.Errorf("isDuplicateEntryError() = %v, want %v", got, tt.want)
			}
		})
	}
}

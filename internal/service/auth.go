package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/vaultpass/zkvault/internal/crypto"
	"github.com/vaultpass/zkvault/internal/model"
	"github.com/vaultpass/zkvault/internal/repository"
)

// AuthService handles registration, login, token validation and account lifecycle.
type AuthService struct {
	store  repository.Store
	hasher *crypto.CredentialHasher
	tokens *crypto.TokenSigner
}

// NewAuthService creates a new AuthService.
func NewAuthService(store repository.Store, hasher *crypto.CredentialHasher, tokens *crypto.TokenSigner) *AuthService {
	return &AuthService{
		store:  store,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register creates an account. Only the slow hash of the pre-hash is stored.
func (s *AuthService) Register(ctx context.Context, req model.CredentialRequest) (model.AccountResponse, error) {
	if strings.TrimSpace(req.Username) == "" {
		return model.AccountResponse{}, ErrUsernameRequired
	}
	if req.PrehashedPassword == "" {
		return model.AccountResponse{}, ErrPasswordRequired
	}

	hash, err := s.hasher.Hash(req.PrehashedPassword)
	if err != nil {
		return model.AccountResponse{}, fmt.Errorf("hashing credential: %w", err)
	}

	account := &model.Account{
		ID:             uuid.NewString(),
		Username:       req.Username,
		CredentialHash: hash,
		Generation:     crypto.NewGeneration(),
	}

	if err := s.store.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return model.AccountResponse{}, ErrUsernameTaken
		}
		return model.AccountResponse{}, err
	}

	slog.Info("account registered", "account_id", account.ID)
	return toAccountResponse(account), nil
}

// Login verifies the pre-hash and issues a token bound to the current generation.
func (s *AuthService) Login(ctx context.Context, req model.CredentialRequest) (model.TokenResponse, error) {
	account, err := s.store.GetAccountByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return model.TokenResponse{}, ErrInvalidCredential
		}
		return model.TokenResponse{}, err
	}

	if err := s.verify(req.PrehashedPassword, account); err != nil {
		return model.TokenResponse{}, err
	}

	token, expiresAt, err := s.tokens.Issue(account.ID, account.Generation)
	if err != nil {
		return model.TokenResponse{}, fmt.Errorf("issuing token: %w", err)
	}

	return model.TokenResponse{
		Message:   "login successful",
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateToken returns the account id a token speaks for. A token minted
// before the last credential rotation is rejected even if it has not expired.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (string, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return "", ErrInvalidToken
	}

	account, err := s.store.GetAccountByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}

	if subtle.ConstantTimeCompare([]byte(claims.Generation), []byte(account.Generation)) != 1 {
		return "", ErrInvalidToken
	}

	return account.ID, nil
}

// GetAccount returns the public view of an account.
func (s *AuthService) GetAccount(ctx context.Context, accountID string) (model.AccountResponse, error) {
	account, err := s.store.GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return model.AccountResponse{}, ErrNotFound
		}
		return model.AccountResponse{}, err
	}
	return toAccountResponse(account), nil
}

// DeleteAccount removes the account and every entry it owns after re-checking the pre-hash.
func (s *AuthService) DeleteAccount(ctx context.Context, accountID string, req model.DeleteAccountRequest) error {
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.LockAccount(ctx, accountID); err != nil {
			return err
		}
		account, err := tx.GetAccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		if err := s.verify(req.PrehashedPassword, account); err != nil {
			return err
		}
		if err := tx.DeleteEntriesByAccount(ctx, accountID); err != nil {
			return err
		}
		return tx.DeleteAccount(ctx, accountID)
	})
	if errors.Is(err, repository.ErrAccountNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	slog.Info("account deleted", "account_id", accountID)
	return nil
}

func (s *AuthService) verify(prehash string, account *model.Account) error {
	ok, err := s.hasher.Verify(prehash, account.CredentialHash)
	if err != nil {
		return fmt.Errorf("verifying credential: %w", err)
	}
	if !ok {
		return ErrInvalidCredential
	}
	return nil
}

func toAccountResponse(a *model.Account) model.AccountResponse {
	return model.AccountResponse{
		ID:        a.ID,
		Username:  a.Username,
		CreatedAt: a.CreatedAt,
	}
}

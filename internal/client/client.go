package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vaultpass/zkvault/internal/crypto"
	"github.com/vaultpass/zkvault/internal/model"
)

// Client talks to the vault API. The master secret never leaves it: the
// server sees a pre-hash at login and ciphertext for every entry field.
// A Client is not safe for concurrent use.
type Client struct {
	baseURL  string
	http     *http.Client
	username string
	token    string
	key      []byte
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the current session token, if any.
func (c *Client) Token() string { return c.token }

// Register creates an account for username protected by secret.
func (c *Client) Register(ctx context.Context, username, secret string) error {
	req := model.CredentialRequest{Username: username, PrehashedPassword: crypto.PreHash(secret, username)}
	return c.do(ctx, http.MethodPost, "/api/v1/auth/register", req, nil)
}

// Login authenticates and derives the vault key from secret.
func (c *Client) Login(ctx context.Context, username, secret string) error {
	req := model.CredentialRequest{Username: username, PrehashedPassword: crypto.PreHash(secret, username)}

	var resp model.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", req, &resp); err != nil {
		return err
	}

	c.username = username
	c.token = resp.Token
	c.key = crypto.DeriveKey(secret)
	return nil
}

// Logout forgets the token and the derived key.
func (c *Client) Logout() {
	c.username, c.token, c.key = "", "", nil
}

// Account returns the logged-in account.
func (c *Client) Account(ctx context.Context) (model.AccountResponse, error) {
	var resp model.AccountResponse
	err := c.authed(ctx, http.MethodGet, "/api/v1/account", nil, &resp)
	return resp, err
}

// ListEntries fetches and decrypts the whole vault.
func (c *Client) ListEntries(ctx context.Context) ([]Entry, error) {
	payloads, err := c.listPayloads(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(payloads))
	for _, p := range payloads {
		e, err := OpenEntry(p, c.key)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// GetEntry fetches and decrypts one entry.
func (c *Client) GetEntry(ctx context.Context, id string) (Entry, error) {
	var p model.EntryPayload
	if err := c.authed(ctx, http.MethodGet, "/api/v1/vault/"+id, nil, &p); err != nil {
		return Entry{}, err
	}
	return OpenEntry(p, c.key)
}

// CreateEntry encrypts and stores a new entry. e.ID must be empty; the
// returned entry carries the id the server assigned.
func (c *Client) CreateEntry(ctx context.Context, e Entry) (Entry, error) {
	if c.key == nil {
		return Entry{}, ErrNotLoggedIn
	}
	p, err := SealEntry(e, c.key)
	if err != nil {
		return Entry{}, err
	}

	var created model.EntryPayload
	if err := c.authed(ctx, http.MethodPost, "/api/v1/vault", p, &created); err != nil {
		return Entry{}, err
	}
	e.ID = created.ID
	return e, nil
}

// UpdateEntry re-encrypts and replaces all fields of the entry with e.ID.
func (c *Client) UpdateEntry(ctx context.Context, e Entry) error {
	if c.key == nil {
		return ErrNotLoggedIn
	}
	p, err := SealEntry(e, c.key)
	if err != nil {
		return err
	}
	return c.authed(ctx, http.MethodPut, "/api/v1/vault/"+e.ID, p, nil)
}

// DeleteEntry removes one entry.
func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	return c.authed(ctx, http.MethodDelete, "/api/v1/vault/"+id, nil, nil)
}

// ChangePassword re-keys the vault. Every entry is decrypted under the key
// derived from oldSecret and encrypted under the key derived from newSecret,
// then submitted together with both pre-hashes. The server revokes the
// current token on success, so the client logs in again with newSecret.
func (c *Client) ChangePassword(ctx context.Context, oldSecret, newSecret string) error {
	if c.token == "" {
		return ErrNotLoggedIn
	}
	username := c.username
	oldKey := crypto.DeriveKey(oldSecret)
	newKey := crypto.DeriveKey(newSecret)

	payloads, err := c.listPayloads(ctx)
	if err != nil {
		return err
	}

	reencrypted := make([]model.EntryPayload, 0, len(payloads))
	for _, p := range payloads {
		e, err := OpenEntry(p, oldKey)
		if err != nil {
			return err
		}
		sealed, err := SealEntry(e, newKey)
		if err != nil {
			return err
		}
		reencrypted = append(reencrypted, sealed)
	}

	req := model.RotateCredentialRequest{
		OldPrehashedPassword: crypto.PreHash(oldSecret, username),
		NewPrehashedPassword: crypto.PreHash(newSecret, username),
		ReencryptedEntries:   reencrypted,
	}
	if err := c.authed(ctx, http.MethodPatch, "/api/v1/account/password", req, nil); err != nil {
		return err
	}

	return c.Login(ctx, username, newSecret)
}

// DeleteAccount removes the account and all of its entries.
func (c *Client) DeleteAccount(ctx context.Context, secret string) error {
	if c.token == "" {
		return ErrNotLoggedIn
	}
	req := model.DeleteAccountRequest{PrehashedPassword: crypto.PreHash(secret, c.username)}
	if err := c.authed(ctx, http.MethodDelete, "/api/v1/account", req, nil); err != nil {
		return err
	}
	c.Logout()
	return nil
}

func (c *Client) listPayloads(ctx context.Context) ([]model.EntryPayload, error) {
	var payloads []model.EntryPayload
	if err := c.authed(ctx, http.MethodGet, "/api/v1/vault", nil, &payloads); err != nil {
		return nil, err
	}
	return payloads, nil
}

func (c *Client) authed(ctx context.Context, method, path string, body, out any) error {
	if c.token == "" {
		return ErrNotLoggedIn
	}
	return c.do(ctx, method, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

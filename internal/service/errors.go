package service

import "errors"

var (
	ErrInvalidCredential      = errors.New("invalid username or password")
	ErrIncompleteReencryption = errors.New("re-encrypted entries do not match the vault")
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrNotFound               = errors.New("not found")

	ErrUsernameRequired  = errors.New("username is required")
	ErrPasswordRequired  = errors.New("prehashed password is required")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrEntryIDNotAllowed = errors.New("entry id is assigned by the server")
)

package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	IVSize  = aes.BlockSize
	TagSize = sha256.Size
)

var (
	ErrInvalidKeySize = errors.New("field key must be 32 bytes")
	ErrDecryption     = errors.New("decryption failed")
)

// fieldKeyInfo binds the HKDF expansion to this blob format.
var fieldKeyInfo = []byte("zkvault field cipher v1")

// EncryptedField is an opaque, base64 encoded IV || ciphertext || tag blob.
// The server stores and returns it verbatim and never learns what it holds.
type EncryptedField string

// DecryptionError reports a blob that cannot be opened under the supplied key:
// wrong key (including one of the wrong size), corrupted data or tampering.
type DecryptionError struct {
	Reason string
	Err    error
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("decryption failed: %s", e.Reason)
}

// Is lets errors.Is(err, ErrDecryption) match any *DecryptionError.
func (e *DecryptionError) Is(target error) bool {
	return target == ErrDecryption
}

func (e *DecryptionError) Unwrap() error {
	return e.Err
}

// EncryptField encrypts one entry field with AES-256-CBC under a fresh random IV.
// A nil or empty plaintext yields a nil blob, not an encryption of "".
func EncryptField(plaintext *string, key []byte) (*EncryptedField, error) {
	if plaintext == nil || *plaintext == "" {
		return nil, nil
	}

	encKey, macKey, err := splitKey(key)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("generating iv: %w", err)
	}

	padded := pkcs7Pad([]byte(*plaintext), aes.BlockSize)
	out := make([]byte, IVSize+len(padded), IVSize+len(padded)+TagSize)
	copy(out, iv)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[IVSize:], padded)

	mac := hmac.New(sha256.New, macKey)
	mac.Write(out)
	out = mac.Sum(out)

	blob := EncryptedField(base64.StdEncoding.EncodeToString(out))
	return &blob, nil
}

// DecryptField reverses EncryptField. A nil blob yields a nil plaintext.
// Any failure to authenticate or unpad is returned as a *DecryptionError.
func DecryptField(blob *EncryptedField, key []byte) (*string, error) {
	if blob == nil {
		return nil, nil
	}

	encKey, macKey, err := splitKey(key)
	if err != nil {
		return nil, &DecryptionError{Reason: "unusable key", Err: err}
	}

	raw, err := base64.StdEncoding.DecodeString(string(*blob))
	if err != nil {
		return nil, &DecryptionError{Reason: "blob is not valid base64"}
	}
	if len(raw) < IVSize+aes.BlockSize+TagSize || (len(raw)-IVSize-TagSize)%aes.BlockSize != 0 {
		return nil, &DecryptionError{Reason: "blob has invalid length"}
	}

	body, tag := raw[:len(raw)-TagSize], raw[len(raw)-TagSize:]
	mac := hmac.New(sha256.New, macKey)
	mac.Write(body)
	if !hmac.Equal(tag, mac.Sum(nil)) {
		return nil, &DecryptionError{Reason: "authentication failed"}
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	iv, ciphertext := body[:IVSize], body[IVSize:]
	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ciphertext)

	plain, err = pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return nil, &DecryptionError{Reason: err.Error()}
	}

	s := string(plain)
	return &s, nil
}

// splitKey expands the field key into independent encryption and MAC subkeys.
func splitKey(key []byte) (encKey, macKey []byte, err error) {
	if len(key) != KeySize {
		return nil, nil, ErrInvalidKeySize
	}

	sub := make([]byte, 2*KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, key, nil, fieldKeyInfo), sub); err != nil {
		return nil, nil, fmt.Errorf("expanding field key: %w", err)
	}
	return sub[:KeySize], sub[KeySize:], nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(append([]byte(nil), data...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("invalid padded length")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, errors.New("invalid padding")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errors.New("invalid padding")
		}
	}
	return data[:len(data)-n], nil
}

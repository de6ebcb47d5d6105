package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

const (
	KeySize       = 32     // AES-256 key size
	KDFIterations = 210000 // PBKDF2 iterations (OWASP minimum for SHA-256)
)

// kdfSalt is fixed and public. The same master secret has to produce the same
// key on every device without the server storing anything per account.
var kdfSalt = make([]byte, 32)

// DeriveKey turns a master secret into the symmetric key used for vault entry fields.
func DeriveKey(masterSecret string) []byte {
	return pbkdf2.Key([]byte(masterSecret), kdfSalt, KDFIterations, KeySize, sha256.New)
}

package crypto

import (
	"crypto/sha512"
	"encoding/hex"
)

// PreHashRounds is the number of SHA-512 rounds the client applies before
// sending anything derived from the master secret.
const PreHashRounds = 10000

// PreHash computes the password-equivalent the client sends in place of the
// master secret. The username acts as a public per-account salt.
func PreHash(secret, username string) string {
	sum := sha512.Sum512([]byte(secret + username))
	for i := 1; i < PreHashRounds; i++ {
		sum = sha512.Sum512(sum[:])
	}
	return hex.EncodeToString(sum[:])
}

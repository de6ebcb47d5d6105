package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	AlgorithmArgon2id = "argon2id"
	AlgorithmBcrypt   = "bcrypt"
)

var (
	ErrInvalidHashFormat   = errors.New("invalid encoded hash format")
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
	ErrUnknownAlgorithm    = errors.New("unknown credential hash algorithm")
)

// HashParams configures the Argon2id hashing parameters.
type HashParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultHashParams returns recommended Argon2id parameters for credential hashing.
func DefaultHashParams() HashParams {
	return HashParams{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// CredentialHasher is the server half of the two-stage credential scheme.
// It treats the client pre-hash as an opaque password and stores a salted,
// slow hash of it.
type CredentialHasher struct {
	Algorithm  string
	Argon      HashParams
	BcryptCost int
}

// NewCredentialHasher returns a hasher for the named algorithm. An empty name selects argon2id.
func NewCredentialHasher(algorithm string, bcryptCost int) (*CredentialHasher, error) {
	switch algorithm {
	case "", AlgorithmArgon2id:
		algorithm = AlgorithmArgon2id
	case AlgorithmBcrypt:
		if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}

	return &CredentialHasher{
		Algorithm:  algorithm,
		Argon:      DefaultHashParams(),
		BcryptCost: bcryptCost,
	}, nil
}

// Hash hashes a pre-hash with the configured algorithm.
func (h *CredentialHasher) Hash(prehash string) (string, error) {
	if h.Algorithm == AlgorithmBcrypt {
		hash, err := bcrypt.GenerateFromPassword(foldForBcrypt(prehash), h.BcryptCost)
		if err != nil {
			return "", fmt.Errorf("bcrypt: %w", err)
		}
		return string(hash), nil
	}
	return hashArgon2id(prehash, h.Argon)
}

// Verify checks a candidate pre-hash against a stored hash. The stored format
// decides the algorithm, so hashes written under a previous setting still verify.
func (h *CredentialHasher) Verify(prehash, encodedHash string) (bool, error) {
	switch {
	case strings.HasPrefix(encodedHash, "$argon2id$"):
		return verifyArgon2id(prehash, encodedHash)
	case strings.HasPrefix(encodedHash, "$2"):
		err := bcrypt.CompareHashAndPassword([]byte(encodedHash), foldForBcrypt(prehash))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, ErrInvalidHashFormat
		}
		return true, nil
	default:
		return false, ErrInvalidHashFormat
	}
}

// foldForBcrypt keeps the input under bcrypt's 72 byte limit; a hex SHA-512 pre-hash is 128 bytes.
func foldForBcrypt(prehash string) []byte {
	sum := sha256.Sum256([]byte(prehash))
	return []byte(base64.RawStdEncoding.EncodeToString(sum[:]))
}

func hashArgon2id(password string, params HashParams) (string, error) {
	salt := make([]byte, params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)

	// PHC format: $argon2id$v=19$m=65536,t=3,p=2$<base64-salt>$<base64-hash>
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		params.Memory,
		params.Iterations,
		params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

func verifyArgon2id(password, encodedHash string) (bool, error) {
	params, salt, hash, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)
	return subtle.ConstantTimeCompare(hash, candidate) == 1, nil
}

// decodeHash parses a PHC-formatted Argon2id hash string.
func decodeHash(encodedHash string) (HashParams, []byte, []byte, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}
	if version != argon2.Version {
		return HashParams{}, nil, nil, ErrIncompatibleVersion
	}

	var params HashParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}
	params.SaltLength = uint32(len(salt))

	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(hash) == 0 {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}
	params.KeyLength = uint32(len(hash))

	return params, salt, hash, nil
}

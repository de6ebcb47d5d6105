package crypto

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenIssuer   = "zkvault"
	TokenAudience = "zkvault-api"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims is the signed claim set of a session token.
type Claims struct {
	jwt.RegisteredClaims
	AccountID  string `json:"account_id"`
	Generation string `json:"generation"`
}

// TokenSigner issues and parses session tokens. It checks signature, issuer,
// audience and expiry only; whether the embedded generation is still current
// is the caller's decision.
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenSigner creates a TokenSigner using HMAC-SHA512 with the given secret.
func NewTokenSigner(secret string, ttl time.Duration) *TokenSigner {
	return &TokenSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for the account bound to the generation observed now.
func (s *TokenSigner) Issue(accountID, generation string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		AccountID:  accountID,
		Generation: generation,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse validates a token string and returns its claims.
func (s *TokenSigner) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.AccountID == "" || claims.Generation == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// NewGeneration returns a fresh, unpredictable generation marker.
func NewGeneration() string {
	return uuid.NewString()
}

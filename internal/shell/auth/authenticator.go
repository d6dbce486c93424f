// Package auth implements credential hashing and token issuance for the API.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrInvalidCredentials is returned when a password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned for expired, malformed or mis-signed tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// =============================================================================
// Authenticator
// =============================================================================

// Claims are the JWT claims carried by an issued token.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"user_id"`
}

// Config holds authenticator configuration.
type Config struct {
	// Secret is the HS256 signing secret.
	Secret string

	// TokenTTL is the lifetime of issued tokens.
	TokenTTL time.Duration

	// BcryptCost is the password hashing cost. Zero means bcrypt.DefaultCost.
	BcryptCost int
}

// Authenticator hashes credentials and issues/verifies bearer tokens.
type Authenticator struct {
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
}

// NewAuthenticator creates an authenticator from config.
func NewAuthenticator(cfg Config) (*Authenticator, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth secret must not be empty")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Authenticator{
		secret:     []byte(cfg.Secret),
		tokenTTL:   ttl,
		bcryptCost: cost,
	}, nil
}

// =============================================================================
// Passwords
// =============================================================================

// HashPassword hashes a plaintext password with bcrypt.
func (a *Authenticator) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// ComparePassword checks a plaintext password against a stored hash.
// Returns ErrInvalidCredentials on mismatch.
func (a *Authenticator) ComparePassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// =============================================================================
// Tokens
// =============================================================================

// IssueToken creates a signed bearer token for a user.
func (a *Authenticator) IssueToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a bearer token and returns the user ID it was issued for.
func (a *Authenticator) Verify(tokenString string) (uuid.UUID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}
	if claims.UserID == uuid.Nil {
		return uuid.Nil, ErrInvalidToken
	}
	return claims.UserID, nil
}

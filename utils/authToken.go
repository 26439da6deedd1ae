package utils

import (
	"errors"
	"fmt"
	"time"

	"TeleClinic/models"

	"github.com/google/uuid"
	"github.com/o1egl/paseto"
)

const (
	// AccessTokenExpiry is the default session lifetime.
	AccessTokenExpiry = 24 * time.Hour
)

var (
	ErrTokenExpired          = errors.New("token expired")
	ErrInvalidSymmetricKey   = errors.New("symmetric key must be 32 bytes long")
	ErrMalformedSessionToken = errors.New("malformed session token")
)

// TokenClaims struct represents the data in the session token.
type TokenClaims struct {
	TokenID  string      `json:"jti"`
	UserID   int64       `json:"userId"`
	Role     models.Role `json:"role"`
	IssuedAt time.Time   `json:"iat"`
	Expiry   time.Time   `json:"expiry"`
}

// SessionIssuer encrypts and validates PASETO v2 session tokens.
type SessionIssuer struct {
	key    []byte
	expiry time.Duration
	now    func() time.Time
}

// NewSessionIssuer builds an issuer around a 32 byte symmetric key.
func NewSessionIssuer(symmetricKey string, expiry time.Duration) (*SessionIssuer, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSymmetricKey, len(symmetricKey))
	}
	if expiry <= 0 {
		expiry = AccessTokenExpiry
	}
	return &SessionIssuer{key: []byte(symmetricKey), expiry: expiry, now: time.Now}, nil
}

// Expiry is the lifetime of issued tokens.
func (s *SessionIssuer) Expiry() time.Duration {
	return s.expiry
}

// Issue generates an access token for the given user and role.
func (s *SessionIssuer) Issue(userID int64, role models.Role) (string, *TokenClaims, error) {
	now := s.now()
	claims := &TokenClaims{
		TokenID:  uuid.NewString(),
		UserID:   userID,
		Role:     role,
		IssuedAt: now,
		Expiry:   now.Add(s.expiry),
	}

	token, err := paseto.NewV2().Encrypt(s.key, claims, nil)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return token, claims, nil
}

// Validate decrypts the token and checks its claims and expiry.
func (s *SessionIssuer) Validate(tokenString string) (*TokenClaims, error) {
	var claims TokenClaims
	if err := paseto.NewV2().Decrypt(tokenString, s.key, &claims, nil); err != nil {
		return nil, fmt.Errorf("failed to decrypt token: %w", err)
	}
	if claims.TokenID == "" || claims.UserID == 0 || !claims.Role.Valid() {
		return nil, ErrMalformedSessionToken
	}

	if s.now().After(claims.Expiry) {
		return nil, ErrTokenExpired
	}
	return &claims, nil
}

// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jason-s-yu/apdebate/internal/models"
)

// privateKey and publicKey are used for signing and verifying JWT tokens.
var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// tokenExpiry is how long issued tokens stay valid (0 => never).
	tokenExpiry time.Duration
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid session token")

// Session is the identity carried by a token.
type Session struct {
	Participant models.Participant
	Operator    bool
}

// Init generates a fresh ed25519 key pair at runtime. Tokens therefore do
// not survive a restart, which matches the lifetime of lobbies and rounds.
func Init(expiry time.Duration) error {
	var err error
	publicKey, privateKey, err = ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	tokenExpiry = expiry
	return nil
}

// CreateJWT signs a token with "sub" = participant id, "name" = display name
// and "op" = operator flag.
func CreateJWT(p models.Participant, operator bool) (string, error) {
	claims := jwt.MapClaims{
		"sub":  p.ID.String(),
		"name": p.Name,
		"op":   operator,
		"iat":  time.Now().Unix(),
	}
	if tokenExpiry > 0 {
		claims["exp"] = time.Now().Add(tokenExpiry).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(privateKey)
}

// AuthenticateJWT verifies a token and returns the session it describes.
func AuthenticateJWT(tokenString string) (Session, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !t.Valid {
		return Session{}, ErrInvalidToken
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, fmt.Errorf("%w: unexpected claims", ErrInvalidToken)
	}
	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return Session{}, fmt.Errorf("%w: bad sub: %w", ErrInvalidToken, err)
	}
	name, _ := claims["name"].(string)
	op, _ := claims["op"].(bool)

	return Session{Participant: models.Participant{ID: id, Name: name}, Operator: op}, nil
}

package auth

import (
	"errors"
	"time"

	apperrors "chat-relay/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims defines the structure of the data stored inside the JWT.
// UserID is the durable identity key a WebSocket connection adopts after
// in-band binding; Authorities keeps its issuance order.
type Claims struct {
	UserID      int      `json:"id"`
	Name        string   `json:"name"`
	Authorities []string `json:"authorities"`
	jwt.RegisteredClaims
}

// JTI returns the unique token identifier used as the revocation key.
func (c *Claims) JTI() string {
	return c.RegisteredClaims.ID
}

// Codec signs and verifies identity tokens with a symmetric key.
// It is stateless: revocation is a separate concern composed by Verifier.
type Codec struct {
	key    []byte
	issuer string
}

// NewCodec builds a Codec from the configured signing key.
// A missing key is a startup misconfiguration and must be fatal.
func NewCodec(key []byte, issuer string) (*Codec, error) {
	if len(key) == 0 {
		return nil, apperrors.ErrMissingSigningKey
	}
	return &Codec{key: key, issuer: issuer}, nil
}

// Issue creates a signed JWT carrying the identity claims, a fresh jti and
// an expiry of now + ttl.
func (c *Codec) Issue(userID int, name string, authorities []string, ttl time.Duration) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		UserID:      userID,
		Name:        name,
		Authorities: authorities,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    c.issuer,
		},
	}

	// HS256 (HMAC with SHA256), same algorithm on both sides of the codec.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Verify checks the signature and expiry of a token string and returns its
// claims. Failures are mapped to the sentinel errors so callers can tell a
// malformed token from a bad signature or natural expiry. Revocation is not
// consulted here.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return c.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, apperrors.ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, apperrors.ErrTokenExpired
		default:
			return nil, apperrors.ErrTokenSignature
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrTokenSignature
	}
	return claims, nil
}

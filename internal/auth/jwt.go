// Package auth implements the per-user asymmetric token scheme: every user
// owns an RSA keypair, tokens are signed client-side with the private key
// and verified server-side against the stored public key. Because there is
// no shared verification secret, token handling is an explicit two-phase
// pipeline: an unverified peek that extracts the subject purely to select
// the right public key, followed by an authoritative verification against
// that key.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidSigningKey is returned when the supplied private key PEM
	// cannot be parsed.
	ErrInvalidSigningKey = errors.New("invalid signing key")

	// ErrInvalidVerifyingKey is returned when a stored public key PEM
	// cannot be parsed.
	ErrInvalidVerifyingKey = errors.New("invalid verifying key")

	// ErrTokenInvalid is returned when a token fails authoritative
	// verification for any reason other than expiry.
	ErrTokenInvalid = errors.New("invalid token")
)

// SessionClaims is the payload of a session token. It only ever exists
// inside a signed token and is never persisted.
type SessionClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// SubjectID returns the user id carried by the claims, preferring the
// user_id claim and falling back to the registered subject.
func (c *SessionClaims) SubjectID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.RegisteredClaims.Subject
}

// Authenticator issues and validates RS512 session tokens.
type Authenticator struct {
	issuer string
}

// NewAuthenticator creates a new Authenticator instance.
func NewAuthenticator(issuer string) Authenticator {
	return Authenticator{issuer: issuer}
}

// IssueToken builds a session token for the given user id, signed with the
// user's private key. The token expires ttl from now. It is a pure
// function of its inputs and the current time.
func (a Authenticator) IssueToken(userID string, privateKeyPEM []byte, ttl time.Duration) (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSigningKey, err)
	}

	now := time.Now()
	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodRS512, claims).SignedString(key)
}

// PeekSubject decodes the token's claims without verifying the signature
// or expiry and returns the subject. The result is untrusted and must be
// used for nothing but selecting the public key to verify against.
func (a Authenticator) PeekSubject(tokenString string) (string, error) {
	claims := &SessionClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return "", err
	}
	return claims.SubjectID(), nil
}

// VerifyToken is the authoritative validation step: it checks the RS512
// signature against the supplied public key and enforces expiry. Expired
// tokens fail with an error matching jwt.ErrTokenExpired.
func (a Authenticator) VerifyToken(tokenString string, publicKeyPEM []byte) (*SessionClaims, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVerifyingKey, err)
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS512.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

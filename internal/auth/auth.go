// ABOUTME: Authentication sources that report the signed-in subject.
// ABOUTME: Restores only proceed for the subject that owns the requested data.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

// ErrNoSession means no user is signed in.
var ErrNoSession = errors.New("no authenticated session")

// Authenticator reports the current external-auth subject id.
type Authenticator interface {
	Subject(ctx context.Context) (string, error)
}

// Static is a fixed subject. The empty string means signed out.
type Static string

// Subject returns the fixed subject or ErrNoSession.
func (s Static) Subject(context.Context) (string, error) {
	if s == "" {
		return "", ErrNoSession
	}
	return string(s), nil
}

// TokenAuthenticator validates an HS256 session token and uses its sub claim.
type TokenAuthenticator struct {
	Token  string
	Secret []byte
}

// NewTokenAuthenticator builds a TokenAuthenticator from a token and shared secret.
func NewTokenAuthenticator(token, secret string) *TokenAuthenticator {
	return &TokenAuthenticator{Token: token, Secret: []byte(secret)}
}

// Subject parses and verifies the token.
func (a *TokenAuthenticator) Subject(context.Context) (string, error) {
	if a.Token == "" {
		return "", ErrNoSession
	}
	if len(a.Secret) == 0 {
		return "", fmt.Errorf("%w: no signing secret configured", ErrNoSession)
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(a.Token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.Secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrNoSession)
	}
	return claims.Subject, nil
}

// IssueToken signs an HS256 token for subject. Used by tooling and tests.
func IssueToken(subject, secret string, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = subject
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

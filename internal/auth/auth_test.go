// ABOUTME: Tests for static and token authenticators.
// ABOUTME: Tokens are signed locally with a test secret.
package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	sub, err := Static("user-1").Subject(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)

	_, err = Static("").Subject(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestTokenAuthenticator(t *testing.T) {
	ctx := context.Background()
	valid, err := IssueToken("user-1", "s3cret", jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	require.NoError(t, err)
	expired, err := IssueToken("user-1", "s3cret", jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	require.NoError(t, err)
	noSubject, err := IssueToken("", "s3cret", jwt.RegisteredClaims{})
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		secret  string
		want    string
		wantErr bool
	}{
		{"valid", valid, "s3cret", "user-1", false},
		{"wrong secret", valid, "other", "", true},
		{"expired", expired, "s3cret", "", true},
		{"no subject", noSubject, "s3cret", "", true},
		{"garbage", "not.a.token", "s3cret", "", true},
		{"empty token", "", "s3cret", "", true},
		{"no secret", valid, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := NewTokenAuthenticator(tt.token, tt.secret).Subject(ctx)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoSession)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, sub)
		})
	}
}

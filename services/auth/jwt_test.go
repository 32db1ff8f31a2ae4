package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flashxship-api/models"
)

// Token generation and validation are offline operations; no database is
// involved until refresh tokens come into play.

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewService("test-secret", "flashxship", nil)
	user := models.AuthUser{ID: 42, Username: "marie", Email: "marie@example.com", IsStaff: true}

	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)

	got, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user, *got)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issuer := NewService("secret-a", "flashxship", nil)
	verifier := NewService("secret-b", "flashxship", nil)

	token, err := issuer.GenerateAccessToken(models.AuthUser{ID: 1, Username: "a"})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewService("test-secret", "flashxship", nil)

	now := time.Now().Add(-2 * time.Hour)
	claims := Claims{
		UserID:   1,
		Username: "old",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "flashxship",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewService("test-secret", "flashxship", nil)
	_, err := svc.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

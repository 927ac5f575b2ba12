package utils

import (
	"testing"
	"time"

	"jios-backend/pkg/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTServiceRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, exp, err := svc.GenerateAccessToken("user-1", "a@example.com", time.Hour)
	require.NoError(t, err)
	assert.Greater(t, exp, time.Now().Unix())

	user, err := svc.ExtractUserFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "a@example.com", user.Email)
}

func TestJWTServiceRejects(t *testing.T) {
	svc := NewJWTService("test-secret")

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService("other-secret")
		token, _, err := other.GenerateAccessToken("user-1", "", 0)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewJWTService("test-secret")
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, _, err := past.GenerateAccessToken("user-1", "", time.Minute)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("refresh token", func(t *testing.T) {
		claims := &models.TokenClaims{
			UserID: "user-1",
			Type:   "refresh",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrTokenType)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("missing user", func(t *testing.T) {
		_, _, err := svc.GenerateAccessToken("", "", time.Minute)
		assert.Error(t, err)
	})
}

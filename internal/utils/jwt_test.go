package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signRoomToken(t *testing.T, secret, roomID, userID string, expiry time.Duration) string {
	t.Helper()
	claims := RoomTokenClaims{
		RoomID: roomID,
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateRoomToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	signed := signRoomToken(t, "test-secret", "room-1", "hr-42", time.Hour)
	claims, err := ValidateRoomToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "room-1", claims.RoomID)
	assert.Equal(t, "hr-42", claims.UserID)
}

func TestValidateRoomTokenWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	signed := signRoomToken(t, "other-secret", "room-1", "hr-42", time.Hour)
	_, err := ValidateRoomToken(signed)
	assert.Error(t, err)
}

func TestValidateRoomTokenExpired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	signed := signRoomToken(t, "test-secret", "room-1", "hr-42", -time.Minute)
	_, err := ValidateRoomToken(signed)
	assert.Error(t, err)
}

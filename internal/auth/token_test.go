package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studiofinder_backend/internal/models"
	"studiofinder_backend/pkg/apperrors"
)

func testUser() *models.User {
	u := &models.User{Role: models.UserRoleStudioOwner, Status: models.UserStatusActive}
	u.ID = "user-1"
	return u
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, err := m.Generate(testUser())
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.UserRoleStudioOwner, claims.Role)
	assert.Equal(t, models.UserStatusActive, claims.Status)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret", time.Hour).Generate(testUser())
	require.NoError(t, err)

	_, err = NewTokenManager("other", time.Hour).Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := m.Generate(testUser())
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "user-1"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour).Parse(signed)
	assert.Error(t, err)
}

func TestPasswordHelpers(t *testing.T) {
	assert.ErrorIs(t, ValidatePassword("short"), apperrors.ErrWeakPassword)
	assert.NoError(t, ValidatePassword("long-enough"))

	hash, err := HashPassword("long-enough")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("long-enough", hash))
	assert.False(t, CheckPasswordHash("wrong-pass", hash))
}

package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	token, err := m.GenerateToken(7, "ops@acme.io", "Acme", "company")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "ops@acme.io", claims.Email)
	assert.Equal(t, "company", claims.Role)
	assert.Equal(t, "7", claims.Subject)
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager("secret", -time.Minute)
	token, err := m.GenerateToken(1, "a@b.c", "A", "admin")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)

	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	token, err := NewJWTManager("one", time.Hour).GenerateToken(1, "a@b.c", "A", "admin")
	require.NoError(t, err)

	_, err = NewJWTManager("two", time.Hour).ValidateToken(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.True(t, IsHashed(hash))

	assert.True(t, CheckPassword("s3cret", hash))
	assert.False(t, CheckPassword("wrong", hash))

	// открытый текст из старых записей
	assert.True(t, CheckPassword("plain", "plain"))
	assert.False(t, CheckPassword("plain", "other"))
	assert.False(t, CheckPassword("", ""))
}

func TestJWTManager_TokenDuration(t *testing.T) {
	manager := NewJWTManager("test-secret", 90*time.Minute)

	assert.Equal(t, 90*time.Minute, manager.TokenDuration())
}

package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenVerifierRoundTrip(t *testing.T) {
	v := NewTokenVerifier("test-secret", "authenticated")
	userID := uuid.New()

	token, err := v.Sign(userID, "shopper@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := v.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "shopper@example.com", claims.Email)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, id)
}

func TestTokenVerifierRejectsOtherSecret(t *testing.T) {
	token, err := NewTokenVerifier("a", "authenticated").Sign(uuid.New(), "x@example.com", time.Hour)
	require.NoError(t, err)

	_, err = NewTokenVerifier("b", "authenticated").Validate(token)
	assert.Error(t, err)
}

func TestTokenVerifierRejectsExpired(t *testing.T) {
	v := NewTokenVerifier("secret", "authenticated")
	token, err := v.Sign(uuid.New(), "x@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = v.Validate(token)
	assert.Error(t, err)
}

func TestTokenVerifierRejectsWrongAudience(t *testing.T) {
	token, err := NewTokenVerifier("secret", "anon").Sign(uuid.New(), "x@example.com", time.Hour)
	require.NoError(t, err)

	_, err = NewTokenVerifier("secret", "authenticated").Validate(token)
	assert.Error(t, err)
}

func TestTokenVerifierUnconfigured(t *testing.T) {
	_, err := NewTokenVerifier("", "authenticated").Validate("anything")
	assert.Error(t, err)
}

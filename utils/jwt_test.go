package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	token, err := GenerateJWT("secret", "user-1", "customer")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "customer", claims.Role)
	assert.Greater(t, claims.ExpiresAt, int64(0))
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	token, err := GenerateJWT("secret", "user-1", "customer")
	require.NoError(t, err)

	_, err = ValidateJWT("other-secret", token)
	assert.Error(t, err)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	_, err := ValidateJWT("secret", "not.a.token")
	assert.Error(t, err)
}

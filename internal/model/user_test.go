package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserPassword(t *testing.T) {
	user := &User{Email: "jane@example.com", Name: "Jane"}
	require.NoError(t, user.SetPassword("hunter22"))

	assert.True(t, user.HasPassword())
	assert.NotEqual(t, "hunter22", user.Password)
	assert.True(t, user.CheckPassword("hunter22"))
	assert.False(t, user.CheckPassword("wrong"))
}

func TestUserWithoutPassword(t *testing.T) {
	// Google-only accounts store no hash; any password check must fail
	// rather than match the empty string.
	user := &User{Email: "jane@example.com", AuthProvider: AuthProviderGoogle}

	assert.False(t, user.HasPassword())
	assert.False(t, user.CheckPassword(""))
	assert.False(t, user.CheckPassword("anything"))
}

func TestUserToResponseOmitsSecrets(t *testing.T) {
	user := &User{Email: "jane@example.com", Name: "Jane", AuthProvider: AuthProviderLocal}
	require.NoError(t, user.SetPassword("hunter22"))

	resp := user.ToResponse()
	assert.Equal(t, user.Email, resp.Email)
	assert.Equal(t, user.Name, resp.Name)
	assert.Equal(t, AuthProviderLocal, resp.AuthProvider)
}

func TestRiskLevelIsValid(t *testing.T) {
	assert.True(t, RiskLow.IsValid())
	assert.True(t, RiskMedium.IsValid())
	assert.True(t, RiskHigh.IsValid())
	assert.False(t, RiskLevel("SEVERE").IsValid())
	assert.False(t, RiskLevel("").IsValid())
}

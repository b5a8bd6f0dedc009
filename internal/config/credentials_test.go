package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revenuecast/pkg/errors"
)

func setAllCredentialVars(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_NAME", "saas_metrics")
	t.Setenv("DB_USER", "pipeline")
	t.Setenv("DB_PASS", "secret")
}

func TestResolveCredentials(t *testing.T) {
	setAllCredentialVars(t)

	creds, err := ResolveCredentials()
	require.NoError(t, err)

	assert.Equal(t, "localhost", creds.Host)
	assert.Equal(t, "5432", creds.Port)
	assert.Equal(t, "saas_metrics", creds.DBName)
	assert.Equal(t, "pipeline", creds.User)
	assert.Equal(t, "secret", creds.Password)
}

func TestResolveCredentialsMissingVariable(t *testing.T) {
	setAllCredentialVars(t)
	t.Setenv("DB_PORT", "")

	creds, err := ResolveCredentials()
	require.Error(t, err)
	assert.Nil(t, creds)
	assert.Equal(t, errors.ErrCodeConfigMissing, errors.GetErrorCode(err))

	appErr := err.(*errors.AppError)
	assert.Equal(t, "DB_PORT", appErr.Context["missing"])
}

func TestResolveCredentialsReportsAllMissing(t *testing.T) {
	for _, name := range credentialVars {
		t.Setenv(name, "")
	}

	_, err := ResolveCredentials()
	require.Error(t, err)

	appErr := err.(*errors.AppError)
	assert.Equal(t, "DB_HOST, DB_PORT, DB_NAME, DB_USER, DB_PASS", appErr.Context["missing"])
}

func TestResolveCredentialsInvalidPort(t *testing.T) {
	setAllCredentialVars(t)
	t.Setenv("DB_PORT", "not-a-port")

	_, err := ResolveCredentials()
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetErrorCode(err))
}

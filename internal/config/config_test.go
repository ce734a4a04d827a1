package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBackendEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CONSOLE_BACKENDS_AUTH_BASE_URL", "http://auth.internal")
	t.Setenv("CONSOLE_BACKENDS_DATA_BASE_URL", "http://data.internal")
	t.Setenv("CONSOLE_BACKENDS_RECORDING_BASE_URL", "http://recording.internal")
}

func TestLoad_DefaultsWithEnvBackends(t *testing.T) {
	setBackendEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8180", cfg.Server.ListenAddr)
	assert.Equal(t, "http://auth.internal", cfg.Backends.Auth.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Backends.Data.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Backends.LoginTimeout)
	assert.Equal(t, "token", cfg.Session.CookieName)
	assert.Equal(t, 30*time.Minute, cfg.Session.CookieTTL)
	assert.Equal(t, 3, cfg.Session.MaxAuthRetries)
}

func TestLoad_MissingBackendURLFails(t *testing.T) {
	t.Setenv("CONSOLE_BACKENDS_AUTH_BASE_URL", "http://auth.internal")
	t.Setenv("CONSOLE_BACKENDS_DATA_BASE_URL", "http://data.internal")
	t.Setenv("CONSOLE_BACKENDS_RECORDING_BASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recording")
}

func TestValidate_DistinctCookieNames(t *testing.T) {
	setBackendEnv(t)
	t.Setenv("CONSOLE_SESSION_ACCESS_COOKIE_NAME", "token")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "distinct")
}

func TestValidate_NegativeRetriesRejected(t *testing.T) {
	setBackendEnv(t)
	t.Setenv("CONSOLE_SESSION_MAX_AUTH_RETRIES", "-1")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_auth_retries")
}

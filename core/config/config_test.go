package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MICROSOFT_CLIENT_ID", "client-id")
	t.Setenv("MICROSOFT_CLIENT_SECRET", "client-secret")
	t.Setenv("BACKEND_BASE_URL", "http://localhost:7070")
}

func TestLoad(t *testing.T) {
	t.Run("fails fast without required values", func(t *testing.T) {
		t.Setenv("MICROSOFT_CLIENT_ID", "")
		t.Setenv("MICROSOFT_CLIENT_SECRET", "")
		t.Setenv("BACKEND_BASE_URL", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MICROSOFT_CLIENT_ID")
	})

	t.Run("loads with defaults", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 7070, cfg.Server.Port)
		assert.Equal(t, "common", cfg.Microsoft.Tenant)
		assert.Equal(t, "https://graph.microsoft.com/v1.0", cfg.Microsoft.BasePath)
		assert.Equal(t, "auth/microsoft/callback", cfg.Microsoft.RedirectPath)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	})

	t.Run("state secret falls back to client secret", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("STATE_SIGNING_SECRET", "")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "client-secret", cfg.Crypto.StateSecret)
	})

	t.Run("redirect URI joins base url and path", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:7070/auth/microsoft/callback", cfg.Microsoft.RedirectURI())
	})

	t.Run("GetSafe reflects the loaded instance", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		got, ok := GetSafe()
		require.True(t, ok)
		assert.Equal(t, cfg, got)
	})
}

package outlook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"go-outlook-starter/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/oauth2"
)

func TestAuthCodeURL(t *testing.T) {
	m := NewTokenManager(config.MicrosoftConfig{
		ClientID:       "client-id",
		ClientSecret:   "client-secret",
		Tenant:         "common",
		BackendBaseURL: "http://localhost:7070",
		RedirectPath:   "auth/microsoft/callback",
	})

	raw := m.AuthCodeURL("signed-state")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	q := parsed.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "signed-state", q.Get("state"))
	assert.Equal(t, "http://localhost:7070/auth/microsoft/callback", q.Get("redirect_uri"))
	assert.Contains(t, q.Get("scope"), "offline_access")
	assert.Contains(t, q.Get("scope"), "Calendars.ReadWrite")
	assert.Contains(t, q.Get("scope"), "Mail.Send")
}

func refreshManager(tokenURL string) *TokenManager {
	return &TokenManager{oauth: oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Scopes:       defaultScopes,
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
	}}
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("reports expires_in verbatim", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
			assert.Equal(t, "old-refresh", r.Form.Get("refresh_token"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"new-access","refresh_token":"new-refresh","expires_in":1234}`))
		}))
		defer srv.Close()

		pair, err := refreshManager(srv.URL).Refresh(ctx, "old-refresh")
		require.NoError(t, err)
		assert.Equal(t, "new-access", pair.AccessToken)
		assert.Equal(t, "new-refresh", pair.RefreshToken)
		assert.EqualValues(t, 1234, pair.ExpiresIn)
	})

	t.Run("keeps the old refresh token when not rotated", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"new-access","expires_in":3600}`))
		}))
		defer srv.Close()

		pair, err := refreshManager(srv.URL).Refresh(ctx, "old-refresh")
		require.NoError(t, err)
		assert.Equal(t, "old-refresh", pair.RefreshToken)
	})

	t.Run("token endpoint errors propagate", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant","error_description":"expired"}`))
		}))
		defer srv.Close()

		_, err := refreshManager(srv.URL).Refresh(ctx, "old-refresh")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid_grant")
	})

	t.Run("missing access token is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		_, err := refreshManager(srv.URL).Refresh(ctx, "old-refresh")
		assert.Error(t, err)
	})
}

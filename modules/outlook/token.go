package outlook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go-outlook-starter/core/config"
	"go-outlook-starter/core/constants"
	"go-outlook-starter/core/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

var defaultScopes = []string{
	"offline_access",
	"User.Read",
	"Calendars.ReadWrite",
	"Mail.Send",
}

// TokenPair is what the token endpoint hands back. ExpiresIn is in seconds;
// zero means the endpoint did not say and callers should assume the default.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// TokenRefresher exchanges a refresh token for a fresh pair.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}

// TokenManager drives the Microsoft identity platform: authorization URLs,
// code exchange and refresh-token grants.
type TokenManager struct {
	oauth oauth2.Config
}

func NewTokenManager(cfg config.MicrosoftConfig) *TokenManager {
	return &TokenManager{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI(),
			Scopes:       defaultScopes,
			Endpoint:     microsoft.AzureADEndpoint(cfg.Tenant),
		},
	}
}

// AuthCodeURL builds the Microsoft login URL for the given signed state.
func (m *TokenManager) AuthCodeURL(state string) string {
	return m.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token pair.
func (m *TokenManager) Exchange(ctx context.Context, code string) (*TokenPair, error) {
	token, err := m.oauth.Exchange(ctx, code)
	if err != nil {
		logger.Error("TokenManager:Exchange:Error", "error", err)
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	expiresIn := int64(0)
	if !token.Expiry.IsZero() {
		expiresIn = int64(time.Until(token.Expiry).Seconds())
	}

	return &TokenPair{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

// Refresh calls the token endpoint directly so expires_in can be reported
// verbatim to the caller.
func (m *TokenManager) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	data := url.Values{}
	data.Set("client_id", m.oauth.ClientID)
	data.Set("client_secret", m.oauth.ClientSecret)
	data.Set("refresh_token", refreshToken)
	data.Set("grant_type", "refresh_token")
	data.Set("scope", strings.Join(m.oauth.Scopes, " "))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.oauth.Endpoint.TokenURL,
		strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := &http.Client{Timeout: constants.DefaultTimeout}
	resp, err := client.Do(req)
	if err != nil {
		logger.Error("TokenManager:Refresh:Do:Error", "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	var result struct {
		AccessToken      string `json:"access_token"`
		RefreshToken     string `json:"refresh_token"`
		ExpiresIn        int64  `json:"expires_in"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logger.Error("TokenManager:Refresh:Decode:Error", "error", err)
		return nil, err
	}

	if result.Error != "" {
		logger.Error("TokenManager:Refresh:TokenEndpointError",
			"error", result.Error, "description", result.ErrorDescription)
		return nil, fmt.Errorf("token refresh error: %s - %s", result.Error, result.ErrorDescription)
	}
	if result.AccessToken == "" {
		return nil, fmt.Errorf("no access_token in refresh response")
	}

	// Microsoft keeps the old refresh token valid when it does not rotate.
	if result.RefreshToken == "" {
		result.RefreshToken = refreshToken
	}

	return &TokenPair{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
	}, nil
}

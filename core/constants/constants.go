package constants

import "time"

const (
	// DefaultTimeout bounds every outbound Graph call.
	DefaultTimeout = 30 * time.Second

	// MockUserID stands in for a real authenticated user. This is a sample
	// application; all controllers act on behalf of this user.
	MockUserID int64 = 1

	// DefaultTokenExpirySeconds is assumed when the token endpoint omits
	// expires_in.
	DefaultTokenExpirySeconds = 3600

	// TokenRefreshLeeway is subtracted from the token expiry both when
	// deciding whether a stored token is still usable and when scheduling
	// the background refresh task.
	TokenRefreshLeeway = 5 * time.Minute

	// RedisKeyOAuthState prefixes pending OAuth state nonces.
	RedisKeyOAuthState = "oauth:state:"

	// OAuthStateTTL is how long a login URL remains redeemable.
	OAuthStateTTL = 10 * time.Minute

	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
)

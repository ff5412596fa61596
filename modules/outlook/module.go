package outlook

import (
	"go-outlook-starter/core/config"
)

// Integration bundles the Graph client and token manager that the calendar,
// email and auth modules share.
type Integration struct {
	Client Client
	Tokens *TokenManager
}

func NewIntegration(cfg config.MicrosoftConfig) *Integration {
	return &Integration{
		Client: NewClient(cfg),
		Tokens: NewTokenManager(cfg),
	}
}

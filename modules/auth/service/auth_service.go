package service

import (
	"context"

	"go-outlook-starter/core/cache"
	"go-outlook-starter/core/constants"
	"go-outlook-starter/core/errors"
	"go-outlook-starter/core/eventbus"
	"go-outlook-starter/core/logger"
	"go-outlook-starter/core/utils"
	"go-outlook-starter/modules/outlook"
)

// TokenExchanger is the slice of the Outlook token manager the auth flow
// uses.
type TokenExchanger interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*outlook.TokenPair, error)
}

type AuthService interface {
	// GetMicrosoftAuthURL builds a Microsoft login URL carrying a fresh
	// one-time state. Nothing is persisted about the user at this point.
	GetMicrosoftAuthURL(ctx context.Context) (string, *errors.AppError)
	// HandleMicrosoftCallback validates the state, exchanges the code and
	// publishes the token pair to the rest of the application.
	HandleMicrosoftCallback(ctx context.Context, code, state string) (*CallbackResult, *errors.AppError)
}

type CallbackResult struct {
	UserID         int64  `json:"user_id"`
	ExternalUserID string `json:"external_user_id"`
	Email          string `json:"email"`
}

type authService struct {
	tokens      TokenExchanger
	graph       outlook.Client
	bus         eventbus.Bus
	cache       cache.Cache
	stateSecret string
}

func NewAuthService(
	tokens TokenExchanger,
	graph outlook.Client,
	bus eventbus.Bus,
	stateCache cache.Cache,
	stateSecret string,
) AuthService {
	return &authService{
		tokens:      tokens,
		graph:       graph,
		bus:         bus,
		cache:       stateCache,
		stateSecret: stateSecret,
	}
}

func (s *authService) GetMicrosoftAuthURL(ctx context.Context) (string, *errors.AppError) {
	nonce := utils.GenerateRandomString(32)

	if err := s.cache.SaveOAuthState(ctx, nonce); err != nil {
		return "", errors.NewAppError(errors.ErrInternalServer, "failed to store login state", err)
	}

	state, err := utils.SignState(nonce, s.stateSecret)
	if err != nil {
		logger.Error("AuthService:GetMicrosoftAuthURL:Sign:Error", "error", err)
		return "", errors.NewAppError(errors.ErrInternalServer, "failed to sign login state", err)
	}

	url := s.tokens.AuthCodeURL(state)
	logger.Info("AuthService:GetMicrosoftAuthURL:Issued")
	return url, nil
}

// HandleMicrosoftCallback runs the full post-login sequence: state check,
// code exchange, profile fetch, then the two authentication events. The
// tokens-save handlers persist credentials; their failure fails the callback
// so the user sees that the connection did not stick.
func (s *authService) HandleMicrosoftCallback(ctx context.Context, code, state string) (*CallbackResult, *errors.AppError) {
	if code == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "missing authorization code", nil)
	}

	nonce, err := utils.ParseState(state, s.stateSecret)
	if err != nil {
		logger.Warn("AuthService:HandleMicrosoftCallback:BadState", "error", err)
		return nil, errors.NewAppError(errors.ErrUnauthorized, "invalid OAuth state", err)
	}
	known, err := s.cache.ConsumeOAuthState(ctx, nonce)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to verify login state", err)
	}
	if !known {
		logger.Warn("AuthService:HandleMicrosoftCallback:UnknownState")
		return nil, errors.NewAppError(errors.ErrUnauthorized, "expired or replayed OAuth state", nil)
	}

	pair, err := s.tokens.Exchange(ctx, code)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "failed to exchange authorization code", err)
	}

	profile, err := s.graph.GetProfile(ctx, pair.AccessToken)
	if err != nil {
		logger.Error("AuthService:HandleMicrosoftCallback:GetProfile:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load Microsoft profile", err)
	}

	userID := constants.MockUserID

	if err := s.bus.Publish(ctx, outlook.EventTokensSave, outlook.TokensSavePayload{
		LocalUserID:    userID,
		ExternalUserID: profile.ID,
		Email:          profile.Email(),
		AccessToken:    pair.AccessToken,
		RefreshToken:   pair.RefreshToken,
		ExpiresIn:      pair.ExpiresIn,
	}); err != nil {
		logger.Error("AuthService:HandleMicrosoftCallback:TokensSave:Error", "user_id", userID, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to store Outlook credentials", err)
	}

	// Best-effort notification; handler failures are logged by the bus.
	_ = s.bus.Publish(ctx, outlook.EventUserAuthenticated, outlook.UserAuthenticatedPayload{
		LocalUserID:    userID,
		ExternalUserID: profile.ID,
		Email:          profile.Email(),
	})

	logger.Info("AuthService:HandleMicrosoftCallback:Success",
		"user_id", userID, "external_user_id", profile.ID)

	return &CallbackResult{
		UserID:         userID,
		ExternalUserID: profile.ID,
		Email:          profile.Email(),
	}, nil
}

package tasks

import (
	"context"
	"encoding/json"

	"go-outlook-starter/core/logger"

	"github.com/hibiken/asynq"
)

// TypeTokenRefresh proactively refreshes a user's Outlook tokens shortly
// before they expire, so the synchronous request paths rarely pay for a
// refresh round-trip.
const TypeTokenRefresh = "calendar:token_refresh"

type TokenRefreshPayload struct {
	UserID int64 `json:"user_id"`
}

func NewTokenRefreshTask(userID int64) (*asynq.Task, error) {
	payload, err := json.Marshal(TokenRefreshPayload{UserID: userID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeTokenRefresh, payload), nil
}

// TokenRefresher is implemented by the calendar service.
type TokenRefresher interface {
	RefreshUserTokens(ctx context.Context, userID int64) error
}

type TokenRefreshHandler struct {
	refresher TokenRefresher
}

func NewTokenRefreshHandler(refresher TokenRefresher) *TokenRefreshHandler {
	return &TokenRefreshHandler{refresher: refresher}
}

func (h *TokenRefreshHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload TokenRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logger.Error("TokenRefreshHandler:ProcessTask:Unmarshal:Error", "error", err)
		return err
	}

	logger.Info("TokenRefreshHandler:ProcessTask:Start", "user_id", payload.UserID)
	return h.refresher.RefreshUserTokens(ctx, payload.UserID)
}

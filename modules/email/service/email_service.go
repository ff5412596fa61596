package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"

	"go-outlook-starter/core/errors"
	"go-outlook-starter/core/eventbus"
	"go-outlook-starter/core/logger"
	"go-outlook-starter/core/storage"
	"go-outlook-starter/modules/email/dto"
	"go-outlook-starter/modules/outlook"
)

// TokenProvider yields a fresh delegated access token for the user. The
// calendar service implements it on top of the stored binding.
type TokenProvider interface {
	AccessToken(ctx context.Context, userID int64) (string, *errors.AppError)
}

type EmailService interface {
	// SendEmail sends one HTML mail as the connected Outlook account.
	SendEmail(ctx context.Context, userID int64, req *dto.SendEmailRequest) (*dto.SendEmailResponse, *errors.AppError)
	// Subscribe registers the message lifecycle logging handlers.
	Subscribe(bus eventbus.Bus)
}

type emailService struct {
	graph       outlook.Client
	tokens      TokenProvider
	attachments storage.AttachmentStore
}

func NewEmailService(
	graph outlook.Client,
	tokens TokenProvider,
	attachments storage.AttachmentStore,
) EmailService {
	return &emailService{
		graph:       graph,
		tokens:      tokens,
		attachments: attachments,
	}
}

func (s *emailService) Subscribe(bus eventbus.Bus) {
	bus.Subscribe(outlook.EventEmailReceived, "email.log", s.handleMessageNotification)
	bus.Subscribe(outlook.EventEmailUpdated, "email.log", s.handleMessageNotification)
	bus.Subscribe(outlook.EventEmailDeleted, "email.log", s.handleMessageNotification)
}

// SendEmail resolves the user's delegated token (which also asserts an
// active Outlook binding exists), then performs exactly one Graph send.
func (s *emailService) SendEmail(ctx context.Context, userID int64, req *dto.SendEmailRequest) (*dto.SendEmailResponse, *errors.AppError) {
	accessToken, appErr := s.tokens.AccessToken(ctx, userID)
	if appErr != nil {
		return nil, appErr
	}

	attachments, appErr := s.resolveAttachments(ctx, req.Attachments)
	if appErr != nil {
		return nil, appErr
	}

	message := &outlook.Message{
		Subject: req.Subject,
		Body: outlook.ItemBody{
			ContentType: "html",
			Content:     req.Body,
		},
		ToRecipients: []outlook.Recipient{
			{EmailAddress: outlook.EmailAddress{Address: req.To}},
		},
		Attachments: attachments,
	}

	if err := s.graph.SendMail(ctx, accessToken, message); err != nil {
		logger.Error("EmailService:SendEmail:Graph:Error", "user_id", userID, "to", req.To, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to send email", err)
	}

	logger.Info("EmailService:SendEmail:Success",
		"user_id", userID, "to", req.To, "subject", req.Subject, "attachments", len(attachments))
	return &dto.SendEmailResponse{Success: true}, nil
}

// resolveAttachments fetches each object-store key and encodes it as a Graph
// fileAttachment. A missing store with requested attachments is a client
// error, not a silent drop.
func (s *emailService) resolveAttachments(ctx context.Context, keys []string) ([]outlook.FileAttachment, *errors.AppError) {
	if len(keys) == 0 {
		return nil, nil
	}
	if s.attachments == nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "attachments are not enabled", nil)
	}

	out := make([]outlook.FileAttachment, 0, len(keys))
	for _, key := range keys {
		content, err := s.attachments.Fetch(ctx, key)
		if err != nil {
			logger.Error("EmailService:resolveAttachments:Fetch:Error", "key", key, "error", err)
			return nil, errors.NewAppError(errors.ErrInternalServer, fmt.Sprintf("failed to fetch attachment %s", key), err)
		}
		out = append(out, outlook.FileAttachment{
			ODataType:    "#microsoft.graph.fileAttachment",
			Name:         path.Base(key),
			ContentBytes: base64.StdEncoding.EncodeToString(content),
		})
	}
	return out, nil
}

func (s *emailService) handleMessageNotification(ctx context.Context, evt eventbus.Event) error {
	notification, ok := evt.Payload.(outlook.ChangeNotification)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", evt.Payload, evt.Kind)
	}

	logger.Info("EmailService:MessageNotification",
		"kind", string(evt.Kind),
		"change_type", notification.ChangeType,
		"resource", notification.Resource,
		"resource_id", notification.ResourceData.ID,
	)
	return nil
}

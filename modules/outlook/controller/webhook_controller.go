package controller

import (
	"net/http"
	"strings"

	"go-outlook-starter/core/controller"
	"go-outlook-starter/core/errors"
	"go-outlook-starter/core/eventbus"
	"go-outlook-starter/core/logger"
	"go-outlook-starter/modules/outlook"

	"github.com/labstack/echo/v4"
)

type WebhookController struct {
	controller.BaseController
	bus eventbus.Bus
}

func NewWebhookController(bus eventbus.Bus) *WebhookController {
	return &WebhookController{
		BaseController: controller.NewBaseController(),
		bus:            bus,
	}
}

type notificationBatch struct {
	Value []outlook.ChangeNotification `json:"value"`
}

// HandleNotification receives Microsoft Graph change notifications.
// Subscription validation echoes the validationToken back as plain text;
// real batches are republished on the event bus. Handler errors are not
// surfaced: Graph only wants a 2xx, and a failed consumer has no caller to
// report to.
// POST /webhook/microsoft
func (c *WebhookController) HandleNotification(ctx echo.Context) error {
	if token := ctx.QueryParam("validationToken"); token != "" {
		return ctx.String(http.StatusOK, token)
	}

	var batch notificationBatch
	if err := ctx.Bind(&batch); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid notification payload", nil)
	}

	reqCtx := ctx.Request().Context()
	for _, notification := range batch.Value {
		kind, ok := kindFor(notification)
		if !ok {
			logger.Warn("WebhookController:HandleNotification:UnknownResource",
				"resource", notification.Resource,
				"change_type", notification.ChangeType,
			)
			continue
		}
		_ = c.bus.Publish(reqCtx, kind, notification)
	}

	return ctx.NoContent(http.StatusAccepted)
}

func kindFor(n outlook.ChangeNotification) (eventbus.Kind, bool) {
	isMessage := strings.Contains(n.ResourceData.ODataType, "Message") ||
		strings.Contains(strings.ToLower(n.Resource), "/messages")

	switch strings.ToLower(n.ChangeType) {
	case "created":
		if isMessage {
			return outlook.EventEmailReceived, true
		}
		return outlook.EventCalendarEventCreated, true
	case "updated":
		if isMessage {
			return outlook.EventEmailUpdated, true
		}
		return outlook.EventCalendarEventUpdated, true
	case "deleted":
		if isMessage {
			return outlook.EventEmailDeleted, true
		}
		return outlook.EventCalendarEventDeleted, true
	}
	return "", false
}

package router

import (
	"go-outlook-starter/modules/outlook/controller"

	"github.com/labstack/echo/v4"
)

type WebhookRouter struct {
	controller *controller.WebhookController
}

func NewWebhookRouter(controller *controller.WebhookController) *WebhookRouter {
	return &WebhookRouter{controller: controller}
}

func (r *WebhookRouter) Setup(e *echo.Echo) {
	e.POST("/webhook/microsoft", r.controller.HandleNotification)
}

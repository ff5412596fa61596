package router

import (
	"go-outlook-starter/modules/email/controller"

	"github.com/labstack/echo/v4"
)

type EmailRouter struct {
	controller *controller.EmailController
}

func NewEmailRouter(ctrl *controller.EmailController) *EmailRouter {
	return &EmailRouter{controller: ctrl}
}

func (r *EmailRouter) Setup(e *echo.Echo) {
	e.POST("/email/send", r.controller.SendEmail)
}

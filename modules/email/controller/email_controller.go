package controller

import (
	"go-outlook-starter/core/controller"
	"go-outlook-starter/core/errors"
	"go-outlook-starter/core/logger"
	"go-outlook-starter/core/middleware"
	"go-outlook-starter/modules/email/dto"
	"go-outlook-starter/modules/email/service"

	"github.com/labstack/echo/v4"
)

type EmailController struct {
	controller.BaseController
	service service.EmailService
}

func NewEmailController(svc service.EmailService) *EmailController {
	return &EmailController{
		BaseController: controller.NewBaseController(),
		service:        svc,
	}
}

func (ctrl *EmailController) SendEmail(c echo.Context) error {
	var req dto.SendEmailRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("EmailController:SendEmail:Bind:Error", "error", err)
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "invalid email data")
	}

	if req.To == "" || req.Subject == "" || req.Body == "" {
		return ctrl.BadRequest(errors.ErrInvalidInput, "to, subject and body are required")
	}

	userID := middleware.UserID(c)
	resp, appErr := ctrl.service.SendEmail(c.Request().Context(), userID, &req)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, resp, "email sent")
}

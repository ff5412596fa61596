package controller

import (
	"go-outlook-starter/core/controller"
	"go-outlook-starter/modules/auth/service"

	"github.com/labstack/echo/v4"
)

type AuthController struct {
	controller.BaseController
	service service.AuthService
}

func NewAuthController(svc service.AuthService) *AuthController {
	return &AuthController{
		BaseController: controller.NewBaseController(),
		service:        svc,
	}
}

// MicrosoftLogin returns the login URL instead of redirecting, so API
// clients and browsers can both use it.
func (ctrl *AuthController) MicrosoftLogin(c echo.Context) error {
	url, appErr := ctrl.service.GetMicrosoftAuthURL(c.Request().Context())
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, map[string]string{"auth_url": url}, "redirect the user to auth_url")
}

func (ctrl *AuthController) MicrosoftCallback(c echo.Context) error {
	code := c.QueryParam("code")
	state := c.QueryParam("state")

	result, appErr := ctrl.service.HandleMicrosoftCallback(c.Request().Context(), code, state)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, result, "Outlook account connected")
}

package router

import (
	"go-outlook-starter/modules/auth/controller"

	"github.com/labstack/echo/v4"
)

type AuthRouter struct {
	controller *controller.AuthController
}

func NewAuthRouter(ctrl *controller.AuthController) *AuthRouter {
	return &AuthRouter{controller: ctrl}
}

func (r *AuthRouter) Setup(e *echo.Echo) {
	e.GET("/auth/microsoft/login", r.controller.MicrosoftLogin)
	e.GET("/auth/microsoft/callback", r.controller.MicrosoftCallback)
}

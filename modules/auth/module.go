package auth

import (
	"go-outlook-starter/core/cache"
	"go-outlook-starter/core/eventbus"
	"go-outlook-starter/modules/auth/controller"
	"go-outlook-starter/modules/auth/router"
	"go-outlook-starter/modules/auth/service"
	"go-outlook-starter/modules/outlook"

	"github.com/labstack/echo/v4"
)

type Module struct {
	Service service.AuthService
	Router  *router.AuthRouter
}

func Init(
	e *echo.Echo,
	bus eventbus.Bus,
	integration *outlook.Integration,
	stateCache cache.Cache,
	stateSecret string,
) *Module {
	svc := service.NewAuthService(integration.Tokens, integration.Client, bus, stateCache, stateSecret)

	ctrl := controller.NewAuthController(svc)
	rtr := router.NewAuthRouter(ctrl)
	rtr.Setup(e)

	return &Module{Service: svc, Router: rtr}
}

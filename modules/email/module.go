package email

import (
	"go-outlook-starter/core/eventbus"
	"go-outlook-starter/core/storage"
	"go-outlook-starter/modules/email/controller"
	"go-outlook-starter/modules/email/router"
	"go-outlook-starter/modules/email/service"
	"go-outlook-starter/modules/outlook"

	"github.com/labstack/echo/v4"
)

type Module struct {
	Service service.EmailService
	Router  *router.EmailRouter
}

// Init wires the email module. tokens comes from the calendar module, which
// owns the stored credentials; attachments may be nil when no object store
// is configured.
func Init(
	e *echo.Echo,
	bus eventbus.Bus,
	integration *outlook.Integration,
	tokens service.TokenProvider,
	attachments storage.AttachmentStore,
) *Module {
	svc := service.NewEmailService(integration.Client, tokens, attachments)
	svc.Subscribe(bus)

	ctrl := controller.NewEmailController(svc)
	rtr := router.NewEmailRouter(ctrl)
	rtr.Setup(e)

	return &Module{Service: svc, Router: rtr}
}

package calendar

import (
	"go-outlook-starter/core/crypto"
	"go-outlook-starter/core/database"
	"go-outlook-starter/core/eventbus"
	"go-outlook-starter/modules/calendar/controller"
	"go-outlook-starter/modules/calendar/repository"
	"go-outlook-starter/modules/calendar/router"
	"go-outlook-starter/modules/calendar/service"
	"go-outlook-starter/modules/outlook"
	userRepo "go-outlook-starter/modules/user/repository"

	"github.com/labstack/echo/v4"
)

type Module struct {
	Service service.CalendarService
	Router  *router.CalendarRouter
}

// Init wires the calendar module and registers its bus subscriptions.
// enqueuer may be nil when background refresh is disabled.
func Init(
	e *echo.Echo,
	db database.IDatabase,
	bus eventbus.Bus,
	integration *outlook.Integration,
	encrypter crypto.Encrypter,
	enqueuer service.TaskEnqueuer,
) *Module {
	calendarRepo := repository.NewCalendarRepository(db, encrypter)
	users := userRepo.NewUserRepository(db)

	svc := service.NewCalendarService(calendarRepo, users, integration.Client, integration.Tokens, enqueuer)
	svc.Subscribe(bus)

	ctrl := controller.NewCalendarController(svc)
	rtr := router.NewCalendarRouter(ctrl)
	rtr.Setup(e)

	return &Module{Service: svc, Router: rtr}
}

package router

import (
	"go-outlook-starter/modules/calendar/controller"

	"github.com/labstack/echo/v4"
)

type CalendarRouter struct {
	controller *controller.CalendarController
}

func NewCalendarRouter(ctrl *controller.CalendarController) *CalendarRouter {
	return &CalendarRouter{controller: ctrl}
}

func (r *CalendarRouter) Setup(e *echo.Echo) {
	e.GET("/calendar/events", r.controller.CreateEvent)
	e.POST("/calendar/events", r.controller.CreateEvent)
}

package controller

import (
	"go-outlook-starter/core/controller"
	"go-outlook-starter/core/errors"
	"go-outlook-starter/core/logger"
	"go-outlook-starter/core/middleware"
	"go-outlook-starter/modules/calendar/dto"
	"go-outlook-starter/modules/calendar/service"

	"github.com/labstack/echo/v4"
)

type CalendarController struct {
	controller.BaseController
	service service.CalendarService
}

func NewCalendarController(svc service.CalendarService) *CalendarController {
	return &CalendarController{
		BaseController: controller.NewBaseController(),
		service:        svc,
	}
}

// CreateEvent handles both GET (query params) and POST (JSON body); echo's
// binder reads whichever the request carries.
func (ctrl *CalendarController) CreateEvent(c echo.Context) error {
	var req dto.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("CalendarController:CreateEvent:Bind:Error", "error", err)
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "invalid event data")
	}

	if req.Name == "" || req.StartDateTime == "" || req.EndDateTime == "" {
		return ctrl.BadRequest(errors.ErrInvalidInput, "name, start-datetime and end-datetime are required")
	}

	userID := middleware.UserID(c)
	resp, appErr := ctrl.service.CreateEvent(c.Request().Context(), userID, &req)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, resp, "event created")
}

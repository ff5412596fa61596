package middleware

import (
	"go-outlook-starter/core/constants"
	"go-outlook-starter/core/utils"

	"github.com/labstack/echo/v4"
)

const (
	ContextUserID    = "user_id"
	ContextRequestID = "request_id"
	HeaderRequestID  = "X-Request-ID"
)

type Middleware struct{}

func NewMiddleware() *Middleware {
	return &Middleware{}
}

// RequestID assigns each request a short id unless the caller supplied one.
func (m *Middleware) RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(HeaderRequestID)
			if id == "" {
				id = utils.GenerateID()
			}
			c.Set(ContextRequestID, id)
			c.Response().Header().Set(HeaderRequestID, id)
			return next(c)
		}
	}
}

// MockUser injects the sample's hardcoded user id. There is no real
// authentication in this application.
func (m *Middleware) MockUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextUserID, constants.MockUserID)
			return next(c)
		}
	}
}

// UserID reads the (mock) authenticated user id from the request context.
func UserID(c echo.Context) int64 {
	if id, ok := c.Get(ContextUserID).(int64); ok {
		return id
	}
	return constants.MockUserID
}

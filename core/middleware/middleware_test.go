package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go-outlook-starter/core/constants"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, mw(func(c echo.Context) error { return nil })(c))
	return c, rec
}

func TestRequestID(t *testing.T) {
	mw := NewMiddleware()

	t.Run("assigns an id when none is supplied", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c, rec := run(t, mw.RequestID(), req)

		id := rec.Header().Get(HeaderRequestID)
		assert.Len(t, id, 7)
		assert.Equal(t, id, c.Get(ContextRequestID))
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "client-id-1")
		_, rec := run(t, mw.RequestID(), req)

		assert.Equal(t, "client-id-1", rec.Header().Get(HeaderRequestID))
	})
}

func TestMockUser(t *testing.T) {
	mw := NewMiddleware()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c, _ := run(t, mw.MockUser(), req)

	assert.Equal(t, constants.MockUserID, UserID(c))
}

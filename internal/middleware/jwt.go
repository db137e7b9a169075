package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-timeline/internal/utils"
)

// SelectionHeader carries the token returned when a selection session is
// opened.
const SelectionHeader = "X-Selection-Token"

// SelectionIDKey is the echo.Context key holding the verified session ID.
const SelectionIDKey = "selection_id"

// SelectionToken returns an Echo middleware that verifies the selection
// token header and injects the session ID into the request context.  It
// proves which selection a request belongs to; it does not identify a
// user.
func SelectionToken(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(SelectionHeader)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing_selection_token"})
			}
			id, err := utils.ParseSelectionToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid_selection_token"})
			}
			c.Set(SelectionIDKey, id)
			return next(c)
		}
	}
}

// SelectionID returns the session ID set by SelectionToken, or "".
func SelectionID(c echo.Context) string {
	id, _ := c.Get(SelectionIDKey).(string)
	return id
}

package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-timeline/internal/handler"
	"github.com/iliyamo/room-timeline/internal/middleware"
)

// RegisterSelection registers the selection-session endpoints.  Opening a
// session is unauthenticated; every other route acts on the session named
// by the X-Selection-Token header.
func RegisterSelection(e *echo.Echo, h *handler.SelectionHandler, secret string) {
	e.POST("/v1/selections", h.Create)

	g := e.Group("/v1/selections/current", middleware.SelectionToken(secret))
	g.GET("", h.Get)
	g.DELETE("", h.Clear)
	g.POST("/slots", h.ToggleSlot)
	g.DELETE("/slots", h.RemoveSlot)
	g.POST("/runs", h.SelectRun)
	g.POST("/reservations", h.Reserve)
}

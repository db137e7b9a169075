package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-timeline/internal/handler"
)

// RegisterRoutes registers the health probe.  db may be nil, in which case
// the probe only reports that the process is up.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterBrowse registers the read-only calendar endpoints.  cache wraps
// the timeline route only; the other reads are cheap enough to serve
// straight from MySQL.
func RegisterBrowse(e *echo.Echo, h *handler.BrowseHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.GET("/bed-configurations", h.ListBedConfigurations)
	g.GET("/rooms", h.ListRooms)
	g.GET("/rooms/:id/availability", h.RoomAvailability)
	g.GET("/timeline", h.Timeline, cache)
	g.POST("/occupancy/rebalance", h.Rebalance)
}

package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-timeline/internal/handler"
)

// RegisterReservations registers reservation lifecycle routes.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler) {
	e.PATCH("/v1/reservations/:id/status", h.UpdateStatus)
}

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-timeline/internal/calendar"
	"github.com/iliyamo/room-timeline/internal/model"
	"github.com/iliyamo/room-timeline/internal/occupancy"
	"github.com/iliyamo/room-timeline/internal/repository"
)

// errUnavailable marks a request that would double-book a room.
var errUnavailable = errors.New("room unavailable")

// errorStatus maps a domain error to an HTTP status and a machine-readable
// code.  Anything unrecognised is a 500.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, calendar.ErrMalformedDate):
		return http.StatusBadRequest, "invalid_date"
	case errors.Is(err, calendar.ErrInvalidViewport):
		return http.StatusBadRequest, "invalid_viewport"
	case errors.Is(err, model.ErrInvalidRange):
		return http.StatusBadRequest, "invalid_range"
	case errors.Is(err, occupancy.ErrNoGuests):
		return http.StatusUnprocessableEntity, "no_guests"
	case errors.Is(err, occupancy.ErrNegativeCount):
		return http.StatusUnprocessableEntity, "invalid_occupancy"
	case errors.Is(err, occupancy.ErrOverCapacity):
		return http.StatusUnprocessableEntity, "over_capacity"
	case errors.Is(err, errUnavailable):
		return http.StatusConflict, "unavailable"
	case errors.Is(err, repository.ErrSessionNotFound):
		return http.StatusNotFound, "selection_not_found"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, "conflict"
	}
	return http.StatusInternalServerError, "internal_error"
}

func fail(c echo.Context, err error) error {
	status, code := errorStatus(err)
	return c.JSON(status, echo.Map{"error": code})
}

func badRequest(c echo.Context, code string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": code})
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// dateRange reads the checkin and checkout query parameters.  present is
// false when both are absent.
func dateRange(c echo.Context) (checkin, checkout calendar.Day, present bool, err error) {
	in, out := c.QueryParam("checkin"), c.QueryParam("checkout")
	if in == "" && out == "" {
		return 0, 0, false, nil
	}
	if checkin, err = calendar.Parse(in); err != nil {
		return 0, 0, true, err
	}
	if checkout, err = calendar.Parse(out); err != nil {
		return 0, 0, true, err
	}
	return checkin, checkout, true, model.ValidateDates(checkin, checkout)
}

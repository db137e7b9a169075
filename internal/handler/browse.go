package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/room-timeline/internal/availability"
	"github.com/iliyamo/room-timeline/internal/calendar"
	"github.com/iliyamo/room-timeline/internal/model"
	"github.com/iliyamo/room-timeline/internal/occupancy"
	"github.com/iliyamo/room-timeline/internal/repository"
	"github.com/iliyamo/room-timeline/internal/timeline"
)

// maxViewportDays bounds how many columns one timeline request may ask for.
const maxViewportDays = 366

// defaultViewportDays replaces a configured default that is not positive.
const defaultViewportDays = 30

// TimelineDefaults fill in what a timeline request leaves out.
type TimelineDefaults struct {
	Days        int
	ColumnWidth float64
	Location    *time.Location
}

// BrowseHandler serves the read side of the booking calendar: rooms, bed
// configurations, availability checks and the timeline grid.  None of its
// methods write.
type BrowseHandler struct {
	RoomRepo        *repository.RoomRepo
	BedConfigRepo   *repository.BedConfigRepo
	ReservationRepo *repository.ReservationRepo
	Defaults        TimelineDefaults
	Log             *zap.Logger
}

// NewBrowseHandler panics if a repository is missing.
func NewBrowseHandler(rooms *repository.RoomRepo, beds *repository.BedConfigRepo, res *repository.ReservationRepo, d TimelineDefaults, log *zap.Logger) *BrowseHandler {
	if rooms == nil || beds == nil || res == nil {
		panic("nil repository passed to NewBrowseHandler")
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	switch {
	case d.Days < 1:
		d.Days = defaultViewportDays
	case d.Days > maxViewportDays:
		d.Days = maxViewportDays
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BrowseHandler{RoomRepo: rooms, BedConfigRepo: beds, ReservationRepo: res, Defaults: d, Log: log}
}

// ListBedConfigurations handles GET /v1/bed-configurations.
func (h *BrowseHandler) ListBedConfigurations(c echo.Context) error {
	items, err := h.BedConfigRepo.ListAll(c.Request().Context())
	if err != nil {
		h.Log.Error("list bed configurations", zap.Error(err))
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListRooms handles GET /v1/rooms.  Rooms are only listed for a chosen bed
// configuration; without one the list is empty.  When checkin and
// checkout are given, rooms already booked for any of those nights are
// dropped.
func (h *BrowseHandler) ListRooms(c echo.Context) error {
	raw := c.QueryParam("bed_config_id")
	if raw == "" {
		return c.JSON(http.StatusOK, echo.Map{"items": []model.Room{}})
	}
	bedID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || bedID == 0 {
		return badRequest(c, "invalid_bed_config_id")
	}
	checkin, checkout, filter, err := dateRange(c)
	if err != nil {
		return fail(c, err)
	}

	ctx := c.Request().Context()
	rooms, err := h.RoomRepo.ListByBedConfig(ctx, bedID)
	if err != nil {
		h.Log.Error("list rooms", zap.Uint64("bed_config_id", bedID), zap.Error(err))
		return fail(c, err)
	}
	if !filter || len(rooms) == 0 {
		return c.JSON(http.StatusOK, echo.Map{"items": rooms})
	}

	ids := repository.IDs(rooms)
	existing, err := h.ReservationRepo.ListOverlapping(ctx, ids, checkin, checkout)
	if err != nil {
		h.Log.Error("list reservations", zap.Error(err))
		return fail(c, err)
	}
	free, err := availability.AvailableRooms(ids, checkin, checkout, model.Ranges(existing))
	if err != nil {
		return fail(c, err)
	}
	keep := make(map[uint64]bool, len(free))
	for _, id := range free {
		keep[id] = true
	}
	out := make([]model.Room, 0, len(free))
	for _, r := range rooms {
		if keep[r.ID] {
			out = append(out, r)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// RoomAvailability handles GET /v1/rooms/:id/availability and reports the
// reservations that block the requested nights.
func (h *BrowseHandler) RoomAvailability(c echo.Context) error {
	roomID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid_room_id")
	}
	checkin, checkout, present, err := dateRange(c)
	if err != nil {
		return fail(c, err)
	}
	if !present {
		return badRequest(c, "checkin_and_checkout_required")
	}
	ctx := c.Request().Context()
	if _, err := h.RoomRepo.GetByID(ctx, roomID); err != nil {
		return fail(c, err)
	}
	existing, err := h.ReservationRepo.ListOverlapping(ctx, []uint64{roomID}, checkin, checkout)
	if err != nil {
		h.Log.Error("list reservations", zap.Uint64("room_id", roomID), zap.Error(err))
		return fail(c, err)
	}
	conflicts, err := availability.Conflicts(roomID, checkin, checkout, model.Ranges(existing))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"room_id":   roomID,
		"checkin":   checkin,
		"checkout":  checkout,
		"available": len(conflicts) == 0,
		"conflicts": conflicts,
	})
}

type timelineResponse struct {
	Start       calendar.Day   `json:"start"`
	Days        []calendar.Day `json:"days"`
	Mode        string         `json:"mode"`
	ColumnWidth float64        `json:"column_width"`
	Rooms       []model.Room   `json:"rooms"`
	Rows        []timeline.Row `json:"rows"`
}

// Timeline handles GET /v1/timeline.  It lays out every room's
// reservations over the requested viewport, defaulting to the configured
// number of days starting today.
func (h *BrowseHandler) Timeline(c echo.Context) error {
	start := calendar.Today(h.Defaults.Location)
	if s := c.QueryParam("start"); s != "" {
		d, err := calendar.Parse(s)
		if err != nil {
			return fail(c, err)
		}
		start = d
	}
	days := h.Defaults.Days
	if s := c.QueryParam("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return badRequest(c, "invalid_days")
		}
		days = n
	}
	if days > maxViewportDays {
		return badRequest(c, "invalid_days")
	}
	vp, err := calendar.NewViewport(start, days)
	if err != nil {
		return fail(c, err)
	}
	mode, err := timeline.ParseMode(c.QueryParam("mode"))
	if err != nil {
		return badRequest(c, "invalid_mode")
	}
	width := h.Defaults.ColumnWidth
	if s := c.QueryParam("column_width"); s != "" {
		w, err := strconv.ParseFloat(s, 64)
		if err != nil || w <= 0 {
			return badRequest(c, "invalid_column_width")
		}
		width = w
	}

	ctx := c.Request().Context()
	rooms, err := h.RoomRepo.ListAll(ctx)
	if err != nil {
		h.Log.Error("list rooms", zap.Error(err))
		return fail(c, err)
	}
	ids := repository.IDs(rooms)
	var existing []model.Reservation
	if len(ids) > 0 {
		existing, err = h.ReservationRepo.ListOverlapping(ctx, ids, vp.First(), vp.End())
		if err != nil {
			h.Log.Error("list reservations", zap.Error(err))
			return fail(c, err)
		}
	}
	rows, err := timeline.Rows(ids, model.Ranges(existing), vp, mode, width)
	if err != nil {
		// stored rows are valid by constraint; a bad one is a server fault
		h.Log.Error("timeline layout", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal_error"})
	}
	return c.JSON(http.StatusOK, timelineResponse{
		Start:       vp.First(),
		Days:        vp.Days(),
		Mode:        mode.String(),
		ColumnWidth: width,
		Rooms:       rooms,
		Rows:        rows,
	})
}

type rebalanceRequest struct {
	Current     occupancy.Triple `json:"current"`
	Field       string           `json:"field"`
	Value       int              `json:"value"`
	BedConfigID uint64           `json:"bed_config_id"`
}

// Rebalance handles POST /v1/occupancy/rebalance.  The capacity comes from
// the bed configuration; without one the edit is only clamped.
func (h *BrowseHandler) Rebalance(c echo.Context) error {
	var body rebalanceRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid_request_body")
	}
	field, err := occupancy.ParseField(body.Field)
	if err != nil {
		return badRequest(c, "invalid_field")
	}
	if cur := body.Current; cur.Adults < 0 || cur.Children < 0 || cur.Infants < 0 {
		return badRequest(c, "invalid_occupancy")
	}
	capacity := 0
	if body.BedConfigID != 0 {
		bc, err := h.BedConfigRepo.GetByID(c.Request().Context(), body.BedConfigID)
		if err != nil {
			return fail(c, err)
		}
		capacity = bc.MaxOccupancy
	}
	next := occupancy.Rebalance(body.Current, field, body.Value, capacity)
	return c.JSON(http.StatusOK, echo.Map{
		"occupancy": next,
		"capacity":  capacity,
		"valid":     occupancy.Validate(next, capacity) == nil,
	})
}

package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/room-timeline/internal/model"
	q "github.com/iliyamo/room-timeline/internal/queue"
	"github.com/iliyamo/room-timeline/internal/repository"
)

// ReservationHandler moves reservations through their lifecycle.
type ReservationHandler struct {
	ReservationRepo *repository.ReservationRepo
	Notify          Notifier
	Log             *zap.Logger
}

func NewReservationHandler(res *repository.ReservationRepo, notify Notifier, log *zap.Logger) *ReservationHandler {
	if res == nil {
		panic("nil repository passed to NewReservationHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if notify.Log == nil {
		notify.Log = log
	}
	return &ReservationHandler{ReservationRepo: res, Notify: notify, Log: log}
}

// UpdateStatus handles PATCH /v1/reservations/:id/status with a body of
// {"status": "..."}.  Only one step forward along the chain, or a
// cancellation of a non-terminal reservation, is accepted; anything else is
// 409 illegal_transition.  A concurrent change between the read and the
// write is 409 conflict.
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid_reservation_id")
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid_request_body")
	}
	to, err := model.ParseStatus(body.Status)
	if err != nil {
		return badRequest(c, "invalid_status")
	}

	ctx := c.Request().Context()
	res, err := h.ReservationRepo.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	from := res.Status
	if !model.CanTransition(from, to) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "illegal_transition", "from": from, "to": to})
	}
	if err := h.ReservationRepo.UpdateStatus(ctx, id, from, to); err != nil {
		if !errors.Is(err, repository.ErrConflict) && !errors.Is(err, repository.ErrNotFound) {
			h.Log.Error("update reservation status", zap.Uint64("reservation_id", id), zap.Error(err))
		}
		return fail(c, err)
	}
	now := time.Now().UTC()
	res.Status, res.UpdatedAt = to, now

	h.Notify.statusChanged(ctx, q.StatusChangedEvent{
		ReservationID: id,
		RoomID:        res.RoomID,
		From:          string(from),
		To:            string(to),
		ChangedAt:     now.Format(time.RFC3339),
	})
	h.Log.Info("reservation status changed",
		zap.Uint64("reservation_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	return c.JSON(http.StatusOK, res)
}

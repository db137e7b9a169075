package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/room-timeline/internal/availability"
	"github.com/iliyamo/room-timeline/internal/calendar"
	"github.com/iliyamo/room-timeline/internal/middleware"
	"github.com/iliyamo/room-timeline/internal/model"
	"github.com/iliyamo/room-timeline/internal/occupancy"
	q "github.com/iliyamo/room-timeline/internal/queue"
	"github.com/iliyamo/room-timeline/internal/repository"
	"github.com/iliyamo/room-timeline/internal/selection"
	"github.com/iliyamo/room-timeline/internal/utils"
)

// SelectionStore persists selection snapshots between requests.
type SelectionStore interface {
	Load(ctx context.Context, id string) ([]selection.Slot, error)
	Save(ctx context.Context, id string, slots []selection.Slot) error
	Delete(ctx context.Context, id string) error
}

// EventPublisher announces reservation changes.  *service.Publisher
// implements it.
type EventPublisher interface {
	PublishReservationsCreated(ctx context.Context, ev q.ReservationsCreatedEvent) error
	PublishStatusChanged(ctx context.Context, ev q.StatusChangedEvent) error
}

// Notifier runs the side effects of a reservation write: the broker event
// and dropping cached timelines.  Both are optional and neither can fail
// the request that triggered them.
type Notifier struct {
	Events     EventPublisher
	Invalidate func(ctx context.Context) error
	Log        *zap.Logger
}

func (n Notifier) detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
}

func (n Notifier) created(ctx context.Context, ev q.ReservationsCreatedEvent) {
	ctx, cancel := n.detached(ctx)
	defer cancel()
	if n.Events != nil {
		if err := n.Events.PublishReservationsCreated(ctx, ev); err != nil {
			n.Log.Warn("publish reservations.created", zap.String("batch_id", ev.BatchID), zap.Error(err))
		}
	}
	n.invalidate(ctx)
}

func (n Notifier) statusChanged(ctx context.Context, ev q.StatusChangedEvent) {
	ctx, cancel := n.detached(ctx)
	defer cancel()
	if n.Events != nil {
		if err := n.Events.PublishStatusChanged(ctx, ev); err != nil {
			n.Log.Warn("publish reservations.status_changed", zap.Uint64("reservation_id", ev.ReservationID), zap.Error(err))
		}
	}
	n.invalidate(ctx)
}

func (n Notifier) invalidate(ctx context.Context) {
	if n.Invalidate == nil {
		return
	}
	if err := n.Invalidate(ctx); err != nil {
		n.Log.Warn("timeline cache invalidation", zap.Error(err))
	}
}

// SelectionHandler drives the interactive multi-cell selection and turns a
// finished selection into reservations.  Each request restores the
// session's manager from the store, applies one change and saves it back.
type SelectionHandler struct {
	Store           SelectionStore
	RoomRepo        *repository.RoomRepo
	BedConfigRepo   *repository.BedConfigRepo
	ReservationRepo *repository.ReservationRepo
	Notify          Notifier
	Secret          string
	TTL             time.Duration
	Log             *zap.Logger
	now             func() time.Time
}

// NewSelectionHandler panics if the store or a repository is missing.
func NewSelectionHandler(store SelectionStore, rooms *repository.RoomRepo, beds *repository.BedConfigRepo, res *repository.ReservationRepo, notify Notifier, secret string, ttl time.Duration, log *zap.Logger) *SelectionHandler {
	if store == nil || rooms == nil || beds == nil || res == nil {
		panic("nil dependency passed to NewSelectionHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if notify.Log == nil {
		notify.Log = log
	}
	return &SelectionHandler{
		Store:           store,
		RoomRepo:        rooms,
		BedConfigRepo:   beds,
		ReservationRepo: res,
		Notify:          notify,
		Secret:          secret,
		TTL:             ttl,
		Log:             log,
		now:             time.Now,
	}
}

type selectionView struct {
	Slots  []selection.Slot      `json:"slots"`
	Ranges []model.BookingRange  `json:"ranges"`
	Groups []selection.DateGroup `json:"groups"`
}

func viewOf(m *selection.Manager) selectionView {
	v := selectionView{
		Slots:  m.Snapshot(),
		Ranges: selection.Compress(m.Snapshot()),
	}
	v.Groups = selection.GroupByDates(v.Ranges)
	if v.Ranges == nil {
		v.Ranges = []model.BookingRange{}
	}
	if v.Groups == nil {
		v.Groups = []selection.DateGroup{}
	}
	return v
}

// load restores the manager of the session named by the request token.
func (h *SelectionHandler) load(c echo.Context) (string, *selection.Manager, error) {
	id := middleware.SelectionID(c)
	slots, err := h.Store.Load(c.Request().Context(), id)
	if err != nil {
		return id, nil, err
	}
	return id, selection.Restore(slots), nil
}

func (h *SelectionHandler) save(c echo.Context, id string, m *selection.Manager) error {
	return h.Store.Save(c.Request().Context(), id, m.Snapshot())
}

// Create handles POST /v1/selections.  It opens an empty session and
// returns the token that names it.
func (h *SelectionHandler) Create(c echo.Context) error {
	id := uuid.NewString()
	if err := h.Store.Save(c.Request().Context(), id, nil); err != nil {
		h.Log.Error("create selection session", zap.Error(err))
		return fail(c, err)
	}
	tok, err := utils.NewSelectionToken(h.Secret, id, h.TTL)
	if err != nil {
		h.Log.Error("sign selection token", zap.Error(err))
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"selection_id": id,
		"token":        tok.Token,
		"expires_at":   tok.Exp,
	})
}

// Get handles GET /v1/selections/current.
func (h *SelectionHandler) Get(c echo.Context) error {
	_, m, err := h.load(c)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(m))
}

type slotRequest struct {
	RoomID uint64        `json:"room_id"`
	Date   *calendar.Day `json:"date"`
}

// ToggleSlot handles POST /v1/selections/current/slots: a click on a cell
// selects it, a second click deselects it.
func (h *SelectionHandler) ToggleSlot(c echo.Context) error {
	var body slotRequest
	if err := c.Bind(&body); err != nil {
		return bindFail(c, err)
	}
	if body.RoomID == 0 {
		return badRequest(c, "invalid_room_id")
	}
	if body.Date == nil {
		return badRequest(c, "date_required")
	}
	id, m, err := h.load(c)
	if err != nil {
		return fail(c, err)
	}
	if _, err := h.RoomRepo.GetByID(c.Request().Context(), body.RoomID); err != nil {
		return fail(c, err)
	}
	selected := m.AddSlot(body.RoomID, *body.Date)
	if err := h.save(c, id, m); err != nil {
		h.Log.Error("save selection", zap.String("selection_id", id), zap.Error(err))
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"selected": selected, "selection": viewOf(m)})
}

type runRequest struct {
	RoomID uint64        `json:"room_id"`
	From   *calendar.Day `json:"from"`
	To     *calendar.Day `json:"to"`
}

// SelectRun handles POST /v1/selections/current/runs, a drag across one
// row.  Days already selected stay selected.
func (h *SelectionHandler) SelectRun(c echo.Context) error {
	var body runRequest
	if err := c.Bind(&body); err != nil {
		return bindFail(c, err)
	}
	if body.RoomID == 0 {
		return badRequest(c, "invalid_room_id")
	}
	if body.From == nil || body.To == nil {
		return badRequest(c, "from_and_to_required")
	}
	from, to := *body.From, *body.To
	if from.DaysUntil(to) > maxViewportDays || to.DaysUntil(from) > maxViewportDays {
		return badRequest(c, "run_too_long")
	}
	id, m, err := h.load(c)
	if err != nil {
		return fail(c, err)
	}
	if _, err := h.RoomRepo.GetByID(c.Request().Context(), body.RoomID); err != nil {
		return fail(c, err)
	}
	added := m.SelectRun(body.RoomID, from, to)
	if err := h.save(c, id, m); err != nil {
		h.Log.Error("save selection", zap.String("selection_id", id), zap.Error(err))
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"added": added, "selection": viewOf(m)})
}

// RemoveSlot handles DELETE /v1/selections/current/slots?room_id=&date=.
// Removing a slot that is not selected is a no-op.
func (h *SelectionHandler) RemoveSlot(c echo.Context) error {
	roomID, err := strconv.ParseUint(c.QueryParam("room_id"), 10, 64)
	if err != nil || roomID == 0 {
		return badRequest(c, "invalid_room_id")
	}
	date, err := calendar.Parse(c.QueryParam("date"))
	if err != nil {
		return fail(c, err)
	}
	id, m, err := h.load(c)
	if err != nil {
		return fail(c, err)
	}
	m.RemoveSlot(roomID, date)
	if err := h.save(c, id, m); err != nil {
		h.Log.Error("save selection", zap.String("selection_id", id), zap.Error(err))
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(m))
}

// Clear handles DELETE /v1/selections/current.  The session stays open.
func (h *SelectionHandler) Clear(c echo.Context) error {
	id, m, err := h.load(c)
	if err != nil {
		return fail(c, err)
	}
	m.Clear()
	if err := h.save(c, id, m); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type reserveRequest struct {
	ClientName  string `json:"client_name"`
	BedConfigID uint64 `json:"bed_config_id"`
	occupancy.Triple
}

// Reserve handles POST /v1/selections/current/reservations.  The selection
// is compressed into ranges, availability is checked again against rows
// locked inside the transaction, and one reservation per range is written
// under a shared batch ID.  On success the selection is cleared.
func (h *SelectionHandler) Reserve(c echo.Context) error {
	var body reserveRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid_request_body")
	}
	if body.ClientName == "" {
		return badRequest(c, "client_name_required")
	}
	id, m, err := h.load(c)
	if err != nil {
		return fail(c, err)
	}
	ranges := selection.Compress(m.Snapshot())
	if len(ranges) == 0 {
		return badRequest(c, "empty_selection")
	}

	ctx := c.Request().Context()
	var (
		capacity int
		bedID    *uint64
	)
	if body.BedConfigID != 0 {
		bc, err := h.BedConfigRepo.GetByID(ctx, body.BedConfigID)
		if err != nil {
			return fail(c, err)
		}
		capacity, bedID = bc.MaxOccupancy, &bc.ID
		rooms, err := h.RoomRepo.ListByBedConfig(ctx, bc.ID)
		if err != nil {
			h.Log.Error("list rooms", zap.Error(err))
			return fail(c, err)
		}
		supported := make(map[uint64]bool, len(rooms))
		for _, r := range rooms {
			supported[r.ID] = true
		}
		for _, r := range ranges {
			if !supported[r.RoomID] {
				return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "bed_config_not_supported", "room_id": r.RoomID})
			}
		}
	}
	if err := occupancy.Validate(body.Triple, capacity); err != nil {
		return fail(c, err)
	}

	created, conflicts, err := h.persist(ctx, ranges, body, bedID)
	if err != nil {
		if errors.Is(err, errUnavailable) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "unavailable", "conflicts": conflicts})
		}
		h.Log.Error("create reservations", zap.String("selection_id", id), zap.Error(err))
		return fail(c, err)
	}

	h.Notify.created(ctx, createdEvent(created))
	m.Clear()
	if err := h.save(c, id, m); err != nil {
		h.Log.Warn("clear selection after reserve", zap.String("selection_id", id), zap.Error(err))
	}
	h.Log.Info("reservations created",
		zap.String("batch_id", created[0].BatchID),
		zap.Int("rooms", len(created)),
		zap.String("selection_id", id))
	return c.JSON(http.StatusCreated, echo.Map{"batch_id": created[0].BatchID, "reservations": created})
}

// persist writes one reservation per range inside a single transaction.
// When any range collides with an existing booking nothing is written and
// the colliding bookings are returned with errUnavailable.
func (h *SelectionHandler) persist(ctx context.Context, ranges []model.BookingRange, body reserveRequest, bedID *uint64) ([]model.Reservation, []model.BookingRange, error) {
	roomIDs := make([]uint64, 0, len(ranges))
	seen := map[uint64]bool{}
	from, to := ranges[0].Checkin, ranges[0].Checkout
	for _, r := range ranges {
		if !seen[r.RoomID] {
			seen[r.RoomID] = true
			roomIDs = append(roomIDs, r.RoomID)
		}
		from, to = min(from, r.Checkin), max(to, r.Checkout)
	}

	tx, err := h.ReservationRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	existing, err := h.ReservationRepo.ListOverlappingTx(ctx, tx, roomIDs, from, to)
	if err != nil {
		return nil, nil, err
	}
	booked := model.Ranges(existing)
	conflicts := []model.BookingRange{}
	for _, r := range ranges {
		hit, err := availability.Conflicts(r.RoomID, r.Checkin, r.Checkout, booked)
		if err != nil {
			return nil, nil, err
		}
		conflicts = append(conflicts, hit...)
	}
	if len(conflicts) > 0 {
		return nil, conflicts, errUnavailable
	}

	batch := uuid.NewString()
	now := h.now().UTC()
	out := make([]model.Reservation, 0, len(ranges))
	for _, r := range ranges {
		res := model.Reservation{
			BookingRange: r,
			BatchID:      batch,
			ClientName:   body.ClientName,
			BedConfigID:  bedID,
			Adults:       body.Adults,
			Children:     body.Children,
			Infants:      body.Infants,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := h.ReservationRepo.CreateTx(ctx, tx, &res); err != nil {
			return nil, nil, err
		}
		out = append(out, res)
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	committed = true
	return out, nil, nil
}

func createdEvent(rs []model.Reservation) q.ReservationsCreatedEvent {
	first := rs[0]
	ev := q.ReservationsCreatedEvent{
		BatchID:     first.BatchID,
		ClientName:  first.ClientName,
		BedConfigID: first.BedConfigID,
		Adults:      first.Adults,
		Children:    first.Children,
		Infants:     first.Infants,
		CreatedAt:   first.CreatedAt.Format(time.RFC3339),
	}
	for _, r := range rs {
		ev.Rooms = append(ev.Rooms, q.ReservedRoom{
			ReservationID: r.ID,
			RoomID:        r.RoomID,
			Checkin:       r.Checkin.String(),
			Checkout:      r.Checkout.String(),
			Nights:        r.Nights(),
		})
	}
	return ev
}

// bindFail reports a malformed date inside a JSON body as invalid_date
// rather than a generic bad request.
func bindFail(c echo.Context, err error) error {
	if errors.Is(err, calendar.ErrMalformedDate) {
		return fail(c, err)
	}
	return badRequest(c, "invalid_request_body")
}

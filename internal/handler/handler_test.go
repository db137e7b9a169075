package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/room-timeline/internal/calendar"
	"github.com/iliyamo/room-timeline/internal/middleware"
	"github.com/iliyamo/room-timeline/internal/model"
	"github.com/iliyamo/room-timeline/internal/occupancy"
	q "github.com/iliyamo/room-timeline/internal/queue"
	"github.com/iliyamo/room-timeline/internal/repository"
	"github.com/iliyamo/room-timeline/internal/selection"
	"github.com/iliyamo/room-timeline/internal/utils"
)

var (
	roomCols        = []string{"id", "name", "sort_order", "bed_config_id"}
	reservationCols = []string{"id", "room_id", "checkin", "checkout", "status", "batch_id", "client_name",
		"bed_config_id", "adults", "children", "infants", "created_at", "updated_at"}
)

type fakePublisher struct {
	created []q.ReservationsCreatedEvent
	changed []q.StatusChangedEvent
}

func (f *fakePublisher) PublishReservationsCreated(_ context.Context, ev q.ReservationsCreatedEvent) error {
	f.created = append(f.created, ev)
	return nil
}

func (f *fakePublisher) PublishStatusChanged(_ context.Context, ev q.StatusChangedEvent) error {
	f.changed = append(f.changed, ev)
	return errors.New("broker down")
}

type fixture struct {
	db          *sql.DB
	mock        sqlmock.Sqlmock
	store       *repository.MemorySelectionStore
	events      *fakePublisher
	invalidated int
	browse      *BrowseHandler
	sel         *SelectionHandler
	res         *ReservationHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	f := &fixture{db: db, mock: mock, store: repository.NewMemorySelectionStore(time.Hour), events: &fakePublisher{}}
	rooms, beds, res := repository.NewRoomRepo(db), repository.NewBedConfigRepo(db), repository.NewReservationRepo(db)
	notify := Notifier{
		Events:     f.events,
		Invalidate: func(context.Context) error { f.invalidated++; return nil },
	}
	log := zap.NewNop()
	f.browse = NewBrowseHandler(rooms, beds, res, TimelineDefaults{Days: 7, ColumnWidth: 40}, log)
	f.sel = NewSelectionHandler(f.store, rooms, beds, res, notify, "test-secret", time.Hour, log)
	f.sel.now = func() time.Time { return time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC) }
	f.res = NewReservationHandler(res, notify, log)
	return f
}

func (f *fixture) done(t *testing.T) {
	t.Helper()
	if err := f.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func call(h echo.HandlerFunc, method, target, body string, setup func(echo.Context)) *httptest.ResponseRecorder {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}
	_ = h(c)
	return rec
}

func inSession(id string) func(echo.Context) {
	return func(c echo.Context) { c.Set(middleware.SelectionIDKey, id) }
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("wrap: %w", calendar.ErrMalformedDate), http.StatusBadRequest, "invalid_date"},
		{model.ErrInvalidRange, http.StatusBadRequest, "invalid_range"},
		{occupancy.ErrNoGuests, http.StatusUnprocessableEntity, "no_guests"},
		{fmt.Errorf("%w: 5 guests", occupancy.ErrOverCapacity), http.StatusUnprocessableEntity, "over_capacity"},
		{fmt.Errorf("%w in {}", occupancy.ErrNegativeCount), http.StatusUnprocessableEntity, "invalid_occupancy"},
		{repository.ErrSessionNotFound, http.StatusNotFound, "selection_not_found"},
		{repository.ErrNotFound, http.StatusNotFound, "not_found"},
		{repository.ErrConflict, http.StatusConflict, "conflict"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		status, code := errorStatus(tc.err)
		if status != tc.status || code != tc.code {
			t.Errorf("errorStatus(%v) = %d %s, want %d %s", tc.err, status, code, tc.status, tc.code)
		}
	}
}

func TestHealth(t *testing.T) {
	if rec := call(Health(nil), http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	mock.ExpectPing().WillReturnError(errors.New("down"))
	if rec := call(Health(db), http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestListRoomsWithoutBedConfigIsEmpty(t *testing.T) {
	f := newFixture(t)
	rec := call(f.browse.ListRooms, http.MethodGet, "/v1/rooms", "", nil)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"items":[]}` {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
	f.done(t)
}

func TestListRoomsFiltersBooked(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	f.mock.ExpectQuery("WHERE r.id IN \\(SELECT room_id FROM room_bed_configurations WHERE bed_config_id = \\?\\)").
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows(roomCols).AddRow(1, "101", 0, 2).AddRow(2, "102", 1, 2))
	f.mock.ExpectQuery("FROM reservations").
		WillReturnRows(sqlmock.NewRows(reservationCols).
			AddRow(7, 1, "2025-01-03", "2025-01-05", "CONFIRMED", "b", "Ada", nil, 1, 0, 0, now, now))

	rec := call(f.browse.ListRooms, http.MethodGet, "/v1/rooms?bed_config_id=2&checkin=2025-01-04&checkout=2025-01-06", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var out struct{ Items []model.Room }
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	if len(out.Items) != 1 || out.Items[0].ID != 2 {
		t.Fatalf("items = %+v", out.Items)
	}
	f.done(t)
}

func TestListRoomsRejectsInvertedDates(t *testing.T) {
	f := newFixture(t)
	rec := call(f.browse.ListRooms, http.MethodGet, "/v1/rooms?bed_config_id=2&checkin=2025-01-06&checkout=2025-01-06", "", nil)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_range" {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
	rec = call(f.browse.ListRooms, http.MethodGet, "/v1/rooms?bed_config_id=2&checkin=soon&checkout=2025-01-06", "", nil)
	if errorCode(t, rec) != "invalid_date" {
		t.Fatalf("got %s", rec.Body.String())
	}
}

func TestRoomAvailabilityReportsConflicts(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	f.mock.ExpectQuery("WHERE r.id = \\?").WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(roomCols).AddRow(1, "101", 0, nil))
	f.mock.ExpectQuery("FROM reservations").
		WillReturnRows(sqlmock.NewRows(reservationCols).
			AddRow(7, 1, "2025-01-03", "2025-01-05", "OPTION", "b", "Ada", nil, 1, 0, 0, now, now))

	rec := call(f.browse.RoomAvailability, http.MethodGet, "/v1/rooms/1/availability?checkin=2025-01-04&checkout=2025-01-06", "", func(c echo.Context) {
		c.SetParamNames("id")
		c.SetParamValues("1")
	})
	var out struct {
		Available bool                 `json:"available"`
		Conflicts []model.BookingRange `json:"conflicts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK || out.Available || len(out.Conflicts) != 1 {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
	f.done(t)
}

func TestTimeline(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	f.mock.ExpectQuery("FROM rooms r").
		WillReturnRows(sqlmock.NewRows(roomCols).AddRow(1, "101", 0, nil).AddRow(2, "102", 1, nil))
	f.mock.ExpectQuery("FROM reservations").
		WithArgs("2025-01-04", "2025-01-01", uint64(1), uint64(2)).
		WillReturnRows(sqlmock.NewRows(reservationCols).
			AddRow(7, 1, "2024-12-30", "2025-01-02", "CONFIRMED", "b", "Ada", nil, 1, 0, 0, now, now).
			AddRow(8, 2, "2025-01-02", "2025-01-03", "CANCELLED", "b", "Bob", nil, 1, 0, 0, now, now))

	rec := call(f.browse.Timeline, http.MethodGet, "/v1/timeline?start=2025-01-01&days=3&mode=half&column_width=10", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var out timelineResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Days) != 3 || out.Mode != "half" || len(out.Rows) != 2 {
		t.Fatalf("response = %+v", out)
	}
	if len(out.Rows[0].Blocks) != 1 || len(out.Rows[1].Blocks) != 0 {
		t.Fatalf("rows = %+v", out.Rows)
	}
	b := out.Rows[0].Blocks[0]
	if !b.Span.StartsBeforeViewport || b.Span.ColumnEnd != 0 || b.Geometry.Left != 0 || b.Geometry.Width != 15 {
		t.Fatalf("block = %+v", b)
	}
	f.done(t)
}

func TestTimelineRejectsBadViewport(t *testing.T) {
	f := newFixture(t)
	for target, code := range map[string]string{
		"/v1/timeline?days=0":          "invalid_viewport",
		"/v1/timeline?days=1000":       "invalid_days",
		"/v1/timeline?mode=quarter":    "invalid_mode",
		"/v1/timeline?start=yesterday": "invalid_date",
	} {
		rec := call(f.browse.Timeline, http.MethodGet, target, "", nil)
		if rec.Code != http.StatusBadRequest || errorCode(t, rec) != code {
			t.Errorf("%s: got %d %s", target, rec.Code, rec.Body.String())
		}
	}
}

func TestRebalance(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectQuery("FROM bed_configurations WHERE id = \\?").WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "max_occupancy"}).AddRow(3, "Double", 4))

	rec := call(f.browse.Rebalance, http.MethodPost, "/v1/occupancy/rebalance",
		`{"current":{"adults":2,"children":2,"infants":0},"field":"adults","value":3,"bed_config_id":3}`, nil)
	var out struct {
		Occupancy occupancy.Triple `json:"occupancy"`
		Valid     bool             `json:"valid"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	if rec.Code != http.StatusOK || out.Occupancy != (occupancy.Triple{Adults: 3, Children: 1}) || !out.Valid {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}

	rec = call(f.browse.Rebalance, http.MethodPost, "/v1/occupancy/rebalance", `{"field":"pets","value":1}`, nil)
	if errorCode(t, rec) != "invalid_field" {
		t.Fatalf("got %s", rec.Body.String())
	}

	rec = call(f.browse.Rebalance, http.MethodPost, "/v1/occupancy/rebalance",
		`{"current":{"adults":1,"children":-2,"infants":1},"field":"adults","value":1}`, nil)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_occupancy" {
		t.Fatalf("negative current: got %d %s", rec.Code, rec.Body.String())
	}
	f.done(t)
}

func TestSelectionLifecycle(t *testing.T) {
	f := newFixture(t)

	rec := call(f.sel.Create, http.MethodPost, "/v1/selections", "", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	var created struct {
		ID    string `json:"selection_id"`
		Token string `json:"token"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &created)
	if id, err := utils.ParseSelectionToken("test-secret", created.Token); err != nil || id != created.ID {
		t.Fatalf("token names %q (%v), want %q", id, err, created.ID)
	}
	sess := inSession(created.ID)

	for i := 0; i < 2; i++ {
		f.mock.ExpectQuery("WHERE r.id = \\?").WillReturnRows(sqlmock.NewRows(roomCols).AddRow(1, "101", 0, nil))
	}
	rec = call(f.sel.SelectRun, http.MethodPost, "/", `{"room_id":1,"from":"2025-01-05","to":"2025-01-03"}`, sess)
	if rec.Code != http.StatusOK {
		t.Fatalf("run status = %d %s", rec.Code, rec.Body.String())
	}
	// deselect the middle night
	rec = call(f.sel.ToggleSlot, http.MethodPost, "/", `{"room_id":1,"date":"2025-01-04"}`, sess)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"selected":false`) {
		t.Fatalf("toggle = %d %s", rec.Code, rec.Body.String())
	}

	rec = call(f.sel.Get, http.MethodGet, "/", "", sess)
	var view selectionView
	_ = json.Unmarshal(rec.Body.Bytes(), &view)
	if len(view.Slots) != 2 || len(view.Ranges) != 2 || len(view.Groups) != 2 {
		t.Fatalf("view = %+v", view)
	}
	if view.Ranges[0].Checkout.String() != "2025-01-04" || view.Ranges[1].Checkin.String() != "2025-01-05" {
		t.Fatalf("ranges = %+v", view.Ranges)
	}

	rec = call(f.sel.RemoveSlot, http.MethodDelete, "/?room_id=1&date=2025-01-05", "", sess)
	_ = json.Unmarshal(rec.Body.Bytes(), &view)
	if len(view.Slots) != 1 {
		t.Fatalf("after remove = %+v", view)
	}

	if rec = call(f.sel.Clear, http.MethodDelete, "/", "", sess); rec.Code != http.StatusNoContent {
		t.Fatalf("clear status = %d", rec.Code)
	}
	slots, err := f.store.Load(context.Background(), created.ID)
	if err != nil || len(slots) != 0 {
		t.Fatalf("after clear = %v %v", slots, err)
	}
	f.done(t)
}

func TestSelectionRequiresSession(t *testing.T) {
	f := newFixture(t)
	rec := call(f.sel.Get, http.MethodGet, "/", "", inSession("gone"))
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "selection_not_found" {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
	rec = call(f.sel.ToggleSlot, http.MethodPost, "/", `{"room_id":1,"date":"01/04/2025"}`, inSession("gone"))
	if errorCode(t, rec) != "invalid_date" {
		t.Fatalf("got %s", rec.Body.String())
	}
}

func seed(t *testing.T, f *fixture, id string, slots ...selection.Slot) {
	t.Helper()
	if err := f.store.Save(context.Background(), id, slots); err != nil {
		t.Fatal(err)
	}
}

func slot(room uint64, d string) selection.Slot {
	return selection.Slot{RoomID: room, Date: calendar.MustParse(d)}
}

func TestReserveCreatesBatch(t *testing.T) {
	f := newFixture(t)
	seed(t, f, "s1", slot(1, "2025-01-02"), slot(1, "2025-01-03"), slot(2, "2025-01-02"))

	f.mock.ExpectQuery("FROM bed_configurations WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "max_occupancy"}).AddRow(3, "Twin", 2))
	f.mock.ExpectQuery("bed_config_id = \\?").
		WillReturnRows(sqlmock.NewRows(roomCols).AddRow(1, "101", 0, 3).AddRow(2, "102", 1, 3))
	f.mock.ExpectBegin()
	f.mock.ExpectQuery("FROM reservations.*FOR UPDATE").
		WithArgs("2025-01-04", "2025-01-02", uint64(1), uint64(2)).
		WillReturnRows(sqlmock.NewRows(reservationCols))
	f.mock.ExpectExec("INSERT INTO reservations").
		WithArgs(uint64(1), "2025-01-02", "2025-01-04", "REQUESTED", sqlmock.AnyArg(), "Ada", uint64(3), 2, 0, 0,
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(10, 1))
	f.mock.ExpectExec("INSERT INTO reservations").
		WillReturnResult(sqlmock.NewResult(11, 1))
	f.mock.ExpectCommit()

	rec := call(f.sel.Reserve, http.MethodPost, "/", `{"client_name":"Ada","bed_config_id":3,"adults":2}`, inSession("s1"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var out struct {
		BatchID      string              `json:"batch_id"`
		Reservations []model.Reservation `json:"reservations"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	if out.BatchID == "" || len(out.Reservations) != 2 || out.Reservations[1].ID != 11 {
		t.Fatalf("response = %+v", out)
	}
	if len(f.events.created) != 1 || len(f.events.created[0].Rooms) != 2 || f.events.created[0].Rooms[0].Nights != 2 {
		t.Fatalf("events = %+v", f.events.created)
	}
	if f.invalidated != 1 {
		t.Fatalf("invalidated = %d", f.invalidated)
	}
	if slots, _ := f.store.Load(context.Background(), "s1"); len(slots) != 0 {
		t.Fatalf("selection not cleared: %v", slots)
	}
	f.done(t)
}

func TestReserveConflictRollsBack(t *testing.T) {
	f := newFixture(t)
	seed(t, f, "s1", slot(1, "2025-01-02"), slot(1, "2025-01-03"))
	now := time.Now()

	f.mock.ExpectBegin()
	f.mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(reservationCols).
			AddRow(7, 1, "2025-01-03", "2025-01-05", "RESERVED", "b", "Bob", nil, 1, 0, 0, now, now))
	f.mock.ExpectRollback()

	rec := call(f.sel.Reserve, http.MethodPost, "/", `{"client_name":"Ada","adults":1}`, inSession("s1"))
	if rec.Code != http.StatusConflict || errorCode(t, rec) != "unavailable" {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
	if len(f.events.created) != 0 || f.invalidated != 0 {
		t.Fatal("side effects ran for a failed batch")
	}
	if slots, _ := f.store.Load(context.Background(), "s1"); len(slots) != 2 {
		t.Fatalf("selection should survive a conflict: %v", slots)
	}
	f.done(t)
}

func TestReserveValidatesParty(t *testing.T) {
	f := newFixture(t)
	seed(t, f, "s1", slot(1, "2025-01-02"))
	rec := call(f.sel.Reserve, http.MethodPost, "/", `{"client_name":"Ada"}`, inSession("s1"))
	if rec.Code != http.StatusUnprocessableEntity || errorCode(t, rec) != "no_guests" {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}

	rec = call(f.sel.Reserve, http.MethodPost, "/", `{"client_name":"Ada","adults":2,"children":-1}`, inSession("s1"))
	if rec.Code != http.StatusUnprocessableEntity || errorCode(t, rec) != "invalid_occupancy" {
		t.Fatalf("negative count: got %d %s", rec.Code, rec.Body.String())
	}

	f.mock.ExpectQuery("FROM bed_configurations WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "max_occupancy"}).AddRow(3, "Single", 1))
	f.mock.ExpectQuery("bed_config_id = \\?").
		WillReturnRows(sqlmock.NewRows(roomCols).AddRow(1, "101", 0, 3))
	rec = call(f.sel.Reserve, http.MethodPost, "/", `{"client_name":"Ada","bed_config_id":3,"adults":1,"infants":1}`, inSession("s1"))
	if errorCode(t, rec) != "over_capacity" {
		t.Fatalf("got %s", rec.Body.String())
	}

	seed(t, f, "empty")
	rec = call(f.sel.Reserve, http.MethodPost, "/", `{"client_name":"Ada","adults":1}`, inSession("empty"))
	if errorCode(t, rec) != "empty_selection" {
		t.Fatalf("got %s", rec.Body.String())
	}
	f.done(t)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	withID := func(c echo.Context) {
		c.SetParamNames("id")
		c.SetParamValues("5")
	}

	f.mock.ExpectQuery("FROM reservations WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows(reservationCols).
			AddRow(5, 1, "2025-01-02", "2025-01-04", "OPTION", "b", "Ada", nil, 1, 0, 0, now, now))
	f.mock.ExpectExec("UPDATE reservations SET status").
		WithArgs("RESERVED", uint64(5), "OPTION").
		WillReturnResult(sqlmock.NewResult(0, 1))
	rec := call(f.res.UpdateStatus, http.MethodPatch, "/", `{"status":"reserved"}`, withID)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d %s", rec.Code, rec.Body.String())
	}
	// a broker failure does not fail the request
	if len(f.events.changed) != 1 || f.events.changed[0].To != "RESERVED" || f.invalidated != 1 {
		t.Fatalf("side effects = %+v %d", f.events.changed, f.invalidated)
	}

	f.mock.ExpectQuery("FROM reservations WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows(reservationCols).
			AddRow(5, 1, "2025-01-02", "2025-01-04", "OPTION", "b", "Ada", nil, 1, 0, 0, now, now))
	rec = call(f.res.UpdateStatus, http.MethodPatch, "/", `{"status":"PAID"}`, withID)
	if rec.Code != http.StatusConflict || errorCode(t, rec) != "illegal_transition" {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}

	rec = call(f.res.UpdateStatus, http.MethodPatch, "/", `{"status":"ARCHIVED"}`, withID)
	if errorCode(t, rec) != "invalid_status" {
		t.Fatalf("got %s", rec.Body.String())
	}
	f.done(t)
}

func TestBrowseHandlerBoundsDefaultDays(t *testing.T) {
	f := newFixture(t)
	rooms, beds, res := repository.NewRoomRepo(f.db), repository.NewBedConfigRepo(f.db), repository.NewReservationRepo(f.db)
	for configured, want := range map[int]int{0: defaultViewportDays, -5: defaultViewportDays, 1000: maxViewportDays, 14: 14} {
		h := NewBrowseHandler(rooms, beds, res, TimelineDefaults{Days: configured}, nil)
		if h.Defaults.Days != want {
			t.Errorf("Days %d -> %d, want %d", configured, h.Defaults.Days, want)
		}
	}

	// a bounded default still serves requests that omit days
	f.mock.ExpectQuery("FROM rooms r").WillReturnRows(sqlmock.NewRows(roomCols))
	h := NewBrowseHandler(rooms, beds, res, TimelineDefaults{Days: 1000, ColumnWidth: 40}, nil)
	rec := call(h.Timeline, http.MethodGet, "/v1/timeline?start=2025-01-01", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	f.done(t)
}

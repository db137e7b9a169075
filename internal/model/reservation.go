package model

import (
	"time"

	"github.com/iliyamo/room-timeline/internal/calendar"
)

// Reservation is a persisted booking of one room.  It embeds the range the
// core components work with and adds the bookkeeping the host stores
// alongside it.  This struct corresponds to a row in the `reservations`
// table.
//
// Fields:
//  ID          – primary key identifier.
//  BatchID     – shared by every reservation created from one selection.
//  ClientName  – guest the room is booked for.
//  BedConfigID – bed configuration chosen for the stay (nil if none).
//  Adults, Children, Infants – party size.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Reservation struct {
	ID uint64 `json:"id"` // reservations.id
	BookingRange
	BatchID     string    `json:"batch_id"`      // reservations.batch_id
	ClientName  string    `json:"client_name"`   // reservations.client_name
	BedConfigID *uint64   `json:"bed_config_id"` // reservations.bed_config_id (nullable)
	Adults      int       `json:"adults"`        // reservations.adults
	Children    int       `json:"children"`      // reservations.children
	Infants     int       `json:"infants"`       // reservations.infants
	CreatedAt   time.Time `json:"created_at"`    // reservations.created_at
	UpdatedAt   time.Time `json:"updated_at"`    // reservations.updated_at
}

// Ranges projects reservations onto the ranges the core operates on.
func Ranges(rs []Reservation) []BookingRange {
	out := make([]BookingRange, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.BookingRange)
	}
	return out
}

// Stay is a convenience constructor used by callers holding raw days.
func Stay(roomID uint64, checkin, checkout calendar.Day, status ReservationStatus) BookingRange {
	return BookingRange{RoomID: roomID, Checkin: checkin, Checkout: checkout, Status: status}
}

package model

import (
	"errors"
	"fmt"

	"github.com/iliyamo/room-timeline/internal/calendar"
)

// ErrInvalidRange is returned whenever a checkout does not fall strictly
// after its checkin.
var ErrInvalidRange = errors.New("invalid range: checkout must be after checkin")

// BookingRange is the span of nights a room is held for.  Nights run over
// the half-open interval [Checkin, Checkout): the checkout day itself is
// free, which lets one stay end on the day the next begins.
//
// Fields:
//  RoomID   – room the range applies to.
//  Checkin  – first occupied night.
//  Checkout – departure day, not occupied.
//  Status   – lifecycle state; cancelled ranges are ignored by availability
//             and layout.
type BookingRange struct {
	RoomID   uint64            `json:"room_id"`
	Checkin  calendar.Day      `json:"checkin"`
	Checkout calendar.Day      `json:"checkout"`
	Status   ReservationStatus `json:"status"`
}

// Validate reports ErrInvalidRange when Checkout <= Checkin.
func (r BookingRange) Validate() error {
	return ValidateDates(r.Checkin, r.Checkout)
}

// ValidateDates is Validate for a bare pair of days.
func ValidateDates(checkin, checkout calendar.Day) error {
	if checkout <= checkin {
		return fmt.Errorf("%w (%s..%s)", ErrInvalidRange, checkin, checkout)
	}
	return nil
}

// Nights is the number of occupied nights.
func (r BookingRange) Nights() int { return r.Checkin.DaysUntil(r.Checkout) }

// Active reports whether the range still blocks its room.
func (r BookingRange) Active() bool { return r.Status != StatusCancelled }

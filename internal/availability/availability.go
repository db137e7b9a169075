// Package availability decides whether a room is free for a stay, given the
// bookings already held against it.
package availability

import (
	"github.com/iliyamo/room-timeline/internal/calendar"
	"github.com/iliyamo/room-timeline/internal/model"
)

// Overlaps reports whether two half-open stays share at least one night.
// Rooms and statuses are not consulted.  A stay ending on the day another
// begins does not overlap it.
func Overlaps(a, b model.BookingRange) bool {
	return a.Checkin < b.Checkout && a.Checkout > b.Checkin
}

// Conflicts returns the active ranges on roomID that share a night with
// [checkin, checkout), in input order.
func Conflicts(roomID uint64, checkin, checkout calendar.Day, existing []model.BookingRange) ([]model.BookingRange, error) {
	if err := model.ValidateDates(checkin, checkout); err != nil {
		return nil, err
	}
	candidate := model.Stay(roomID, checkin, checkout, model.StatusRequested)
	var out []model.BookingRange
	for _, r := range existing {
		if r.RoomID != roomID || !r.Active() {
			continue
		}
		if Overlaps(candidate, r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// IsAvailable reports whether roomID is free for [checkin, checkout).
func IsAvailable(roomID uint64, checkin, checkout calendar.Day, existing []model.BookingRange) (bool, error) {
	c, err := Conflicts(roomID, checkin, checkout, existing)
	if err != nil {
		return false, err
	}
	return len(c) == 0, nil
}

// AvailableRooms keeps the rooms of roomIDs that are free for the whole
// stay, preserving order.
func AvailableRooms(roomIDs []uint64, checkin, checkout calendar.Day, existing []model.BookingRange) ([]uint64, error) {
	if err := model.ValidateDates(checkin, checkout); err != nil {
		return nil, err
	}
	busy := make(map[uint64]bool)
	candidate := model.Stay(0, checkin, checkout, model.StatusRequested)
	for _, r := range existing {
		if r.Active() && Overlaps(candidate, r) {
			busy[r.RoomID] = true
		}
	}
	out := make([]uint64, 0, len(roomIDs))
	for _, id := range roomIDs {
		if !busy[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

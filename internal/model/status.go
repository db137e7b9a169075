package model

import (
	"fmt"
	"strings"
)

// ReservationStatus is the lifecycle state of a booking.  The set is
// closed; see ParseStatus.
type ReservationStatus string

const (
	StatusRequested ReservationStatus = "REQUESTED"
	StatusOption    ReservationStatus = "OPTION"
	StatusReserved  ReservationStatus = "RESERVED"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusPaid      ReservationStatus = "PAID"
	StatusCancelled ReservationStatus = "CANCELLED"
)

// statusOrder is the forward chain a booking walks through.
var statusOrder = []ReservationStatus{
	StatusRequested,
	StatusOption,
	StatusReserved,
	StatusConfirmed,
	StatusPaid,
}

// ParseStatus accepts any casing of a known status name.
func ParseStatus(s string) (ReservationStatus, error) {
	st := ReservationStatus(strings.ToUpper(strings.TrimSpace(s)))
	if st == StatusCancelled || rank(st) >= 0 {
		return st, nil
	}
	return "", fmt.Errorf("unknown reservation status %q", s)
}

func rank(s ReservationStatus) int {
	for i, v := range statusOrder {
		if v == s {
			return i
		}
	}
	return -1
}

// Terminal reports whether no further transition is allowed.
func (s ReservationStatus) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// CanTransition reports whether from -> to is a legal move: exactly one
// step forward along REQUESTED → OPTION → RESERVED → CONFIRMED → PAID, or
// to CANCELLED from any non-terminal state.
func CanTransition(from, to ReservationStatus) bool {
	f := rank(from)
	if f < 0 || from.Terminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	return rank(to) == f+1
}

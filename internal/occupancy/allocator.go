// Package occupancy keeps a party's guest counts within the maximum
// occupancy of the chosen bed configuration while the counts are edited.
package occupancy

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoGuests is returned at submission when every count is zero.
	ErrNoGuests = errors.New("no guests")
	// ErrOverCapacity is returned at submission when the party does not fit.
	ErrOverCapacity = errors.New("party exceeds capacity")
	// ErrNegativeCount is returned when any count is below zero.
	ErrNegativeCount = errors.New("negative guest count")
)

// Triple is a party size.  Counts are never negative.
type Triple struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

func (t Triple) Total() int { return t.Adults + t.Children + t.Infants }

// Field names one of the three counts.
type Field int

const (
	Adults Field = iota
	Children
	Infants
)

func (f Field) String() string {
	switch f {
	case Adults:
		return "adults"
	case Children:
		return "children"
	case Infants:
		return "infants"
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// ParseField reads "adults", "children" or "infants".
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "adults":
		return Adults, nil
	case "children":
		return Children, nil
	case "infants":
		return Infants, nil
	}
	return 0, fmt.Errorf("unknown occupancy field %q", s)
}

// drainOrder lists, per edited field, the other two fields in the order
// they give up guests.
var drainOrder = map[Field][2]Field{
	Adults:   {Children, Infants},
	Children: {Adults, Infants},
	Infants:  {Adults, Children},
}

func (t *Triple) ptr(f Field) *int {
	switch f {
	case Children:
		return &t.Children
	case Infants:
		return &t.Infants
	}
	return &t.Adults
}

// Rebalance sets field to newValue (floored at zero) and, when the total then
// exceeds capacity, takes the excess out of the other two fields in a fixed
// order: editing adults drains children then infants, editing children
// drains adults then infants, editing infants drains adults then children.
//
// The edited field is never reduced, so the result still exceeds capacity
// when that field alone does; Validate reports it.  A capacity of zero or
// less means no bed configuration is chosen yet and only the edited field
// is touched.
func Rebalance(current Triple, field Field, newValue, capacity int) Triple {
	if newValue < 0 {
		newValue = 0
	}
	next := current
	*next.ptr(field) = newValue
	if capacity <= 0 {
		return next
	}
	excess := next.Total() - capacity
	for _, f := range drainOrder[field] {
		if excess <= 0 {
			break
		}
		p := next.ptr(f)
		take := min(*p, excess)
		*p -= take
		excess -= take
	}
	return next
}

// Validate is the submission check: a party must have at least one guest
// and, when capacity is known, fit within it.
func Validate(t Triple, capacity int) error {
	if t.Adults < 0 || t.Children < 0 || t.Infants < 0 {
		return fmt.Errorf("%w in %+v", ErrNegativeCount, t)
	}
	if t.Total() == 0 {
		return ErrNoGuests
	}
	if capacity > 0 && t.Total() > capacity {
		return fmt.Errorf("%w: %d guests, capacity %d", ErrOverCapacity, t.Total(), capacity)
	}
	return nil
}

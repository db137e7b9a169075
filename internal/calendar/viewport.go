package calendar

import (
	"errors"
	"fmt"
)

// ErrInvalidViewport is returned for an empty viewport or one whose days
// are not consecutive.
var ErrInvalidViewport = errors.New("invalid viewport")

// Viewport is the ordered run of days currently rendered, one column per
// day.  The zero value is not usable; build one with NewViewport or
// ViewportOf.
type Viewport struct {
	start Day
	n     int
}

// NewViewport returns n consecutive days beginning at start.
func NewViewport(start Day, n int) (Viewport, error) {
	if n < 1 {
		return Viewport{}, fmt.Errorf("%w: %d days", ErrInvalidViewport, n)
	}
	return Viewport{start: start, n: n}, nil
}

// ViewportOf validates an explicit list of days.
func ViewportOf(days []Day) (Viewport, error) {
	if len(days) == 0 {
		return Viewport{}, fmt.Errorf("%w: empty", ErrInvalidViewport)
	}
	for i := 1; i < len(days); i++ {
		if days[i] != days[i-1]+1 {
			return Viewport{}, fmt.Errorf("%w: %s does not follow %s", ErrInvalidViewport, days[i], days[i-1])
		}
	}
	return Viewport{start: days[0], n: len(days)}, nil
}

func (v Viewport) Len() int   { return v.n }
func (v Viewport) First() Day { return v.start }
func (v Viewport) Last() Day  { return v.start + Day(v.n-1) }

// End is the day after Last, the exclusive bound of the viewport.
func (v Viewport) End() Day { return v.start + Day(v.n) }

// At returns the day shown in column i.
func (v Viewport) At(i int) Day { return v.start + Day(i) }

// Index returns the column of d, or false when d is not visible.
func (v Viewport) Index(d Day) (int, bool) {
	i := int(d - v.start)
	if i < 0 || i >= v.n {
		return 0, false
	}
	return i, true
}

// Days expands the viewport into a fresh slice.
func (v Viewport) Days() []Day {
	out := make([]Day, v.n)
	for i := range out {
		out[i] = v.start + Day(i)
	}
	return out
}

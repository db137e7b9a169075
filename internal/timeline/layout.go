// Package timeline maps booking ranges onto the day columns of a scrollable
// room calendar and turns the result into pixel geometry.
//
// Two render modes share the same clipping rules and differ only in where
// the block edges fall:
//
//	FullDay  whole columns from the checkin day through the last night
//	HalfDay  from the middle of the checkin column to the middle of the
//	         checkout column, so back-to-back stays meet inside one cell
//
// Edges cut off by the viewport always snap to a column boundary.
package timeline

import (
	"fmt"
	"strings"

	"github.com/iliyamo/room-timeline/internal/calendar"
	"github.com/iliyamo/room-timeline/internal/model"
)

// Mode selects the block edge arithmetic.
type Mode int

const (
	FullDay Mode = iota
	HalfDay
)

func (m Mode) String() string {
	switch m {
	case FullDay:
		return "full"
	case HalfDay:
		return "half"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode reads "full" or "half"; an empty string means FullDay.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full", "full-day", "full_day":
		return FullDay, nil
	case "half", "half-day", "half_day":
		return HalfDay, nil
	}
	return FullDay, fmt.Errorf("unknown layout mode %q", s)
}

// Span is the column extent of one drawable booking.  ColumnStart and
// ColumnEnd are the first and last occupied nights, inclusive, clipped to
// the viewport.
type Span struct {
	ColumnStart          int  `json:"column_start"`
	ColumnEnd            int  `json:"column_end"`
	StartsBeforeViewport bool `json:"starts_before_viewport"`
	EndsAfterViewport    bool `json:"ends_after_viewport"`
	// Columns is the viewport width the span was computed against.
	Columns int `json:"columns"`
}

// checkoutColumn is the column holding the checkout day; it may equal
// Columns when checkout is the day after the viewport ends.
func (s Span) checkoutColumn() int { return s.ColumnEnd + 1 }

// Layout places r on the viewport.  ok is false when the booking is
// cancelled or shares no night with the viewport; such bookings are not
// drawn.  The mode does not change the column span, only ToPixels.
func Layout(r model.BookingRange, vp calendar.Viewport, mode Mode) (span Span, ok bool, err error) {
	if err := r.Validate(); err != nil {
		return Span{}, false, err
	}
	if vp.Len() < 1 {
		return Span{}, false, calendar.ErrInvalidViewport
	}
	if !r.Active() || r.Checkout <= vp.First() || r.Checkin > vp.Last() {
		return Span{}, false, nil
	}

	span.Columns = vp.Len()
	if r.Checkin < vp.First() {
		span.ColumnStart = 0
		span.StartsBeforeViewport = true
	} else {
		span.ColumnStart, _ = vp.Index(r.Checkin)
	}
	if r.Checkout > vp.End() {
		span.ColumnEnd = vp.Len() - 1
		span.EndsAfterViewport = true
	} else {
		span.ColumnEnd, _ = vp.Index(r.Checkout.AddDays(-1))
	}
	return span, true, nil
}

// Geometry is the horizontal placement of a block in pixels, measured from
// the left edge of the first viewport column.
type Geometry struct {
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
}

// Right is the pixel offset of the block's right edge.
func (g Geometry) Right() float64 { return g.Left + g.Width }

// minColumns is the narrowest block ever drawn, as a fraction of a column.
const minColumns = 0.5

// ToPixels projects a span onto columns of the given width.
func ToPixels(s Span, columnWidth float64, mode Mode) Geometry {
	if mode == HalfDay {
		return halfDayPixels(s, columnWidth)
	}
	cols := float64(s.ColumnEnd - s.ColumnStart + 1)
	if cols < minColumns {
		cols = minColumns
	}
	return Geometry{
		Left:  float64(s.ColumnStart) * columnWidth,
		Width: cols * columnWidth,
	}
}

func halfDayPixels(s Span, w float64) Geometry {
	left := float64(s.ColumnStart)*w + w/2
	if s.StartsBeforeViewport {
		left = 0
	}
	viewportRight := float64(s.Columns) * w
	right := float64(s.checkoutColumn())*w + w/2
	if s.EndsAfterViewport || s.checkoutColumn() >= s.Columns {
		right = viewportRight
	}
	width := right - left
	if width < minColumns*w {
		width = minColumns * w
	}
	return Geometry{Left: left, Width: width}
}

package timeline

import (
	"fmt"
	"sort"

	"github.com/iliyamo/room-timeline/internal/calendar"
	"github.com/iliyamo/room-timeline/internal/model"
)

// Block is one drawable booking on a room row.
type Block struct {
	Range    model.BookingRange `json:"range"`
	Span     Span               `json:"span"`
	Geometry Geometry           `json:"geometry"`
}

// Row holds the blocks of one room, ordered by checkin.
type Row struct {
	RoomID uint64  `json:"room_id"`
	Blocks []Block `json:"blocks"`
}

// Rows lays out every range on its room's row.  Rows follow the order of
// roomIDs and every listed room gets a row, even an empty one.  Ranges for
// rooms not listed are ignored.  An invalid range fails the whole call.
func Rows(roomIDs []uint64, ranges []model.BookingRange, vp calendar.Viewport, mode Mode, columnWidth float64) ([]Row, error) {
	rows := make([]Row, len(roomIDs))
	pos := make(map[uint64]int, len(roomIDs))
	for i, id := range roomIDs {
		rows[i] = Row{RoomID: id, Blocks: []Block{}}
		pos[id] = i
	}
	for _, r := range ranges {
		i, listed := pos[r.RoomID]
		if !listed {
			continue
		}
		span, ok, err := Layout(r, vp, mode)
		if err != nil {
			return nil, fmt.Errorf("room %d: %w", r.RoomID, err)
		}
		if !ok {
			continue
		}
		rows[i].Blocks = append(rows[i].Blocks, Block{
			Range:    r,
			Span:     span,
			Geometry: ToPixels(span, columnWidth, mode),
		})
	}
	for i := range rows {
		b := rows[i].Blocks
		sort.SliceStable(b, func(x, y int) bool { return b[x].Range.Checkin < b[y].Range.Checkin })
	}
	return rows, nil
}

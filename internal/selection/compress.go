package selection

import (
	"sort"

	"github.com/iliyamo/room-timeline/internal/calendar"
	"github.com/iliyamo/room-timeline/internal/model"
)

// Compress turns selected slots into the fewest contiguous ranges per room.
// Each maximal run of consecutive days becomes one range whose checkout is
// the day after the run's last day; any gap, even a single day, starts a
// new range.  Results are ordered by room, then checkin, and carry
// StatusRequested.  Duplicate slots are ignored.
func Compress(slots []Slot) []model.BookingRange {
	sorted := make([]Slot, len(slots))
	copy(sorted, slots)
	sortSlots(sorted)

	var out []model.BookingRange
	for i := 0; i < len(sorted); {
		run := sorted[i]
		last := run.Date
		j := i + 1
		for ; j < len(sorted) && sorted[j].RoomID == run.RoomID; j++ {
			d := sorted[j].Date
			if d == last {
				continue
			}
			if d != last+1 {
				break
			}
			last = d
		}
		out = append(out, model.Stay(run.RoomID, run.Date, last.AddDays(1), model.StatusRequested))
		i = j
	}
	return out
}

// Expand lists every night covered by the ranges as a slot.  It is the
// inverse of Compress.
func Expand(ranges []model.BookingRange) ([]Slot, error) {
	var out []Slot
	for _, r := range ranges {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		for d := r.Checkin; d < r.Checkout; d++ {
			out = append(out, Slot{RoomID: r.RoomID, Date: d})
		}
	}
	return out, nil
}

// DateGroup collects ranges that share the same checkin and checkout so
// rooms booked for the same stay can be presented together.  The ranges
// stay distinct.
type DateGroup struct {
	Checkin  calendar.Day         `json:"checkin"`
	Checkout calendar.Day         `json:"checkout"`
	Ranges   []model.BookingRange `json:"ranges"`
}

// GroupByDates groups ranges by (checkin, checkout), ordered by checkin and
// then checkout.  Within a group, ranges keep their input order.
func GroupByDates(ranges []model.BookingRange) []DateGroup {
	type key struct{ in, out calendar.Day }
	idx := make(map[key]int)
	var groups []DateGroup
	for _, r := range ranges {
		k := key{r.Checkin, r.Checkout}
		i, ok := idx[k]
		if !ok {
			i = len(groups)
			idx[k] = i
			groups = append(groups, DateGroup{Checkin: r.Checkin, Checkout: r.Checkout})
		}
		groups[i].Ranges = append(groups[i].Ranges, r)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Checkin != groups[j].Checkin {
			return groups[i].Checkin < groups[j].Checkin
		}
		return groups[i].Checkout < groups[j].Checkout
	})
	return groups
}

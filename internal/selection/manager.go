// Package selection tracks the room/day cells a user has picked on the
// timeline and compresses them into bookable ranges.
//
// A Manager belongs to a single interactive session and is not safe for
// concurrent use.  The host resets it between booking workflows.
package selection

import (
	"sort"

	"github.com/iliyamo/room-timeline/internal/calendar"
)

// Slot is one selected cell: a room on a day.
type Slot struct {
	RoomID uint64       `json:"room_id"`
	Date   calendar.Day `json:"date"`
}

func (s Slot) less(o Slot) bool {
	if s.RoomID != o.RoomID {
		return s.RoomID < o.RoomID
	}
	return s.Date < o.Date
}

// Manager owns the set of selected slots.
type Manager struct {
	slots map[Slot]struct{}
}

// New returns an empty selection.
func New() *Manager {
	return &Manager{slots: make(map[Slot]struct{})}
}

// Restore rebuilds a selection from a snapshot.  Duplicates collapse.
func Restore(slots []Slot) *Manager {
	m := New()
	for _, s := range slots {
		m.slots[s] = struct{}{}
	}
	return m
}

// AddSlot toggles the cell: a selected cell is removed, any other is added.
// It reports whether the cell is selected afterwards.
func (m *Manager) AddSlot(roomID uint64, date calendar.Day) bool {
	s := Slot{RoomID: roomID, Date: date}
	if _, ok := m.slots[s]; ok {
		delete(m.slots, s)
		return false
	}
	m.slots[s] = struct{}{}
	return true
}

// RemoveSlot deselects the cell.  Removing an absent cell is a no-op.
func (m *Manager) RemoveSlot(roomID uint64, date calendar.Day) {
	delete(m.slots, Slot{RoomID: roomID, Date: date})
}

// SelectRun selects every day from one cell to another on the same row,
// in either direction.  Unlike AddSlot it never deselects.  It returns the
// number of newly selected cells.
func (m *Manager) SelectRun(roomID uint64, from, to calendar.Day) int {
	if to < from {
		from, to = to, from
	}
	added := 0
	for d := from; d <= to; d++ {
		s := Slot{RoomID: roomID, Date: d}
		if _, ok := m.slots[s]; !ok {
			m.slots[s] = struct{}{}
			added++
		}
	}
	return added
}

// Clear empties the selection.
func (m *Manager) Clear() {
	m.slots = make(map[Slot]struct{})
}

func (m *Manager) IsSelected(roomID uint64, date calendar.Day) bool {
	_, ok := m.slots[Slot{RoomID: roomID, Date: date}]
	return ok
}

func (m *Manager) Len() int { return len(m.slots) }

// SlotsForRoom returns the room's selected days in date order.
func (m *Manager) SlotsForRoom(roomID uint64) []Slot {
	out := []Slot{}
	for s := range m.slots {
		if s.RoomID == roomID {
			out = append(out, s)
		}
	}
	sortSlots(out)
	return out
}

// Snapshot copies the selection ordered by room, then date.
func (m *Manager) Snapshot() []Slot {
	out := make([]Slot, 0, len(m.slots))
	for s := range m.slots {
		out = append(out, s)
	}
	sortSlots(out)
	return out
}

// ByRoom groups the snapshot by room.
func (m *Manager) ByRoom() map[uint64][]Slot {
	out := make(map[uint64][]Slot)
	for _, s := range m.Snapshot() {
		out[s.RoomID] = append(out[s.RoomID], s)
	}
	return out
}

func sortSlots(s []Slot) {
	sort.Slice(s, func(i, j int) bool { return s[i].less(s[j]) })
}

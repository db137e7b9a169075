// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names.  Both are durable.
const (
	ReservationsCreatedQueue = "reservations.created"
	StatusChangedQueue       = "reservations.status_changed"
)

// ReservedRoom is one reservation inside a batch event.
type ReservedRoom struct {
	ReservationID uint64 `json:"reservation_id"`
	RoomID        uint64 `json:"room_id"`
	Checkin       string `json:"checkin"`
	Checkout      string `json:"checkout"`
	Nights        int    `json:"nights"`
}

// ReservationsCreatedEvent is published once per batch when every range of
// a selection has been persisted.  Downstream consumers can log, notify or
// feed analytics without querying the primary database.
type ReservationsCreatedEvent struct {
	BatchID     string         `json:"batch_id"`
	ClientName  string         `json:"client_name"`
	BedConfigID *uint64        `json:"bed_config_id,omitempty"`
	Adults      int            `json:"adults"`
	Children    int            `json:"children"`
	Infants     int            `json:"infants"`
	Rooms       []ReservedRoom `json:"rooms"`
	CreatedAt   string         `json:"created_at"`
}

// StatusChangedEvent is published after a reservation moves to a new status.
type StatusChangedEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	RoomID        uint64 `json:"room_id"`
	From          string `json:"from"`
	To            string `json:"to"`
	ChangedAt     string `json:"changed_at"`
}

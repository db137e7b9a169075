package model

// Room is a bookable unit shown as one row of the timeline.  This struct
// corresponds to a row in the `rooms` table; BedConfigIDs is filled from
// `room_bed_configurations`.
type Room struct {
	ID           uint64   `json:"id"`             // rooms.id
	Name         string   `json:"name"`           // rooms.name
	SortOrder    int      `json:"sort_order"`     // rooms.sort_order
	BedConfigIDs []uint64 `json:"bed_config_ids"` // room_bed_configurations.bed_config_id
}

// Supports reports whether the room can be set up with the given bed
// configuration.
func (r Room) Supports(bedConfigID uint64) bool {
	for _, id := range r.BedConfigIDs {
		if id == bedConfigID {
			return true
		}
	}
	return false
}

// BedConfiguration is reference data describing a way to set up a room and
// how many guests it sleeps.  MaxOccupancy bounds the occupancy allocator.
type BedConfiguration struct {
	ID           uint64 `json:"id"`            // bed_configurations.id
	Name         string `json:"name"`          // bed_configurations.name
	MaxOccupancy int    `json:"max_occupancy"` // bed_configurations.max_occupancy
}

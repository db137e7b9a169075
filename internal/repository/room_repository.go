package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/room-timeline/internal/model"
)

// RoomRepo reads rooms together with the bed configurations each room
// supports.  Rooms are always returned in timeline order: sort_order, then
// id.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomSelect = `SELECT r.id, r.name, r.sort_order, rb.bed_config_id
	FROM rooms r
	LEFT JOIN room_bed_configurations rb ON rb.room_id = r.id`

// ListAll returns every room.
func (r *RoomRepo) ListAll(ctx context.Context) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx, roomSelect+` ORDER BY r.sort_order, r.id, rb.bed_config_id`)
	if err != nil {
		return nil, err
	}
	return scanRooms(rows)
}

// ListByBedConfig returns the rooms that can be set up with the given bed
// configuration.  Each room still carries its full list of configurations.
func (r *RoomRepo) ListByBedConfig(ctx context.Context, bedConfigID uint64) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx, roomSelect+`
		WHERE r.id IN (SELECT room_id FROM room_bed_configurations WHERE bed_config_id = ?)
		ORDER BY r.sort_order, r.id, rb.bed_config_id`, bedConfigID)
	if err != nil {
		return nil, err
	}
	return scanRooms(rows)
}

// GetByID returns a single room or ErrNotFound.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
	rows, err := r.db.QueryContext(ctx, roomSelect+` WHERE r.id = ? ORDER BY rb.bed_config_id`, id)
	if err != nil {
		return model.Room{}, err
	}
	rooms, err := scanRooms(rows)
	if err != nil {
		return model.Room{}, err
	}
	if len(rooms) == 0 {
		return model.Room{}, ErrNotFound
	}
	return rooms[0], nil
}

// scanRooms folds the one-row-per-configuration join back into rooms.  It
// relies on rows for the same room being adjacent.
func scanRooms(rows *sql.Rows) ([]model.Room, error) {
	defer rows.Close()
	out := []model.Room{}
	for rows.Next() {
		var (
			room  model.Room
			bedID sql.NullInt64
		)
		if err := rows.Scan(&room.ID, &room.Name, &room.SortOrder, &bedID); err != nil {
			return nil, err
		}
		if n := len(out); n == 0 || out[n-1].ID != room.ID {
			room.BedConfigIDs = []uint64{}
			out = append(out, room)
		}
		if bedID.Valid {
			last := &out[len(out)-1]
			last.BedConfigIDs = append(last.BedConfigIDs, uint64(bedID.Int64))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// IDs extracts room IDs, preserving order.
func IDs(rooms []model.Room) []uint64 {
	out := make([]uint64, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.ID)
	}
	return out
}

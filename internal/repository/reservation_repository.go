package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/room-timeline/internal/calendar"
	"github.com/iliyamo/room-timeline/internal/model"
)

// ReservationRepo provides access to the reservations table.  Every row is
// one room booked over [checkin, checkout).  Rows created from the same
// selection share a batch_id.  Timestamps are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying pool so handlers can open transactions.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservationColumns = `id, room_id, checkin, checkout, status, batch_id, client_name,
	bed_config_id, adults, children, infants, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(s rowScanner) (model.Reservation, error) {
	var (
		res   model.Reservation
		bedID sql.NullInt64
	)
	err := s.Scan(&res.ID, &res.RoomID, &res.Checkin, &res.Checkout, &res.Status, &res.BatchID,
		&res.ClientName, &bedID, &res.Adults, &res.Children, &res.Infants, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return model.Reservation{}, err
	}
	if bedID.Valid {
		id := uint64(bedID.Int64)
		res.BedConfigID = &id
	}
	return res, nil
}

// overlapQuery selects non-cancelled reservations sharing a night with
// [from, to), optionally restricted to a set of rooms.
func overlapQuery(roomIDs []uint64, from, to calendar.Day) (string, []any) {
	q := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE status <> 'CANCELLED' AND checkin < ? AND checkout > ?`
	args := []any{to, from}
	if len(roomIDs) > 0 {
		q += ` AND room_id IN (?` + strings.Repeat(",?", len(roomIDs)-1) + `)`
		for _, id := range roomIDs {
			args = append(args, id)
		}
	}
	q += ` ORDER BY room_id, checkin`
	return q, args
}

// ListOverlapping returns the active reservations that share at least one
// night with [from, to).  An empty roomIDs means every room.
func (r *ReservationRepo) ListOverlapping(ctx context.Context, roomIDs []uint64, from, to calendar.Day) ([]model.Reservation, error) {
	q, args := overlapQuery(roomIDs, from, to)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// ListOverlappingTx is ListOverlapping inside tx with the matching rows
// locked, so a batch insert can re-check availability right before it
// writes.
func (r *ReservationRepo) ListOverlappingTx(ctx context.Context, tx *sql.Tx, roomIDs []uint64, from, to calendar.Day) ([]model.Reservation, error) {
	q, args := overlapQuery(roomIDs, from, to)
	rows, err := tx.QueryContext(ctx, q+` FOR UPDATE`, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func collect(rows *sql.Rows) ([]model.Reservation, error) {
	defer rows.Close()
	out := []model.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns a reservation or ErrNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
	res, err := scanReservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, ErrNotFound
	}
	return res, err
}

// CreateTx inserts res within tx and fills in its generated ID.  The
// caller sets CreatedAt/UpdatedAt and must commit or roll back.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations
		(room_id, checkin, checkout, status, batch_id, client_name, bed_config_id, adults, children, infants, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var bedID any
	if res.BedConfigID != nil {
		bedID = *res.BedConfigID
	}
	result, err := tx.ExecContext(ctx, q,
		res.RoomID, res.Checkin, res.Checkout, string(res.Status), res.BatchID, res.ClientName, bedID,
		res.Adults, res.Children, res.Infants, res.CreatedAt.UTC(), res.UpdatedAt.UTC())
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// UpdateStatus moves a reservation from one status to another.  The update
// only applies while the row still holds from; otherwise ErrConflict is
// returned (or ErrNotFound when the row is gone).
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.ReservationStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ? AND status = ?`,
		string(to), id, string(from))
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

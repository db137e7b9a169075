package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/room-timeline/internal/model"
)

// BedConfigRepo reads the bed_configurations reference table.
type BedConfigRepo struct {
	db *sql.DB
}

// NewBedConfigRepo returns a new BedConfigRepo bound to the given database.
func NewBedConfigRepo(db *sql.DB) *BedConfigRepo { return &BedConfigRepo{db: db} }

// ListAll returns every bed configuration ordered by occupancy, then name.
func (r *BedConfigRepo) ListAll(ctx context.Context) ([]model.BedConfiguration, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, max_occupancy FROM bed_configurations ORDER BY max_occupancy, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.BedConfiguration{}
	for rows.Next() {
		var b model.BedConfiguration
		if err := rows.Scan(&b.ID, &b.Name, &b.MaxOccupancy); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns a bed configuration or ErrNotFound.
func (r *BedConfigRepo) GetByID(ctx context.Context, id uint64) (model.BedConfiguration, error) {
	var b model.BedConfiguration
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, max_occupancy FROM bed_configurations WHERE id = ?`, id,
	).Scan(&b.ID, &b.Name, &b.MaxOccupancy)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BedConfiguration{}, ErrNotFound
	}
	return b, err
}

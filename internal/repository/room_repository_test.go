package repository

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestRoomListAllFoldsConfigurations(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM rooms r\\s+LEFT JOIN room_bed_configurations").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "sort_order", "bed_config_id"}).
			AddRow(1, "101", 0, 1).
			AddRow(1, "101", 0, 2).
			AddRow(2, "102", 1, nil).
			AddRow(3, "201", 2, 2))

	rooms, err := NewRoomRepo(db).ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(rooms) != 3 {
		t.Fatalf("rooms = %+v", rooms)
	}
	if !reflect.DeepEqual(rooms[0].BedConfigIDs, []uint64{1, 2}) || len(rooms[1].BedConfigIDs) != 0 {
		t.Fatalf("bed configs = %+v", rooms)
	}
	if !rooms[2].Supports(2) || rooms[2].Supports(1) {
		t.Fatal("Supports mismatch")
	}
	if got := IDs(rooms); !reflect.DeepEqual(got, []uint64{1, 2, 3}) {
		t.Fatalf("IDs = %v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRoomGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	mock.ExpectQuery("WHERE r.id = \\?").WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "sort_order", "bed_config_id"}))
	if _, err := NewRoomRepo(db).GetByID(context.Background(), 9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestBedConfigGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	repo := NewBedConfigRepo(db)

	mock.ExpectQuery("FROM bed_configurations WHERE id = \\?").WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "max_occupancy"}).AddRow(2, "Double", 2))
	b, err := repo.GetByID(context.Background(), 2)
	if err != nil || b.MaxOccupancy != 2 || b.Name != "Double" {
		t.Fatalf("GetByID = %+v %v", b, err)
	}

	mock.ExpectQuery("FROM bed_configurations WHERE id = \\?").WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "max_occupancy"}))
	if _, err := repo.GetByID(context.Background(), 3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

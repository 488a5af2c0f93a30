// Package store declares the persistence capability the reservation core
// depends on.  The MySQL implementation lives in internal/repository; tests
// use in-memory fakes.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/hostel-reservation/internal/model"
)

// ErrNotFound is returned when a requested room or reservation does not exist.
var ErrNotFound = errors.New("not found")

// ErrBedConflict is returned when persisting a reservation would place a bed
// on a night it is already taken.  It is raised by the storage layer's
// uniqueness guarantee on (bed, night), independently of any check done
// before the write.
var ErrBedConflict = errors.New("bed already reserved for an overlapping night")

// ErrAlreadyStamped is returned when a check-in or check-out time is
// already set.  Stamping is conditional on the column being empty, so
// concurrent stamps of the same reservation yield one success.
var ErrAlreadyStamped = errors.New("time already recorded")

// Queries are the read operations the availability engine needs.  They are
// available both outside and inside a transaction.
type Queries interface {
	// ListRooms returns every room with all of its beds, photos and
	// facilities.  Rooms are ordered by id and beds by id.
	ListRooms(ctx context.Context) ([]model.Room, error)
	// RoomWithBeds returns one room with all of its beds ordered by id.
	// Inside a transaction the bed rows are locked until commit.
	RoomWithBeds(ctx context.Context, roomID uint64) (*model.Room, error)
	// OccupiedBedIDs returns the ids of beds held by a reservation whose
	// stay overlaps [checkIn, checkOut).  When roomIDs is non-empty only
	// beds of those rooms are considered.
	OccupiedBedIDs(ctx context.Context, checkIn, checkOut time.Time, roomIDs ...uint64) (map[uint64]struct{}, error)
}

// Tx is a unit of work spanning availability reads and the reservation write.
type Tx interface {
	Queries
	// CreateReservation inserts the reservation header and one assignment
	// row per bed.  On success res.ID, CreatedAt and UpdatedAt are set.
	// Returns ErrBedConflict when a bed is already taken on any night of
	// the stay.
	CreateReservation(ctx context.Context, res *model.Reservation, bedIDs []uint64) error
}

// Store is the full datastore capability of the reservation core.
type Store interface {
	Queries
	// Atomic runs fn inside a transaction.  The transaction commits when fn
	// returns nil and rolls back otherwise; nothing written inside fn is
	// visible to others before commit.
	Atomic(ctx context.Context, fn func(tx Tx) error) error
	// GetReservation loads a reservation with its rooms, assigned beds and
	// payment marker.  Returns ErrNotFound when it does not exist.
	GetReservation(ctx context.Context, id uint64) (*model.Reservation, error)
	// ListReservationsByGuest loads every reservation of a guest, newest first.
	ListReservationsByGuest(ctx context.Context, guestID uint64) ([]model.Reservation, error)
	// SetCheckInTime stamps the check-in time of a reservation unless it
	// is already set, in which case it returns ErrAlreadyStamped.
	SetCheckInTime(ctx context.Context, id uint64, at time.Time) error
	// SetCheckOutTime stamps the check-out time of a checked-in
	// reservation.  It returns ErrAlreadyStamped when the check-out time is
	// already set.
	SetCheckOutTime(ctx context.Context, id uint64, at time.Time) error
}

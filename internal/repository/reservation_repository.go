package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/hostel-reservation/internal/model"
	"github.com/iliyamo/hostel-reservation/internal/store"
	"github.com/iliyamo/hostel-reservation/internal/utils"
)

// ReservationRepo is the MySQL implementation of store.Store.  Reservations
// group one or more beds for a stay; assigned beds live in
// reservation_beds and every (bed, night) pair of a stay is recorded in
// bed_nights, whose primary key rejects double-booking at the storage
// level.  All timestamps are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

var _ store.Store = (*ReservationRepo)(nil)

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

func (r *ReservationRepo) ListRooms(ctx context.Context) ([]model.Room, error) {
	return listRooms(ctx, r.db)
}

func (r *ReservationRepo) RoomWithBeds(ctx context.Context, roomID uint64) (*model.Room, error) {
	return roomWithBeds(ctx, r.db, roomID, false)
}

func (r *ReservationRepo) OccupiedBedIDs(ctx context.Context, checkIn, checkOut time.Time, roomIDs ...uint64) (map[uint64]struct{}, error) {
	return occupiedBedIDs(ctx, r.db, checkIn, checkOut, roomIDs)
}

// reservationTxOptions runs reservation transactions at READ COMMITTED.
// Under InnoDB's REPEATABLE READ the snapshot is fixed by the first plain
// read, so an occupancy read issued after waiting on a bed lock would miss
// the reservation that held the lock.  READ COMMITTED takes a fresh
// snapshot per statement, which makes the read after the lock current.
var reservationTxOptions = sql.TxOptions{Isolation: sql.LevelReadCommitted}

// Atomic runs fn inside a READ COMMITTED transaction.  The transaction is
// committed when fn returns nil and rolled back otherwise.
func (r *ReservationRepo) Atomic(ctx context.Context, fn func(tx store.Tx) error) error {
	opts := reservationTxOptions
	tx, err := r.db.BeginTx(ctx, &opts)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(&reservationTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		if isDuplicateEntry(err) {
			return store.ErrBedConflict
		}
		return err
	}
	committed = true
	return nil
}

// reservationTx exposes the reads and the reservation write of a single
// transaction.  Bed rows read through RoomWithBeds stay locked until the
// transaction ends.
type reservationTx struct {
	tx *sql.Tx
}

func (t *reservationTx) ListRooms(ctx context.Context) ([]model.Room, error) {
	return listRooms(ctx, t.tx)
}

func (t *reservationTx) RoomWithBeds(ctx context.Context, roomID uint64) (*model.Room, error) {
	return roomWithBeds(ctx, t.tx, roomID, true)
}

func (t *reservationTx) OccupiedBedIDs(ctx context.Context, checkIn, checkOut time.Time, roomIDs ...uint64) (map[uint64]struct{}, error) {
	return occupiedBedIDs(ctx, t.tx, checkIn, checkOut, roomIDs)
}

// CreateReservation inserts the reservation header, its reservation_beds
// rows and one bed_nights row per bed and night.  A duplicate (bed, night)
// surfaces as store.ErrBedConflict.
func (t *reservationTx) CreateReservation(ctx context.Context, res *model.Reservation, bedIDs []uint64) error {
	const q = `INSERT INTO reservations (guest_id, check_in, check_out, special_requests) VALUES (?, ?, ?, ?)`
	result, err := t.tx.ExecContext(ctx, q, res.GuestID, res.CheckIn, res.CheckOut, res.SpecialRequests)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)

	if len(bedIDs) > 0 {
		query := `INSERT INTO reservation_beds (reservation_id, bed_id) VALUES `
		args := make([]interface{}, 0, len(bedIDs)*2)
		for i, bedID := range bedIDs {
			if i > 0 {
				query += ","
			}
			query += "(?, ?)"
			args = append(args, res.ID, bedID)
		}
		if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}

		nights := utils.Nights(res.CheckIn, res.CheckOut)
		query = `INSERT INTO bed_nights (bed_id, night, reservation_id) VALUES `
		args = make([]interface{}, 0, len(bedIDs)*len(nights)*3)
		n := 0
		for _, bedID := range bedIDs {
			for _, night := range nights {
				if n > 0 {
					query += ","
				}
				query += "(?, ?, ?)"
				args = append(args, bedID, night, res.ID)
				n++
			}
		}
		if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
			if isDuplicateEntry(err) {
				return store.ErrBedConflict
			}
			return err
		}
	}

	// Query back the timestamps set by the database defaults.
	if err := t.tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM reservations WHERE id = ?`, res.ID,
	).Scan(&res.CreatedAt, &res.UpdatedAt); err != nil {
		return err
	}
	return nil
}

// GetReservation loads a reservation with its payment marker, its rooms
// and, inside each room, only the beds assigned to this reservation.
func (r *ReservationRepo) GetReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT r.id, r.guest_id, r.check_in, r.check_out, r.special_requests,
	                  r.check_in_time, r.check_out_time, r.created_at, r.updated_at,
	                  t.id, t.amount_cents, t.reference, t.created_at
	           FROM reservations r
	           LEFT JOIN transactions t ON t.reservation_id = r.id
	           WHERE r.id = ?`
	var (
		res          model.Reservation
		special      sql.NullString
		checkInTime  sql.NullTime
		checkOutTime sql.NullTime
		txID         sql.NullInt64
		txAmount     sql.NullInt64
		txReference  sql.NullString
		txCreatedAt  sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&res.ID, &res.GuestID, &res.CheckIn, &res.CheckOut, &special,
		&checkInTime, &checkOutTime, &res.CreatedAt, &res.UpdatedAt,
		&txID, &txAmount, &txReference, &txCreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	res.SpecialRequests = special.String
	if checkInTime.Valid {
		t := checkInTime.Time.UTC()
		res.CheckInTime = &t
	}
	if checkOutTime.Valid {
		t := checkOutTime.Time.UTC()
		res.CheckOutTime = &t
	}
	if txID.Valid {
		tr := &model.Transaction{
			ID:            uint64(txID.Int64),
			ReservationID: res.ID,
			AmountCents:   uint32(txAmount.Int64),
			CreatedAt:     txCreatedAt.Time,
		}
		if txReference.Valid {
			ref := txReference.String
			tr.Reference = &ref
		}
		res.Transaction = tr
	}

	rooms, err := r.assignedRooms(ctx, res.ID)
	if err != nil {
		return nil, fmt.Errorf("load rooms of reservation %d: %w", res.ID, err)
	}
	res.Rooms = rooms
	return &res, nil
}

// assignedRooms groups the beds of a reservation by room.
func (r *ReservationRepo) assignedRooms(ctx context.Context, reservationID uint64) ([]model.Room, error) {
	const q = `SELECT b.id, b.room_id, b.label
	           FROM reservation_beds rb
	           JOIN beds b ON b.id = rb.bed_id
	           WHERE rb.reservation_id = ?
	           ORDER BY b.room_id, b.id`
	rows, err := r.db.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	byRoom := make(map[uint64][]model.Bed)
	var roomIDs []uint64
	for rows.Next() {
		var b model.Bed
		if err := rows.Scan(&b.ID, &b.RoomID, &b.Label); err != nil {
			rows.Close()
			return nil, err
		}
		if _, seen := byRoom[b.RoomID]; !seen {
			roomIDs = append(roomIDs, b.RoomID)
		}
		byRoom[b.RoomID] = append(byRoom[b.RoomID], b)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()
	if len(roomIDs) == 0 {
		return []model.Room{}, nil
	}

	rooms, err := loadRooms(ctx, r.db, roomIDs)
	if err != nil {
		return nil, err
	}
	for i := range rooms {
		rooms[i].Beds = byRoom[rooms[i].ID]
	}
	return rooms, nil
}

// ListReservationsByGuest returns every reservation of a guest, newest first.
func (r *ReservationRepo) ListReservationsByGuest(ctx context.Context, guestID uint64) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM reservations WHERE guest_id = ? ORDER BY created_at DESC, id DESC`, guestID)
	if err != nil {
		return nil, err
	}
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	out := make([]model.Reservation, 0, len(ids))
	for _, id := range ids {
		res, err := r.GetReservation(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, nil
}

// SetCheckInTime stamps reservations.check_in_time if it is still NULL.
func (r *ReservationRepo) SetCheckInTime(ctx context.Context, id uint64, at time.Time) error {
	return r.stamp(ctx, "check_in_time", id, at)
}

// SetCheckOutTime stamps reservations.check_out_time if it is still NULL.
func (r *ReservationRepo) SetCheckOutTime(ctx context.Context, id uint64, at time.Time) error {
	return r.stamp(ctx, "check_out_time", id, at)
}

// stamp sets column only while it is NULL.  The driver reports changed
// rows, not matched ones, and a NULL to non-NULL update always changes the
// row, so zero affected rows means the reservation is missing or already
// stamped.  A second lookup tells the two apart.
func (r *ReservationRepo) stamp(ctx context.Context, column string, id uint64, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET `+column+` = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND `+column+` IS NULL`,
		at.UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM reservations WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}
	return store.ErrAlreadyStamped
}

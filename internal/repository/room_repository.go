package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/iliyamo/hostel-reservation/internal/model"
	"github.com/iliyamo/hostel-reservation/internal/store"
)

// RoomRepo provides methods to create and browse rooms together with their
// beds, photos and facilities.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// NewRoom describes a room to be created by staff.  One bed is created per
// entry of BedLabels; FacilityIDs must reference existing facilities.
type NewRoom struct {
	Type        string
	PriceCents  uint32
	Description *string
	BedLabels   []string
	Photos      []model.Photo
	FacilityIDs []uint64
}

// Create inserts a room with its beds, photos and facility links in a
// single transaction and returns the stored room.
func (r *RoomRepo) Create(ctx context.Context, in NewRoom) (*model.Room, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO rooms (type, price_cents, description) VALUES (?, ?, ?)`,
		in.Type, in.PriceCents, in.Description)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	roomID := uint64(id)

	if len(in.BedLabels) > 0 {
		query := `INSERT INTO beds (room_id, label) VALUES `
		args := make([]interface{}, 0, len(in.BedLabels)*2)
		for i, label := range in.BedLabels {
			if i > 0 {
				query += ","
			}
			query += "(?, ?)"
			args = append(args, roomID, label)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, err
		}
	}
	if len(in.Photos) > 0 {
		query := `INSERT INTO room_photos (room_id, photo_url, photo_description) VALUES `
		args := make([]interface{}, 0, len(in.Photos)*3)
		for i, p := range in.Photos {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?)"
			args = append(args, roomID, p.URL, p.Description)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, err
		}
	}
	if len(in.FacilityIDs) > 0 {
		query := `INSERT INTO room_facilities (room_id, facility_id) VALUES `
		args := make([]interface{}, 0, len(in.FacilityIDs)*2)
		for i, fid := range in.FacilityIDs {
			if i > 0 {
				query += ","
			}
			query += "(?, ?)"
			args = append(args, roomID, fid)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return r.GetByID(ctx, roomID)
}

// List returns every room with beds, photos and facilities, ordered by id.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	return listRooms(ctx, r.db)
}

// GetByID returns one room with beds, photos and facilities.  It returns
// store.ErrNotFound when the room does not exist.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	rooms, err := loadRooms(ctx, r.db, []uint64{id})
	if err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return nil, store.ErrNotFound
	}
	room := rooms[0]
	beds, err := bedsOfRoom(ctx, r.db, id, false)
	if err != nil {
		return nil, err
	}
	room.Beds = beds
	return &room, nil
}

const roomColumns = `id, type, price_cents, description, created_at, updated_at`

func scanRoom(row interface{ Scan(...interface{}) error }) (model.Room, error) {
	var (
		rm   model.Room
		desc sql.NullString
	)
	if err := row.Scan(&rm.ID, &rm.Type, &rm.PriceCents, &desc, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
		return rm, err
	}
	if desc.Valid {
		d := desc.String
		rm.Description = &d
	}
	return rm, nil
}

// listRooms loads the whole catalog.  Beds are loaded with a single query
// and attached to their rooms in id order.
func listRooms(ctx context.Context, q queryer) ([]model.Room, error) {
	rooms, err := loadRooms(ctx, q, nil)
	if err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return rooms, nil
	}
	rows, err := q.QueryContext(ctx, `SELECT id, room_id, label FROM beds ORDER BY room_id, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	index := make(map[uint64]int, len(rooms))
	for i := range rooms {
		index[rooms[i].ID] = i
	}
	for rows.Next() {
		var b model.Bed
		if err := rows.Scan(&b.ID, &b.RoomID, &b.Label); err != nil {
			return nil, err
		}
		if i, ok := index[b.RoomID]; ok {
			rooms[i].Beds = append(rooms[i].Beds, b)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rooms, nil
}

// loadRooms loads room rows with photos and facilities but without beds.
// A nil ids loads every room.  Rooms come back ordered by id.
func loadRooms(ctx context.Context, q queryer, ids []uint64) ([]model.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms`
	var args []interface{}
	if ids != nil {
		if len(ids) == 0 {
			return []model.Room{}, nil
		}
		query += ` WHERE id IN ` + inClause(len(ids))
		args = uint64Args(ids)
	}
	query += ` ORDER BY id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	rooms := make([]model.Room, 0)
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		rooms = append(rooms, rm)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()
	if len(rooms) == 0 {
		return rooms, nil
	}

	index := make(map[uint64]int, len(rooms))
	roomIDs := make([]uint64, 0, len(rooms))
	for i := range rooms {
		index[rooms[i].ID] = i
		roomIDs = append(roomIDs, rooms[i].ID)
	}
	if err := attachPhotos(ctx, q, rooms, index, roomIDs); err != nil {
		return nil, fmt.Errorf("load photos: %w", err)
	}
	if err := attachFacilities(ctx, q, rooms, index, roomIDs); err != nil {
		return nil, fmt.Errorf("load facilities: %w", err)
	}
	return rooms, nil
}

func attachPhotos(ctx context.Context, q queryer, rooms []model.Room, index map[uint64]int, roomIDs []uint64) error {
	rows, err := q.QueryContext(ctx,
		`SELECT room_id, photo_url, photo_description FROM room_photos WHERE room_id IN `+inClause(len(roomIDs))+` ORDER BY room_id, id`,
		uint64Args(roomIDs)...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			roomID uint64
			p      model.Photo
			desc   sql.NullString
		)
		if err := rows.Scan(&roomID, &p.URL, &desc); err != nil {
			return err
		}
		if desc.Valid {
			d := desc.String
			p.Description = &d
		}
		if i, ok := index[roomID]; ok {
			rooms[i].Photos = append(rooms[i].Photos, p)
		}
	}
	return rows.Err()
}

func attachFacilities(ctx context.Context, q queryer, rooms []model.Room, index map[uint64]int, roomIDs []uint64) error {
	rows, err := q.QueryContext(ctx,
		`SELECT rf.room_id, f.id, f.name
		 FROM room_facilities rf
		 JOIN facilities f ON f.id = rf.facility_id
		 WHERE rf.room_id IN `+inClause(len(roomIDs))+`
		 ORDER BY rf.room_id, f.id`,
		uint64Args(roomIDs)...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			roomID uint64
			f      model.Facility
		)
		if err := rows.Scan(&roomID, &f.ID, &f.Name); err != nil {
			return err
		}
		if i, ok := index[roomID]; ok {
			rooms[i].Facilities = append(rooms[i].Facilities, f)
		}
	}
	return rows.Err()
}

// bedsOfRoom returns every bed of a room ordered by id.  With lock set the
// rows are read with FOR UPDATE, which only makes sense inside a
// transaction: concurrent reservations touching the same room queue up
// behind each other until commit.
func bedsOfRoom(ctx context.Context, q queryer, roomID uint64, lock bool) ([]model.Bed, error) {
	query := `SELECT id, room_id, label FROM beds WHERE room_id = ? ORDER BY id`
	if lock {
		query += ` FOR UPDATE`
	}
	rows, err := q.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	beds := make([]model.Bed, 0)
	for rows.Next() {
		var b model.Bed
		if err := rows.Scan(&b.ID, &b.RoomID, &b.Label); err != nil {
			return nil, err
		}
		beds = append(beds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return beds, nil
}

// roomWithBeds loads a room row and all of its beds.  With lock set both
// the room row and its bed rows are locking reads, so a reservation
// transaction blocks here until any other one on the same room commits.
func roomWithBeds(ctx context.Context, q queryer, roomID uint64, lock bool) (*model.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	if lock {
		query += ` FOR UPDATE`
	}
	rm, err := scanRoom(q.QueryRowContext(ctx, query, roomID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	beds, err := bedsOfRoom(ctx, q, roomID, lock)
	if err != nil {
		return nil, err
	}
	rm.Beds = beds
	return &rm, nil
}

// occupiedBedIDs returns beds assigned to any reservation whose stay
// overlaps [checkIn, checkOut).  Stays are half-open: a reservation ending
// on checkIn does not occupy its beds that night.
func occupiedBedIDs(ctx context.Context, q queryer, checkIn, checkOut time.Time, roomIDs []uint64) (map[uint64]struct{}, error) {
	query := `SELECT DISTINCT rb.bed_id
	          FROM reservation_beds rb
	          JOIN reservations r ON r.id = rb.reservation_id`
	args := []interface{}{checkOut, checkIn}
	if len(roomIDs) > 0 {
		query += ` JOIN beds b ON b.id = rb.bed_id`
	}
	query += ` WHERE r.check_in < ? AND r.check_out > ?`
	if len(roomIDs) > 0 {
		ids := append([]uint64(nil), roomIDs...)
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		query += ` AND b.room_id IN ` + inClause(len(ids))
		args = append(args, uint64Args(ids)...)
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uint64]struct{})
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

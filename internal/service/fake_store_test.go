package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/hostel-reservation/internal/model"
	"github.com/iliyamo/hostel-reservation/internal/queue"
	"github.com/iliyamo/hostel-reservation/internal/store"
	"github.com/iliyamo/hostel-reservation/internal/utils"
)

type nightKey struct {
	bed   uint64
	night string
}

type storedReservation struct {
	res    model.Reservation
	bedIDs []uint64
}

// memStore is an in-memory store.Store.  Atomic serialises transactions
// with a mutex and CreateReservation enforces one reservation per bed and
// night, like the bed_nights primary key does in MySQL.
type memStore struct {
	mu        sync.Mutex
	rooms     map[uint64]model.Room
	bedRoom   map[uint64]uint64
	res       map[uint64]*storedReservation
	nights    map[nightKey]uint64
	nextID    uint64
	forceConf bool
}

func newMemStore(rooms ...model.Room) *memStore {
	m := &memStore{
		rooms:   make(map[uint64]model.Room),
		bedRoom: make(map[uint64]uint64),
		res:     make(map[uint64]*storedReservation),
		nights:  make(map[nightKey]uint64),
	}
	for _, r := range rooms {
		m.rooms[r.ID] = r
		for _, b := range r.Beds {
			m.bedRoom[b.ID] = r.ID
		}
	}
	return m
}

func (m *memStore) listRooms() []model.Room {
	out := make([]model.Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		r.Beds = sortedBeds(r.Beds)
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedBeds(beds []model.Bed) []model.Bed {
	cp := append([]model.Bed(nil), beds...)
	sort.Slice(cp, func(i, j int) bool { return cp[i].ID < cp[j].ID })
	return cp
}

func (m *memStore) roomWithBeds(roomID uint64) (*model.Room, error) {
	r, ok := m.rooms[roomID]
	if !ok {
		return nil, store.ErrNotFound
	}
	r.Beds = sortedBeds(r.Beds)
	return &r, nil
}

func (m *memStore) occupied(in, out time.Time, roomIDs []uint64) map[uint64]struct{} {
	filter := make(map[uint64]struct{}, len(roomIDs))
	for _, id := range roomIDs {
		filter[id] = struct{}{}
	}
	occ := make(map[uint64]struct{})
	for _, sr := range m.res {
		if !utils.Overlaps(sr.res.CheckIn, sr.res.CheckOut, in, out) {
			continue
		}
		for _, b := range sr.bedIDs {
			if len(filter) > 0 {
				if _, ok := filter[m.bedRoom[b]]; !ok {
					continue
				}
			}
			occ[b] = struct{}{}
		}
	}
	return occ
}

func (m *memStore) load(id uint64) (*model.Reservation, error) {
	sr, ok := m.res[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	r := sr.res
	byRoom := make(map[uint64][]model.Bed)
	for _, b := range sr.bedIDs {
		rid := m.bedRoom[b]
		byRoom[rid] = append(byRoom[rid], model.Bed{ID: b, RoomID: rid})
	}
	ids := make([]uint64, 0, len(byRoom))
	for rid := range byRoom {
		ids = append(ids, rid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	r.Rooms = nil
	for _, rid := range ids {
		room := m.rooms[rid]
		room.Beds = sortedBeds(byRoom[rid])
		r.Rooms = append(r.Rooms, room)
	}
	return &r, nil
}

func (m *memStore) ListRooms(ctx context.Context) ([]model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listRooms(), nil
}

func (m *memStore) RoomWithBeds(ctx context.Context, roomID uint64) (*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roomWithBeds(roomID)
}

func (m *memStore) OccupiedBedIDs(ctx context.Context, in, out time.Time, roomIDs ...uint64) (map[uint64]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.occupied(in, out, roomIDs), nil
}

func (m *memStore) Atomic(ctx context.Context, fn func(tx store.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &memTx{m: m}
	if err := fn(tx); err != nil {
		return err
	}
	for _, sr := range tx.pending {
		m.res[sr.res.ID] = sr
		for _, b := range sr.bedIDs {
			for _, n := range utils.Nights(sr.res.CheckIn, sr.res.CheckOut) {
				m.nights[nightKey{b, utils.FormatDate(n)}] = sr.res.ID
			}
		}
	}
	return nil
}

func (m *memStore) GetReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(id)
}

func (m *memStore) ListReservationsByGuest(ctx context.Context, guestID uint64) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Reservation
	for id, sr := range m.res {
		if sr.res.GuestID != guestID {
			continue
		}
		r, _ := m.load(id)
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memStore) SetCheckInTime(ctx context.Context, id uint64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sr, ok := m.res[id]
	if !ok {
		return store.ErrNotFound
	}
	if sr.res.CheckInTime != nil {
		return store.ErrAlreadyStamped
	}
	sr.res.CheckInTime = &at
	return nil
}

func (m *memStore) SetCheckOutTime(ctx context.Context, id uint64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sr, ok := m.res[id]
	if !ok {
		return store.ErrNotFound
	}
	if sr.res.CheckOutTime != nil {
		return store.ErrAlreadyStamped
	}
	sr.res.CheckOutTime = &at
	return nil
}

func (m *memStore) pay(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.res[id].res.Transaction = &model.Transaction{ID: 1, ReservationID: id, AmountCents: 1000}
}

// bedReservations lists, per bed, the stays it has been assigned to.
func (m *memStore) bedReservations() map[uint64][]model.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uint64][]model.Reservation)
	for _, sr := range m.res {
		for _, b := range sr.bedIDs {
			out[b] = append(out[b], sr.res)
		}
	}
	return out
}

func (m *memStore) assignedBeds(id uint64) []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := append([]uint64(nil), m.res[id].bedIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// memTx reads through to the store; writes are staged until commit.
type memTx struct {
	m       *memStore
	pending []*storedReservation
}

func (t *memTx) ListRooms(ctx context.Context) ([]model.Room, error) { return t.m.listRooms(), nil }

func (t *memTx) RoomWithBeds(ctx context.Context, roomID uint64) (*model.Room, error) {
	return t.m.roomWithBeds(roomID)
}

func (t *memTx) OccupiedBedIDs(ctx context.Context, in, out time.Time, roomIDs ...uint64) (map[uint64]struct{}, error) {
	return t.m.occupied(in, out, roomIDs), nil
}

func (t *memTx) CreateReservation(ctx context.Context, res *model.Reservation, bedIDs []uint64) error {
	if t.m.forceConf {
		return store.ErrBedConflict
	}
	for _, b := range bedIDs {
		for _, n := range utils.Nights(res.CheckIn, res.CheckOut) {
			if _, taken := t.m.nights[nightKey{b, utils.FormatDate(n)}]; taken {
				return store.ErrBedConflict
			}
		}
	}
	t.m.nextID++
	now := time.Now().UTC()
	res.ID = t.m.nextID
	res.CreatedAt, res.UpdatedAt = now, now
	t.pending = append(t.pending, &storedReservation{res: *res, bedIDs: append([]uint64(nil), bedIDs...)})
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ReservationEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, ev queue.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

func room(id uint64, typ string, price uint32, bedIDs ...uint64) model.Room {
	r := model.Room{ID: id, Type: typ, PriceCents: price}
	for _, b := range bedIDs {
		r.Beds = append(r.Beds, model.Bed{ID: b, RoomID: id})
	}
	return r
}

func date(s string) time.Time {
	t, err := utils.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/iliyamo/hostel-reservation/internal/model"
	"github.com/iliyamo/hostel-reservation/internal/queue"
	"github.com/iliyamo/hostel-reservation/internal/store"
	"github.com/iliyamo/hostel-reservation/internal/utils"
)

// EventPublisher delivers reservation lifecycle events to the message
// broker.  Publishing is best effort and never fails a request.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// ReservationService orchestrates availability search, bed allocation,
// persistence and the check-in/check-out lifecycle.  Availability is always
// computed from the store; nothing is cached between calls.
type ReservationService struct {
	store     store.Store
	publisher EventPublisher
}

// NewReservationService wires the service to its store.  publisher may be
// nil, in which case no events are emitted.
func NewReservationService(st store.Store, publisher EventPublisher) *ReservationService {
	if st == nil {
		panic("nil store passed to NewReservationService")
	}
	return &ReservationService{store: st, publisher: publisher}
}

// MakeReservationInput carries a guest's reservation request.
type MakeReservationInput struct {
	CheckIn         time.Time
	CheckOut        time.Time
	GuestID         uint64
	Rooms           []Selection
	SpecialRequests string
}

func stayWindow(checkIn, checkOut time.Time) (time.Time, time.Time, error) {
	in, out := utils.StartOfDay(checkIn), utils.StartOfDay(checkOut)
	if !out.After(in) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	return in, out, nil
}

// FindAvailableRooms lists every room with the number of beds free during
// [checkIn, checkOut), grouped by room type.
func (s *ReservationService) FindAvailableRooms(ctx context.Context, checkIn, checkOut time.Time, guests int) (*RoomSearchResult, error) {
	in, out, err := stayWindow(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	if guests < 1 {
		return nil, ErrInvalidGuests
	}
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	occupied, err := s.store.OccupiedBedIDs(ctx, in, out)
	if err != nil {
		return nil, fmt.Errorf("load occupied beds: %w", err)
	}
	free := make([]model.Room, 0, len(rooms))
	total := 0
	for _, r := range rooms {
		fr := WithFreeBeds(r, occupied)
		total += len(fr.Beds)
		free = append(free, fr)
	}
	return &RoomSearchResult{
		CheckIn:  utils.FormatDate(in),
		CheckOut: utils.FormatDate(out),
		Guests:   guests,
		Fits:     total >= guests,
		Rooms:    AggregateByType(free),
	}, nil
}

// FindAvailableBeds returns the room with only the beds free during
// [checkIn, checkOut), ordered by bed id.  A fully booked room yields an
// empty bed list.
func (s *ReservationService) FindAvailableBeds(ctx context.Context, checkIn, checkOut time.Time, roomID uint64) (*model.Room, error) {
	in, out, err := stayWindow(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	return freeRoom(ctx, s.store, in, out, roomID)
}

func freeRoom(ctx context.Context, q store.Queries, in, out time.Time, roomID uint64) (*model.Room, error) {
	room, err := q.RoomWithBeds(ctx, roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("load room %d: %w", roomID, err)
	}
	occupied, err := q.OccupiedBedIDs(ctx, in, out, roomID)
	if err != nil {
		return nil, fmt.Errorf("load occupied beds: %w", err)
	}
	fr := WithFreeBeds(*room, occupied)
	return &fr, nil
}

// MakeReservation validates the request, assigns beds and persists the
// reservation in a single transaction, then returns its detail.
func (s *ReservationService) MakeReservation(ctx context.Context, in MakeReservationInput) (*ReservationDetail, error) {
	checkIn, checkOut, err := stayWindow(in.CheckIn, in.CheckOut)
	if err != nil {
		return nil, err
	}
	if len(in.Rooms) == 0 {
		return nil, ErrNoRoomsSelected
	}
	if !CheckNoDuplicateRooms(in.Rooms) {
		return nil, ErrDuplicateRoom
	}

	// Rooms are locked in ascending id order so two requests over the same
	// rooms can not deadlock each other.
	roomIDs := make([]uint64, 0, len(in.Rooms))
	for _, sel := range in.Rooms {
		roomIDs = append(roomIDs, sel.RoomID)
	}
	sort.Slice(roomIDs, func(i, j int) bool { return roomIDs[i] < roomIDs[j] })

	res := &model.Reservation{
		GuestID:         in.GuestID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		SpecialRequests: in.SpecialRequests,
	}
	var bedIDs []uint64
	err = s.store.Atomic(ctx, func(tx store.Tx) error {
		// Every selected room is locked before occupancy is read, so the
		// read sees whatever a competing reservation committed meanwhile.
		rooms := make([]*model.Room, 0, len(roomIDs))
		for _, id := range roomIDs {
			room, err := tx.RoomWithBeds(ctx, id)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return ErrRoomNotFound
				}
				return fmt.Errorf("lock room %d: %w", id, err)
			}
			rooms = append(rooms, room)
		}
		occupied, err := tx.OccupiedBedIDs(ctx, checkIn, checkOut, roomIDs...)
		if err != nil {
			return fmt.Errorf("load occupied beds: %w", err)
		}
		free := make(map[uint64][]model.Bed, len(rooms))
		for _, room := range rooms {
			free[room.ID] = FreeBeds(room.Beds, occupied)
		}
		assigned, err := Allocate(in.Rooms, free)
		if err != nil {
			return err
		}
		bedIDs = FlattenBedIDs(in.Rooms, assigned)
		return tx.CreateReservation(ctx, res, bedIDs)
	})
	switch {
	case err == nil:
	case errors.Is(err, store.ErrBedConflict):
		// Another reservation claimed one of the beds first.
		return nil, ErrInsufficientBeds
	case errors.Is(err, ErrInvalidReservation):
		return nil, err
	default:
		return nil, fmt.Errorf("make reservation: %w", err)
	}

	s.publish(ctx, queue.EventReservationCreated, res, bedIDs)
	return s.GetReservationDetails(ctx, res.ID, in.GuestID)
}

// loadOwned fetches a reservation and enforces that it belongs to guestID.
func (s *ReservationService) loadOwned(ctx context.Context, reservationID, guestID uint64) (*model.Reservation, error) {
	res, err := s.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.GuestID != guestID {
		return nil, ErrUnauthorized
	}
	return res, nil
}

// GetReservation loads a reservation without any ownership check.  It is
// meant for staff operations.
func (s *ReservationService) GetReservation(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
	res, err := s.store.GetReservation(ctx, reservationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("load reservation %d: %w", reservationID, err)
	}
	return res, nil
}

// GetReservationDetails returns the detail of a reservation owned by guestID.
func (s *ReservationService) GetReservationDetails(ctx context.Context, reservationID, guestID uint64) (*ReservationDetail, error) {
	res, err := s.loadOwned(ctx, reservationID, guestID)
	if err != nil {
		return nil, err
	}
	d := NewReservationDetail(res)
	return &d, nil
}

// GetReservationPaymentStatus reports whether a reservation owned by
// guestID has a payment transaction attached.
func (s *ReservationService) GetReservationPaymentStatus(ctx context.Context, reservationID, guestID uint64) (bool, error) {
	res, err := s.loadOwned(ctx, reservationID, guestID)
	if err != nil {
		return false, err
	}
	return res.Transaction != nil, nil
}

// ListGuestReservations returns all reservations of a guest, newest first.
func (s *ReservationService) ListGuestReservations(ctx context.Context, guestID uint64) ([]ReservationDetail, error) {
	list, err := s.store.ListReservationsByGuest(ctx, guestID)
	if err != nil {
		return nil, fmt.Errorf("list reservations of guest %d: %w", guestID, err)
	}
	out := make([]ReservationDetail, 0, len(list))
	for i := range list {
		out = append(out, NewReservationDetail(&list[i]))
	}
	return out, nil
}

// CheckIn records the arrival of the guest.  It is only allowed on the
// reservation's check-in day and only once.
func (s *ReservationService) CheckIn(ctx context.Context, reservationID uint64, at time.Time) (*model.Reservation, error) {
	res, err := s.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !utils.SameDay(at, res.CheckIn) {
		return nil, ErrWrongCheckInDay
	}
	if res.CheckInTime != nil {
		return nil, ErrAlreadyCheckedIn
	}
	at = at.UTC()
	// The store only stamps an unset time, so of two concurrent check-ins
	// exactly one passes here.
	if err := s.store.SetCheckInTime(ctx, reservationID, at); err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyStamped):
			return nil, ErrAlreadyCheckedIn
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("set check-in time: %w", err)
	}
	res.CheckInTime = &at
	s.publish(ctx, queue.EventReservationCheckedIn, res, res.BedIDs())
	return res, nil
}

// CheckOut records the departure of the guest.  Preconditions are checked
// in order: the reservation exists, today is its check-out day, the guest
// has checked in, and has not checked out yet.
func (s *ReservationService) CheckOut(ctx context.Context, reservationID uint64, at time.Time) (*model.Reservation, error) {
	res, err := s.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !utils.SameDay(at, res.CheckOut) {
		return nil, ErrWrongCheckOutDay
	}
	if res.CheckInTime == nil {
		return nil, ErrNotCheckedIn
	}
	if res.CheckOutTime != nil {
		return nil, ErrAlreadyCheckedOut
	}
	at = at.UTC()
	if err := s.store.SetCheckOutTime(ctx, reservationID, at); err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyStamped):
			return nil, ErrAlreadyCheckedOut
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("set check-out time: %w", err)
	}
	res.CheckOutTime = &at
	s.publish(ctx, queue.EventReservationCheckedOut, res, res.BedIDs())
	return res, nil
}

func (s *ReservationService) publish(ctx context.Context, eventType string, res *model.Reservation, bedIDs []uint64) {
	if s.publisher == nil {
		return
	}
	ev := queue.NewReservationEvent(eventType, res.ID, res.GuestID, utils.FormatDate(res.CheckIn), utils.FormatDate(res.CheckOut), bedIDs)
	if err := s.publisher.Publish(ctx, ev); err != nil {
		log.Printf("reservation: publish %s for reservation %d failed: %v", eventType, res.ID, err)
	}
}

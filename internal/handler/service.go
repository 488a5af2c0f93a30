package handler

import (
	"context"
	"time"

	"github.com/iliyamo/hostel-reservation/internal/model"
	"github.com/iliyamo/hostel-reservation/internal/service"
)

// ReservationService is the part of service.ReservationService the HTTP
// layer depends on.
type ReservationService interface {
	FindAvailableRooms(ctx context.Context, checkIn, checkOut time.Time, guests int) (*service.RoomSearchResult, error)
	FindAvailableBeds(ctx context.Context, checkIn, checkOut time.Time, roomID uint64) (*model.Room, error)
	MakeReservation(ctx context.Context, in service.MakeReservationInput) (*service.ReservationDetail, error)
	GetReservation(ctx context.Context, reservationID uint64) (*model.Reservation, error)
	GetReservationDetails(ctx context.Context, reservationID, guestID uint64) (*service.ReservationDetail, error)
	GetReservationPaymentStatus(ctx context.Context, reservationID, guestID uint64) (bool, error)
	ListGuestReservations(ctx context.Context, guestID uint64) ([]service.ReservationDetail, error)
	CheckIn(ctx context.Context, reservationID uint64, at time.Time) (*model.Reservation, error)
	CheckOut(ctx context.Context, reservationID uint64, at time.Time) (*model.Reservation, error)
}

var _ ReservationService = (*service.ReservationService)(nil)

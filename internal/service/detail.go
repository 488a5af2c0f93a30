package service

import (
	"time"

	"github.com/iliyamo/hostel-reservation/internal/model"
	"github.com/iliyamo/hostel-reservation/internal/utils"
)

// RoomDetail describes a room inside a reservation as shown to the guest.
// Available is the number of beds the reservation holds in that room; the
// bed identities themselves are not exposed.
type RoomDetail struct {
	ID          uint64           `json:"id"`
	Type        string           `json:"type"`
	PriceCents  uint32           `json:"price"`
	Available   int              `json:"available"`
	Description *string          `json:"description,omitempty"`
	Photos      []model.Photo    `json:"photos"`
	Facilities  []model.Facility `json:"facilities"`
}

// ReservationDetail is the guest-facing shape of a reservation.
type ReservationDetail struct {
	ID              uint64       `json:"id"`
	CheckIn         string       `json:"checkIn"`
	CheckOut        string       `json:"checkOut"`
	SpecialRequests string       `json:"specialRequests"`
	Rooms           []RoomDetail `json:"rooms"`
	IsPaid          bool         `json:"isPaid"`
	CheckedInAt     *time.Time   `json:"checkedInAt,omitempty"`
	CheckedOutAt    *time.Time   `json:"checkedOutAt,omitempty"`
}

// NewReservationDetail projects a stored reservation into its detail shape.
func NewReservationDetail(r *model.Reservation) ReservationDetail {
	d := ReservationDetail{
		ID:              r.ID,
		CheckIn:         utils.FormatDate(r.CheckIn),
		CheckOut:        utils.FormatDate(r.CheckOut),
		SpecialRequests: r.SpecialRequests,
		Rooms:           make([]RoomDetail, 0, len(r.Rooms)),
		IsPaid:          r.Transaction != nil,
		CheckedInAt:     r.CheckInTime,
		CheckedOutAt:    r.CheckOutTime,
	}
	for _, room := range r.Rooms {
		rd := RoomDetail{
			ID:          room.ID,
			Type:        room.Type,
			PriceCents:  room.PriceCents,
			Available:   len(room.Beds),
			Description: room.Description,
			Photos:      room.Photos,
			Facilities:  room.Facilities,
		}
		if rd.Photos == nil {
			rd.Photos = []model.Photo{}
		}
		if rd.Facilities == nil {
			rd.Facilities = []model.Facility{}
		}
		d.Rooms = append(d.Rooms, rd)
	}
	return d
}

package model

import "time"

// Reservation records a guest's stay.  Beds assigned to the stay are
// stored in reservation_beds; the check-out date is exclusive so a bed
// becomes free again on that day.
//
// Fields:
//  ID              – primary key identifier.
//  GuestID         – guest who owns the reservation.
//  CheckIn         – first night of the stay (midnight UTC).
//  CheckOut        – departure day (midnight UTC), exclusive.
//  SpecialRequests – free text from the guest.
//  CheckInTime     – when the guest checked in (nil until then).
//  CheckOutTime    – when the guest checked out (nil until then).
//  Rooms           – rooms holding the assigned beds; each room's Beds
//                    contains only the beds of this reservation.
//  Transaction     – payment marker; nil means unpaid.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Reservation struct {
	ID              uint64       // reservations.id
	GuestID         uint64       // reservations.guest_id
	CheckIn         time.Time    // reservations.check_in
	CheckOut        time.Time    // reservations.check_out
	SpecialRequests string       // reservations.special_requests
	CheckInTime     *time.Time   // reservations.check_in_time (nullable)
	CheckOutTime    *time.Time   // reservations.check_out_time (nullable)
	Rooms           []Room       // via reservation_beds -> beds -> rooms
	Transaction     *Transaction // transactions.reservation_id (nullable)
	CreatedAt       time.Time    // reservations.created_at
	UpdatedAt       time.Time    // reservations.updated_at
}

// BedIDs flattens the beds assigned to the reservation.
func (r *Reservation) BedIDs() []uint64 {
	var ids []uint64
	for _, room := range r.Rooms {
		for _, b := range room.Beds {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

// Transaction is the payment stub linked to a reservation.  Its presence
// alone marks the reservation as paid.
type Transaction struct {
	ID            uint64    // transactions.id
	ReservationID uint64    // transactions.reservation_id
	AmountCents   uint32    // transactions.amount_cents
	Reference     *string   // transactions.reference (nullable)
	CreatedAt     time.Time // transactions.created_at
}

// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// QueueName is the durable queue carrying reservation lifecycle events.
const QueueName = "reservation.events"

// Event types.
const (
	EventReservationCreated    = "reservation.created"
	EventReservationCheckedIn  = "reservation.checked_in"
	EventReservationCheckedOut = "reservation.checked_out"
)

// ReservationEvent is published after a reservation is created, checked in
// or checked out.  It carries enough information for downstream consumers
// (front desk display, notification mailers, analytics) to act without
// querying the primary database.
type ReservationEvent struct {
	EventID       string   `json:"event_id"`
	Type          string   `json:"type"`
	ReservationID uint64   `json:"reservation_id"`
	GuestID       uint64   `json:"guest_id"`
	CheckIn       string   `json:"check_in"`
	CheckOut      string   `json:"check_out"`
	BedIDs        []uint64 `json:"bed_ids"`
	OccurredAt    string   `json:"occurred_at"`
}

// NewReservationEvent stamps a new event with a random id and the current time.
func NewReservationEvent(eventType string, reservationID, guestID uint64, checkIn, checkOut string, bedIDs []uint64) ReservationEvent {
	if bedIDs == nil {
		bedIDs = []uint64{}
	}
	return ReservationEvent{
		EventID:       uuid.NewString(),
		Type:          eventType,
		ReservationID: reservationID,
		GuestID:       guestID,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		BedIDs:        bedIDs,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
}

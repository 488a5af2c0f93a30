package service

import (
	"errors"
	"fmt"
)

// Error kinds.  Every error returned by the reservation core for a
// rejected request wraps exactly one of these, so callers can branch with
// errors.Is on the kind and still read the specific message.
var (
	ErrInvalidReservation  = errors.New("invalid reservation")
	ErrInvalidOperation    = errors.New("invalid operation")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrUnauthorized        = errors.New("forbidden")
)

// Invalid reservation requests.
var (
	ErrDuplicateRoom    = fmt.Errorf("%w: can not reserve one room multiple times", ErrInvalidReservation)
	ErrInsufficientBeds = fmt.Errorf("%w: some rooms do not have enough beds", ErrInvalidReservation)
	ErrInvalidDateRange = fmt.Errorf("%w: check-out must be after check-in", ErrInvalidReservation)
	ErrNoRoomsSelected  = fmt.Errorf("%w: at least one room must be selected", ErrInvalidReservation)
	ErrInvalidSelection = fmt.Errorf("%w: each selected room needs at least one guest", ErrInvalidReservation)
	ErrRoomNotFound     = fmt.Errorf("%w: room not found", ErrInvalidReservation)
	ErrInvalidGuests    = fmt.Errorf("%w: guests must be at least 1", ErrInvalidReservation)
)

// Invalid lifecycle transitions.
var (
	ErrWrongCheckInDay   = fmt.Errorf("%w: wrong day, can not check in today", ErrInvalidOperation)
	ErrWrongCheckOutDay  = fmt.Errorf("%w: wrong day, can not check out today", ErrInvalidOperation)
	ErrNotCheckedIn      = fmt.Errorf("%w: not checked in", ErrInvalidOperation)
	ErrAlreadyCheckedIn  = fmt.Errorf("%w: already checked in", ErrInvalidOperation)
	ErrAlreadyCheckedOut = fmt.Errorf("%w: already checked out", ErrInvalidOperation)
)

package service

import "github.com/iliyamo/hostel-reservation/internal/model"

// Selection is one room picked by a guest together with the number of
// people that will sleep in it.
type Selection struct {
	RoomID uint64 `json:"id" validate:"required"`
	Guests int    `json:"guests" validate:"required,min=1"`
}

// CheckNoDuplicateRooms reports whether every room appears at most once.
func CheckNoDuplicateRooms(selections []Selection) bool {
	seen := make(map[uint64]struct{}, len(selections))
	for _, s := range selections {
		if _, ok := seen[s.RoomID]; ok {
			return false
		}
		seen[s.RoomID] = struct{}{}
	}
	return true
}

// CheckEnoughBeds reports whether every selection fits in the free beds of
// its room.
func CheckEnoughBeds(selections []Selection, free map[uint64][]model.Bed) bool {
	for _, s := range selections {
		if s.Guests > len(free[s.RoomID]) {
			return false
		}
	}
	return true
}

// Allocate assigns beds to selections.  free maps a room id to its free
// beds in ascending id order.  Rules are applied in order and the first
// violation wins: duplicate room, then capacity of every selection, then
// the assignment itself, which takes the first Guests beds of each room.
func Allocate(selections []Selection, free map[uint64][]model.Bed) (map[uint64][]model.Bed, error) {
	if len(selections) == 0 {
		return nil, ErrNoRoomsSelected
	}
	if !CheckNoDuplicateRooms(selections) {
		return nil, ErrDuplicateRoom
	}
	for _, s := range selections {
		if s.Guests < 1 {
			return nil, ErrInvalidSelection
		}
	}
	if !CheckEnoughBeds(selections, free) {
		return nil, ErrInsufficientBeds
	}
	assigned := make(map[uint64][]model.Bed, len(selections))
	for _, s := range selections {
		beds := make([]model.Bed, s.Guests)
		copy(beds, free[s.RoomID][:s.Guests])
		assigned[s.RoomID] = beds
	}
	return assigned, nil
}

// FlattenBedIDs lists the assigned bed ids following the selection order.
func FlattenBedIDs(selections []Selection, assigned map[uint64][]model.Bed) []uint64 {
	var ids []uint64
	for _, s := range selections {
		for _, b := range assigned[s.RoomID] {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

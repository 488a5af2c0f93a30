package service

import (
	"sort"

	"github.com/iliyamo/hostel-reservation/internal/model"
)

// RoomAvailability is the per-room entry of a search result.
type RoomAvailability struct {
	ID         uint64 `json:"id"`
	Available  int    `json:"available"`
	PriceCents uint32 `json:"price"`
}

// RoomTypeAvailability groups search results by room type.
type RoomTypeAvailability struct {
	Type           string             `json:"type"`
	TotalAvailable int                `json:"totalAvailable"`
	Availability   []RoomAvailability `json:"availability"`
}

// RoomSearchResult is returned to a guest searching for a stay window.  It
// only carries counts; which exact beds get assigned is decided at
// reservation time.
type RoomSearchResult struct {
	CheckIn  string                 `json:"checkIn"`
	CheckOut string                 `json:"checkOut"`
	Guests   int                    `json:"guests"`
	Fits     bool                   `json:"fits"`
	Rooms    []RoomTypeAvailability `json:"rooms"`
}

// FreeBeds returns the beds not present in occupied, ordered by id
// ascending.  The ordering makes bed assignment deterministic: lower ids
// are always handed out first.
func FreeBeds(beds []model.Bed, occupied map[uint64]struct{}) []model.Bed {
	free := make([]model.Bed, 0, len(beds))
	for _, b := range beds {
		if _, taken := occupied[b.ID]; taken {
			continue
		}
		free = append(free, b)
	}
	sort.Slice(free, func(i, j int) bool { return free[i].ID < free[j].ID })
	return free
}

// WithFreeBeds returns a copy of room whose Beds are restricted to the free ones.
func WithFreeBeds(room model.Room, occupied map[uint64]struct{}) model.Room {
	room.Beds = FreeBeds(room.Beds, occupied)
	return room
}

// AggregateByType groups rooms (already restricted to free beds) by type.
// Types appear in the order of their first room, rooms keep their input
// order.  Fully booked rooms are listed with zero availability.
func AggregateByType(rooms []model.Room) []RoomTypeAvailability {
	out := make([]RoomTypeAvailability, 0)
	index := make(map[string]int)
	for _, r := range rooms {
		idx, ok := index[r.Type]
		if !ok {
			idx = len(out)
			index[r.Type] = idx
			out = append(out, RoomTypeAvailability{Type: r.Type, Availability: []RoomAvailability{}})
		}
		out[idx].Availability = append(out[idx].Availability, RoomAvailability{
			ID:         r.ID,
			Available:  len(r.Beds),
			PriceCents: r.PriceCents,
		})
		out[idx].TotalAvailable += len(r.Beds)
	}
	return out
}

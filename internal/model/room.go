package model

import "time"

// Room represents a bookable room of the hostel.  A room never gets
// reserved as a whole; guests are given individual beds inside it.  The
// room type groups rooms in search results (e.g. "8-bed dorm").
//
// Fields:
//  ID          – primary key identifier.
//  Type        – category name shown to guests.
//  PriceCents  – nightly price per bed in cents.
//  Description – optional free text.
//  Beds        – beds of the room; depending on the query either every
//                bed or only those free for a stay window.
//  Photos      – display-only photos.
//  Facilities  – display-only facility names.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Room struct {
	ID          uint64     // rooms.id
	Type        string     // rooms.type
	PriceCents  uint32     // rooms.price_cents
	Description *string    // rooms.description (nullable)
	Beds        []Bed      // beds.room_id = rooms.id
	Photos      []Photo    // room_photos.room_id = rooms.id
	Facilities  []Facility // room_facilities.room_id = rooms.id
	CreatedAt   time.Time  // rooms.created_at
	UpdatedAt   time.Time  // rooms.updated_at
}

// Bed is the unit of allocation.  Every bed belongs to exactly one room.
type Bed struct {
	ID     uint64 // beds.id
	RoomID uint64 // beds.room_id
	Label  string // beds.label, e.g. "A1" or "bunk 3 top"
}

// Photo is a picture attached to a room.
type Photo struct {
	URL         string  `json:"url" validate:"required,url"` // room_photos.photo_url
	Description *string `json:"description,omitempty"`       // room_photos.photo_description
}

// Facility is an amenity available in a room (locker, ensuite, ...).
type Facility struct {
	ID   uint64 `json:"id"`   // facilities.id
	Name string `json:"name"` // facilities.name
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hostel-reservation/internal/model"
)

func TestFreeBedsExcludesOccupiedAndSorts(t *testing.T) {
	occupied := map[uint64]struct{}{3: {}}
	got := FreeBeds(beds(4, 3, 1), occupied)
	assert.Equal(t, beds(1, 4), got)

	assert.Empty(t, FreeBeds(beds(3), occupied))
	assert.NotNil(t, FreeBeds(nil, nil))
}

func TestAggregateByType(t *testing.T) {
	rooms := []model.Room{
		room(1, "dorm", 1500, 1, 2),
		room(2, "private", 6000),
		room(3, "dorm", 1200, 7),
	}
	got := AggregateByType(rooms)
	require.Len(t, got, 2)

	assert.Equal(t, "dorm", got[0].Type)
	assert.Equal(t, 3, got[0].TotalAvailable)
	assert.Equal(t, []RoomAvailability{{ID: 1, Available: 2, PriceCents: 1500}, {ID: 3, Available: 1, PriceCents: 1200}}, got[0].Availability)

	assert.Equal(t, "private", got[1].Type)
	assert.Equal(t, 0, got[1].TotalAvailable)
	assert.Equal(t, []RoomAvailability{{ID: 2, Available: 0, PriceCents: 6000}}, got[1].Availability)
}

func TestAggregateByTypeEmpty(t *testing.T) {
	got := AggregateByType(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNewReservationDetail(t *testing.T) {
	desc := "sea view"
	r := &model.Reservation{
		ID:       4,
		CheckIn:  date("2024-03-01"),
		CheckOut: date("2024-03-05"),
		Rooms: []model.Room{
			{ID: 1, Type: "dorm", PriceCents: 1500, Description: &desc, Beds: beds(1, 2)},
		},
	}
	d := NewReservationDetail(r)
	assert.Equal(t, "2024-03-01", d.CheckIn)
	assert.Equal(t, "2024-03-05", d.CheckOut)
	assert.False(t, d.IsPaid)
	require.Len(t, d.Rooms, 1)
	assert.Equal(t, 2, d.Rooms[0].Available)
	assert.Equal(t, &desc, d.Rooms[0].Description)
	assert.NotNil(t, d.Rooms[0].Photos)
	assert.NotNil(t, d.Rooms[0].Facilities)

	r.Transaction = &model.Transaction{ID: 1}
	assert.True(t, NewReservationDetail(r).IsPaid)
}

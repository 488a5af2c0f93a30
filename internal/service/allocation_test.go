package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hostel-reservation/internal/model"
)

func beds(ids ...uint64) []model.Bed {
	out := make([]model.Bed, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Bed{ID: id})
	}
	return out
}

func TestAllocateRuleOrder(t *testing.T) {
	free := map[uint64][]model.Bed{1: beds(1, 2), 2: beds(3)}

	tests := []struct {
		name       string
		selections []Selection
		want       error
	}{
		{"empty", nil, ErrNoRoomsSelected},
		{"duplicate wins over capacity", []Selection{{1, 5}, {1, 5}}, ErrDuplicateRoom},
		{"zero guests", []Selection{{1, 0}}, ErrInvalidSelection},
		{"capacity", []Selection{{1, 2}, {2, 2}}, ErrInsufficientBeds},
		{"unknown room has no beds", []Selection{{9, 1}}, ErrInsufficientBeds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Allocate(tt.selections, free)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrInvalidReservation)
		})
	}
}

func TestAllocateTakesLowestFreeBeds(t *testing.T) {
	free := map[uint64][]model.Bed{
		1: FreeBeds(beds(5, 2, 9), nil),
		2: beds(11, 12, 13),
	}
	sel := []Selection{{RoomID: 2, Guests: 1}, {RoomID: 1, Guests: 2}}

	assigned, err := Allocate(sel, free)
	require.NoError(t, err)
	assert.Equal(t, beds(2, 5), assigned[1])
	assert.Equal(t, beds(11), assigned[2])
	assert.Equal(t, []uint64{11, 2, 5}, FlattenBedIDs(sel, assigned))
}

func TestAllocateDoesNotAliasFreeList(t *testing.T) {
	free := map[uint64][]model.Bed{1: beds(1, 2)}
	assigned, err := Allocate([]Selection{{1, 1}}, free)
	require.NoError(t, err)
	assigned[1][0].ID = 99
	assert.Equal(t, uint64(1), free[1][0].ID)
}

func TestCheckHelpers(t *testing.T) {
	assert.True(t, CheckNoDuplicateRooms([]Selection{{1, 1}, {2, 1}}))
	assert.False(t, CheckNoDuplicateRooms([]Selection{{1, 1}, {1, 1}}))

	free := map[uint64][]model.Bed{1: beds(1, 2)}
	assert.True(t, CheckEnoughBeds([]Selection{{1, 2}}, free))
	assert.False(t, CheckEnoughBeds([]Selection{{1, 3}}, free))
}

package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLogLine(t *testing.T) {
	ev := ReservationEvent{
		Type:          EventReservationCreated,
		ReservationID: 42,
		GuestID:       7,
		CheckIn:       "2024-03-01",
		CheckOut:      "2024-03-05",
		BedIDs:        []uint64{2, 5},
		OccurredAt:    "2024-02-20T10:00:00Z",
	}
	line := FormatLogLine(ev)
	assert.Equal(t, "[2024-02-20T10:00:00Z] reservation.created | reservation_id=42 | guest_id=7 | stay=2024-03-01..2024-03-05 | beds=[2,5]\n", line)
}

func TestHandleMessageAppendsToLog(t *testing.T) {
	dir := t.TempDir()
	for _, typ := range []string{EventReservationCreated, EventReservationCheckedIn} {
		body, err := json.Marshal(NewReservationEvent(typ, 1, 2, "2024-03-01", "2024-03-05", []uint64{3}))
		require.NoError(t, err)
		require.NoError(t, HandleMessage(dir, body))
	}
	data, err := os.ReadFile(filepath.Join(dir, "reservation.log"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "reservation.created")
	assert.Contains(t, lines[1], "reservation.checked_in")
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, HandleMessage(dir, []byte("not json")))
	assert.Error(t, HandleMessage(dir, []byte(`{"type":""}`)))
}

func TestNewReservationEventDefaults(t *testing.T) {
	ev := NewReservationEvent(EventReservationCheckedOut, 1, 2, "a", "b", nil)
	assert.NotEmpty(t, ev.EventID)
	assert.NotNil(t, ev.BedIDs)
	assert.NotEmpty(t, ev.OccurredAt)
}

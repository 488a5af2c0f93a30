package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("03/01/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = ParseDate("")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestSameDay(t *testing.T) {
	base := day("2024-03-01")
	assert.True(t, SameDay(base, base.Add(23*time.Hour+59*time.Minute)))
	assert.False(t, SameDay(base, base.Add(24*time.Hour)))
	assert.False(t, SameDay(base, base.Add(-time.Second)))
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                 string
		aIn, aOut, bIn, bOut string
		want                 bool
	}{
		{"disjoint before", "2024-03-01", "2024-03-03", "2024-03-05", "2024-03-07", false},
		{"checkout day reuse", "2024-03-01", "2024-03-05", "2024-03-05", "2024-03-07", false},
		{"checkout day reuse reversed", "2024-03-05", "2024-03-07", "2024-03-01", "2024-03-05", false},
		{"one night shared", "2024-03-01", "2024-03-05", "2024-03-04", "2024-03-07", true},
		{"contained", "2024-03-01", "2024-03-10", "2024-03-03", "2024-03-04", true},
		{"identical", "2024-03-01", "2024-03-02", "2024-03-01", "2024-03-02", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Overlaps(day(tc.aIn), day(tc.aOut), day(tc.bIn), day(tc.bOut))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNights(t *testing.T) {
	nights := Nights(day("2024-02-28"), day("2024-03-02"))
	require.Len(t, nights, 3)
	assert.Equal(t, "2024-02-28", FormatDate(nights[0]))
	assert.Equal(t, "2024-02-29", FormatDate(nights[1]))
	assert.Equal(t, "2024-03-01", FormatDate(nights[2]))

	assert.Nil(t, Nights(day("2024-03-02"), day("2024-03-02")))
	assert.Nil(t, Nights(day("2024-03-03"), day("2024-03-02")))
}

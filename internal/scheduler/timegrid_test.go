package scheduler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinutes(t *testing.T) {
	cases := map[string]int{
		"00:00": 0,
		"09:30": 570,
		"12:00": 720,
		"23:59": 1439,
	}
	for in, want := range cases {
		got, err := ToMinutes(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestToMinutesRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "9:00", "09:0", "0900", "24:00", "12:60", "ab:cd", "+1:00", "09-00", "09:00:00"} {
		_, err := ToMinutes(in)
		require.Error(t, err, in)
		var fe *FormatError
		assert.True(t, errors.As(err, &fe), in)
		assert.Equal(t, in, fe.Value)
	}
}

func TestToClockRoundTrip(t *testing.T) {
	assert.Equal(t, "00:00", ToClock(0))
	assert.Equal(t, "09:05", ToClock(545))
	for _, clock := range []string{"07:30", "13:00", "18:45"} {
		minutes, err := ToMinutes(clock)
		require.NoError(t, err)
		assert.Equal(t, clock, ToClock(minutes))
	}
}

func TestSlotsNeeded(t *testing.T) {
	assert.Equal(t, 1, SlotsNeeded(0))
	assert.Equal(t, 1, SlotsNeeded(30))
	assert.Equal(t, 2, SlotsNeeded(45))
	assert.Equal(t, 2, SlotsNeeded(60))
	assert.Equal(t, 3, SlotsNeeded(61))
}

func TestNormalizeDay(t *testing.T) {
	assert.Equal(t, "Monday", NormalizeDay(" monday "))
	assert.Equal(t, "Friday", NormalizeDay("FRIDAY"))
	assert.Equal(t, "", NormalizeDay("  "))
}

package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntervalSetWindowRequiresAdjacentSlots(t *testing.T) {
	set := NewIntervalSet(
		Interval{Start: 600, End: 630},
		Interval{Start: 540, End: 570},
		Interval{Start: 570, End: 600},
		Interval{Start: 690, End: 720},
	)

	window, ok := set.Window(0, 3)
	assert.True(t, ok)
	assert.Equal(t, Interval{Start: 540, End: 630}, window)

	_, ok = set.Window(2, 2)
	assert.False(t, ok, "630-690 gap must break the window")

	_, ok = set.Window(3, 2)
	assert.False(t, ok)
}

func TestIntervalSetRemoveTrimsPartialOverlap(t *testing.T) {
	set := NewIntervalSet(
		Interval{Start: 540, End: 570},
		Interval{Start: 570, End: 600},
		Interval{Start: 600, End: 630},
	)
	set.Remove(555, 600)

	assert.Equal(t, []Interval{{Start: 540, End: 555}, {Start: 600, End: 630}}, set.Slots())
}

func TestIntervalSetRemoveDoesNotAliasInput(t *testing.T) {
	input := []Interval{{Start: 540, End: 570}, {Start: 570, End: 600}}
	set := NewIntervalSet(input...)
	slots := set.Slots()

	set.Remove(540, 570)

	assert.Equal(t, 1, set.Len())
	assert.Equal(t, Interval{Start: 540, End: 570}, input[0])
	assert.Equal(t, Interval{Start: 540, End: 570}, slots[0])
}

func TestIntervalSetNilLen(t *testing.T) {
	var set *IntervalSet
	assert.Equal(t, 0, set.Len())
}

package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexibleBlockContiguous(t *testing.T) {
	req := Request{
		People:                map[string]Person{"ana": {}},
		Profiles:              []PersonProfile{{Name: "ana", Subjects: []SubjectRequirement{DailyRequirement{Name: "Math", DailyMinutes: 60}}}},
		Calendar:              Calendar{Days: []string{"Monday"}, StartTime: "09:00", EndTime: "14:00"},
		LunchTime:             "12:00",
		FlexibleBlockRequired: true,
	}

	res, err := NewEngine().Generate(req)
	require.NoError(t, err)
	assert.True(t, res.Success)

	flex := blocksOfKind(res.Blocks, BlockFlexible)
	require.Len(t, flex, 1)
	assert.Equal(t, "10:00", ToClock(flex[0].Start))
	assert.Equal(t, "11:00", ToClock(flex[0].End))
}

func TestFlexibleBlockFallsBackToTwoHalves(t *testing.T) {
	req := Request{
		People: map[string]Person{"ana": {BlockedIntervals: []BlockedInterval{
			{Day: "Monday", Start: "11:00", End: "11:30", Label: "Call"},
		}}},
		Calendar:              Calendar{Days: []string{"Monday"}, StartTime: "09:00", EndTime: "11:30"},
		LunchTime:             "09:30",
		FlexibleBlockRequired: true,
	}

	res, err := NewEngine().Generate(req)
	require.NoError(t, err)
	assert.True(t, res.Success)

	flex := blocksOfKind(res.Blocks, BlockFlexible)
	require.Len(t, flex, 2)
	assert.Equal(t, Interval{Start: 540, End: 570}, Interval{Start: flex[0].Start, End: flex[0].End})
	assert.Equal(t, Interval{Start: 630, End: 660}, Interval{Start: flex[1].Start, End: flex[1].End})
}

func TestFlexibleBlockConflictWhenNoRoom(t *testing.T) {
	req := Request{
		People:                map[string]Person{"ana": {}},
		Profiles:              []PersonProfile{{Name: "ana", Subjects: []SubjectRequirement{DailyRequirement{Name: "Math", DailyMinutes: 30}}}},
		Calendar:              Calendar{Days: []string{"Monday"}, StartTime: "09:00", EndTime: "10:30"},
		LunchTime:             "09:30",
		FlexibleBlockRequired: true,
	}

	res, err := NewEngine().Generate(req)
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, []string{"Could not schedule flexible block on Monday"}, res.Conflicts)
	assert.Empty(t, blocksOfKind(res.Blocks, BlockFlexible))
	assert.Len(t, sessions(res.Blocks), 1)
}

func TestFlexibleConflictsPrecedeQuotaConflicts(t *testing.T) {
	req := Request{
		People:                map[string]Person{"ana": {}},
		Profiles:              []PersonProfile{{Name: "ana", Subjects: []SubjectRequirement{DailyRequirement{Name: "Math", DailyMinutes: 90}}}},
		Calendar:              Calendar{Days: []string{"Monday"}, StartTime: "09:00", EndTime: "10:30"},
		LunchTime:             "09:30",
		FlexibleBlockRequired: true,
	}

	res, err := NewEngine().Generate(req)
	require.NoError(t, err)

	require.Len(t, res.Conflicts, 2)
	assert.Equal(t, "Could not schedule flexible block on Monday", res.Conflicts[0])
	assert.Equal(t, "ana - Math on Monday: Scheduled 0min, needed 90min daily", res.Conflicts[1])
}

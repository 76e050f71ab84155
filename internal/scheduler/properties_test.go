package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crowdedRequest() Request {
	return Request{
		People: map[string]Person{
			"ana": {
				CompatibleWith: []string{"ben", "cara"},
				BlockedIntervals: []BlockedInterval{
					{Day: "Monday", Start: "08:15", End: "09:40", Label: "School"},
					{Day: "wednesday", Start: "14:10", End: "16:00", Label: "Swim"},
				},
			},
			"ben": {
				CompatibleWith:   []string{"ana"},
				BlockedIntervals: []BlockedInterval{{Day: "Tuesday", Start: "13:00", End: "14:00"}},
			},
			"cara": {CompatibleWith: []string{"ana", "dev"}},
			"dev":  {CompatibleWith: []string{"ben"}},
		},
		Profiles: []PersonProfile{
			{Name: "ana", Subjects: []SubjectRequirement{
				DailyRequirement{Name: "Math", DailyMinutes: 45},
				WeeklyRequirement{Name: "Science", SessionsPerWeek: 2, MinutesPerSession: 60},
			}},
			{Name: "ben", Subjects: []SubjectRequirement{
				DailyRequirement{Name: "Math", DailyMinutes: 60},
				WeeklyRequirement{Name: "Art", SessionsPerWeek: 3, MinutesPerSession: 30},
			}},
			{Name: "cara", Subjects: []SubjectRequirement{
				WeeklyRequirement{Name: "Science", SessionsPerWeek: 4, MinutesPerSession: 45},
				DailyRequirement{Name: "Reading", DailyMinutes: 30},
			}},
			{Name: "dev", Subjects: []SubjectRequirement{
				DailyRequirement{Name: "Math", DailyMinutes: 90},
			}},
		},
		Calendar:              Calendar{Days: weekdays, StartTime: "09:00", EndTime: "16:00"},
		LunchTime:             "12:00",
		FlexibleBlockRequired: true,
	}
}

func TestGeneratedBlocksStayInsideWindowAndOnGrid(t *testing.T) {
	res, err := NewEngine().Generate(crowdedRequest())
	require.NoError(t, err)

	for _, block := range res.Blocks {
		assert.GreaterOrEqual(t, block.Start, 540, "%+v", block)
		assert.LessOrEqual(t, block.End, 960, "%+v", block)
		assert.Less(t, block.Start, block.End, "%+v", block)
		assert.Zero(t, block.Start%SlotMinutes, "%+v", block)
		assert.Zero(t, block.End%SlotMinutes, "%+v", block)
	}
}

func TestGeneratedSessionsNeverOverlap(t *testing.T) {
	res, err := NewEngine().Generate(crowdedRequest())
	require.NoError(t, err)

	var timeline []TimeBlock
	for _, block := range res.Blocks {
		if block.Kind != BlockBlocked {
			timeline = append(timeline, block)
		}
	}
	for i := range timeline {
		for j := i + 1; j < len(timeline); j++ {
			a, b := timeline[i], timeline[j]
			if a.Day != b.Day {
				continue
			}
			overlap := Interval{Start: a.Start, End: a.End}.Overlaps(Interval{Start: b.Start, End: b.End})
			assert.False(t, overlap, "%+v overlaps %+v", a, b)
		}
	}
}

func TestGeneratedSharedBlocksAreMutuallyCompatible(t *testing.T) {
	req := crowdedRequest()
	compat := NewCompatibility(req.People)

	res, err := NewEngine().Generate(req)
	require.NoError(t, err)

	shared := 0
	for _, block := range sessions(res.Blocks) {
		if len(block.People) > 0 {
			shared++
			assert.Greater(t, len(block.People), 1)
			assert.True(t, compat.CanShareGroup(block.People), "%+v", block)
		}
	}
	assert.Positive(t, shared)
}

func TestGeneratedSessionsRespectBlockedTime(t *testing.T) {
	req := crowdedRequest()
	res, err := NewEngine().Generate(req)
	require.NoError(t, err)

	for _, block := range sessions(res.Blocks) {
		for _, name := range block.Attendees() {
			for _, blocked := range req.People[name].BlockedIntervals {
				if !sameDay(blocked.Day, block.Day) {
					continue
				}
				start, _ := ToMinutes(blocked.Start)
				end, _ := ToMinutes(blocked.End)
				assert.False(t, Interval{Start: start, End: end}.Overlaps(Interval{Start: block.Start, End: block.End}),
					"%s attends %+v during %+v", name, block, blocked)
			}
		}
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	engine := NewEngine()
	first, err := engine.Generate(crowdedRequest())
	require.NoError(t, err)
	second, err := engine.Generate(crowdedRequest())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateWeeklySubjectOncePerDay(t *testing.T) {
	res, err := NewEngine().Generate(crowdedRequest())
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, block := range sessions(res.Blocks) {
		if block.Subject != "Science" && block.Subject != "Art" {
			continue
		}
		for _, name := range block.Attendees() {
			key := name + "/" + block.Subject + "/" + block.Day
			assert.False(t, seen[key], "%s repeats on one day", key)
			seen[key] = true
		}
	}
}

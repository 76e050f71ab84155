package scheduler

import (
	"fmt"

	"go.uber.org/zap"
)

// placeFlexible reserves FlexibleMinutes on every working day once sessions are fixed.
func (a *allocationContext) placeFlexible() {
	if !a.plan.flexible {
		return
	}
	for _, day := range a.plan.days {
		free := FreeIntervals(a.plan.window, a.occupied(day))

		if window, ok := contiguousWindow(free, FlexibleMinutes); ok {
			a.blocks = append(a.blocks, TimeBlock{Day: day, Start: window.Start, End: window.End, Kind: BlockFlexible})
			continue
		}

		if free.Len() >= 2 {
			first, second := free.At(0), free.At(1)
			if first.Minutes()+second.Minutes() >= FlexibleMinutes {
				a.blocks = append(a.blocks,
					TimeBlock{Day: day, Start: first.Start, End: first.End, Kind: BlockFlexible},
					TimeBlock{Day: day, Start: second.Start, End: second.End, Kind: BlockFlexible},
				)
				a.logger.Debug("flexible block split", zap.String("day", day),
					zap.String("first", ToClock(first.Start)), zap.String("second", ToClock(second.Start)))
				continue
			}
		}

		a.conflicts = append(a.conflicts, fmt.Sprintf("Could not schedule flexible block on %s", day))
	}
}

// occupied folds the day's blocked pieces, lunch and committed sessions into one list.
func (a *allocationContext) occupied(day string) []Interval {
	pieces := append([]Interval(nil), a.blocked[day]...)
	for _, block := range a.blocks {
		if block.Kind != BlockSession || block.Day != day {
			continue
		}
		pieces = append(pieces, slice(Interval{Start: block.Start, End: block.End})...)
	}
	return pieces
}

func contiguousWindow(free *IntervalSet, minutes int) (Interval, bool) {
	slots := SlotsNeeded(minutes)
	for i := 0; i+slots <= free.Len(); i++ {
		window, ok := free.Window(i, slots)
		if ok && window.Minutes() >= minutes {
			return Interval{Start: window.Start, End: window.Start + minutes}, true
		}
	}
	return Interval{}, false
}

package scheduler

import "sort"

// Interval is a half-open [Start, End) range in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

// Minutes returns the interval length.
func (i Interval) Minutes() int {
	return i.End - i.Start
}

// Overlaps reports whether the two intervals share any minute.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && o.Start < i.End
}

// IntervalSet is an ordered collection of disjoint free slots for one day.
// It owns its backing slice, so removing a range never leaks into another day's set.
type IntervalSet struct {
	slots []Interval
}

// NewIntervalSet copies and sorts the given slots.
func NewIntervalSet(slots ...Interval) *IntervalSet {
	owned := make([]Interval, 0, len(slots))
	for _, slot := range slots {
		if slot.End > slot.Start {
			owned = append(owned, slot)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].Start < owned[j].Start })
	return &IntervalSet{slots: owned}
}

// Len returns the number of slots in the set.
func (s *IntervalSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.slots)
}

// At returns the slot at index i.
func (s *IntervalSet) At(i int) Interval {
	return s.slots[i]
}

// Slots returns a copy of the slots in start order.
func (s *IntervalSet) Slots() []Interval {
	out := make([]Interval, len(s.slots))
	copy(out, s.slots)
	return out
}

// Window returns the span covered by n slots starting at index i when they are back to back.
func (s *IntervalSet) Window(i, n int) (Interval, bool) {
	if n <= 0 || i < 0 || i+n > len(s.slots) {
		return Interval{}, false
	}
	for k := i + 1; k < i+n; k++ {
		if s.slots[k].Start != s.slots[k-1].End {
			return Interval{}, false
		}
	}
	return Interval{Start: s.slots[i].Start, End: s.slots[i+n-1].End}, true
}

// Remove drops every minute of [start, end) from the set, trimming partially covered slots.
func (s *IntervalSet) Remove(start, end int) {
	if end <= start {
		return
	}
	kept := s.slots[:0:0]
	for _, slot := range s.slots {
		if slot.End <= start || slot.Start >= end {
			kept = append(kept, slot)
			continue
		}
		if slot.Start < start {
			kept = append(kept, Interval{Start: slot.Start, End: start})
		}
		if slot.End > end {
			kept = append(kept, Interval{Start: end, End: slot.End})
		}
	}
	s.slots = kept
}

package scheduler

import (
	"fmt"
	"sort"
)

// BlockedIntervals returns the blocked pieces of every person for day within window. It is the
// exported form of the allocator's own availability step.
func BlockedIntervals(day string, people map[string]Person, window Interval) ([]Interval, error) {
	names := make([]string, 0, len(people))
	for name := range people {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]roster, 0, len(names))
	for _, name := range names {
		entry := roster{name: name}
		for i, blocked := range people[name].BlockedIntervals {
			field := fmt.Sprintf("people.%s.blockedIntervals[%d]", name, i)
			span, err := parseSpan(field, blocked)
			if err != nil {
				return nil, err
			}
			entry.blocked = append(entry.blocked, blockedSpan{day: NormalizeDay(blocked.Day), span: span, label: blocked.Label})
		}
		entries = append(entries, entry)
	}
	return blockedIntervals(day, entries, window), nil
}

// blockedIntervals collects every person's blocked time on day, clipped to the window and cut
// into slot-sized pieces. Pieces are snapped outward to the grid so a partial overlap blocks
// the whole slot.
func blockedIntervals(day string, people []roster, window Interval) []Interval {
	var pieces []Interval
	for _, person := range people {
		for _, blocked := range person.blocked {
			if !sameDay(blocked.day, day) {
				continue
			}
			span, ok := clipToWindow(blocked.span, window)
			if !ok {
				continue
			}
			pieces = append(pieces, slice(span)...)
		}
	}
	return pieces
}

// FreeIntervals sweeps the window and returns the complement of blocked as slot-sized pieces.
func FreeIntervals(window Interval, blocked []Interval) *IntervalSet {
	sorted := make([]Interval, len(blocked))
	copy(sorted, blocked)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var free []Interval
	current := window.Start
	for _, b := range sorted {
		for current < b.Start && current < window.End {
			next := min(current+SlotMinutes, b.Start, window.End)
			free = append(free, Interval{Start: current, End: next})
			current = next
		}
		current = max(current, b.End)
	}
	for current < window.End {
		next := min(current+SlotMinutes, window.End)
		free = append(free, Interval{Start: current, End: next})
		current = next
	}
	return NewIntervalSet(free...)
}

func clipToWindow(span Interval, window Interval) (Interval, bool) {
	clipped := Interval{
		Start: max(alignDown(span.Start), window.Start),
		End:   min(alignUp(span.End), window.End),
	}
	return clipped, clipped.End > clipped.Start
}

func slice(span Interval) []Interval {
	var pieces []Interval
	for current := span.Start; current < span.End; {
		next := min(current+SlotMinutes, span.End)
		pieces = append(pieces, Interval{Start: current, End: next})
		current = next
	}
	return pieces
}

func (p *plan) isBlocked(person, day string, window Interval) bool {
	entry := p.byName[person]
	if entry == nil {
		return false
	}
	for _, blocked := range entry.blocked {
		if !sameDay(blocked.day, day) {
			continue
		}
		span := Interval{Start: alignDown(blocked.span.Start), End: alignUp(blocked.span.End)}
		if span.Overlaps(window) {
			return true
		}
	}
	return false
}

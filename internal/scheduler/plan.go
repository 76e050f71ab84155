package scheduler

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidRequest marks structurally unusable input (as opposed to malformed clock strings).
var ErrInvalidRequest = errors.New("invalid schedule request")

type blockedSpan struct {
	day   string
	span  Interval
	label string
}

type roster struct {
	name    string
	blocked []blockedSpan
}

type profile struct {
	name     string
	subjects []SubjectRequirement
	index    map[string]SubjectRequirement
}

// plan is the parsed, validated form of a Request.
type plan struct {
	days      []string
	dayIndex  map[string]int
	window    Interval
	lunch     Interval
	flexible  bool
	people    []roster
	byName    map[string]*roster
	profiles  []profile
	profileAt map[string]int
	compat    Compatibility
}

func buildPlan(req Request) (*plan, error) {
	start, err := parseField("calendar.startTime", req.Calendar.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := parseField("calendar.endTime", req.Calendar.EndTime)
	if err != nil {
		return nil, err
	}
	lunchStart, err := parseField("lunchTime", req.LunchTime)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(req.People))
	for name := range req.People {
		names = append(names, name)
	}
	sort.Strings(names)

	people := make([]roster, 0, len(names))
	for _, name := range names {
		entry := roster{name: name}
		for i, blocked := range req.People[name].BlockedIntervals {
			field := fmt.Sprintf("people.%s.blockedIntervals[%d]", name, i)
			span, err := parseSpan(field, blocked)
			if err != nil {
				return nil, err
			}
			if span.End == span.Start {
				continue
			}
			entry.blocked = append(entry.blocked, blockedSpan{
				day:   NormalizeDay(blocked.Day),
				span:  span,
				label: blocked.Label,
			})
		}
		people = append(people, entry)
	}

	p := &plan{
		dayIndex:  make(map[string]int),
		window:    Interval{Start: start, End: end},
		lunch:     Interval{Start: lunchStart, End: lunchStart + LunchMinutes},
		flexible:  req.FlexibleBlockRequired,
		people:    people,
		byName:    make(map[string]*roster, len(people)),
		profileAt: make(map[string]int, len(req.Profiles)),
		compat:    NewCompatibility(req.People),
	}
	for i := range p.people {
		p.byName[p.people[i].name] = &p.people[i]
	}

	if err := p.validateCalendar(req.Calendar.Days); err != nil {
		return nil, err
	}
	if err := p.addProfiles(req.Profiles); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *plan) validateCalendar(days []string) error {
	for _, raw := range days {
		day := NormalizeDay(raw)
		if day == "" {
			return fmt.Errorf("%w: calendar contains an empty day name", ErrInvalidRequest)
		}
		if _, seen := p.dayIndex[day]; seen {
			continue
		}
		p.dayIndex[day] = len(p.days)
		p.days = append(p.days, day)
	}
	if len(p.days) == 0 {
		return fmt.Errorf("%w: calendar has no working days", ErrInvalidRequest)
	}
	if p.window.End <= p.window.Start {
		return fmt.Errorf("%w: calendar ends at %s before it starts at %s", ErrInvalidRequest, ToClock(p.window.End), ToClock(p.window.Start))
	}
	if !onGrid(p.window.Start) || !onGrid(p.window.End) || !onGrid(p.lunch.Start) {
		return fmt.Errorf("%w: calendar and lunch times must sit on the %d-minute grid", ErrInvalidRequest, SlotMinutes)
	}
	if p.lunch.Start < p.window.Start || p.lunch.End > p.window.End {
		return fmt.Errorf("%w: lunch %s-%s falls outside working hours", ErrInvalidRequest, ToClock(p.lunch.Start), ToClock(p.lunch.End))
	}
	return nil
}

func (p *plan) addProfiles(profiles []PersonProfile) error {
	seen := make(map[string]bool, len(profiles))
	for _, in := range profiles {
		if in.Name == "" {
			return fmt.Errorf("%w: profile without a name", ErrInvalidRequest)
		}
		if seen[in.Name] {
			return fmt.Errorf("%w: duplicate profile %q", ErrInvalidRequest, in.Name)
		}
		seen[in.Name] = true

		prof := profile{name: in.Name, index: make(map[string]SubjectRequirement, len(in.Subjects))}
		for _, req := range in.Subjects {
			if err := checkRequirement(in.Name, req); err != nil {
				return err
			}
			if _, dup := prof.index[req.SubjectName()]; dup {
				return fmt.Errorf("%w: %s lists subject %q twice", ErrInvalidRequest, in.Name, req.SubjectName())
			}
			prof.index[req.SubjectName()] = req
			prof.subjects = append(prof.subjects, req)
		}
		p.profileAt[in.Name] = len(p.profiles)
		p.profiles = append(p.profiles, prof)
	}
	return nil
}

func checkRequirement(owner string, req SubjectRequirement) error {
	switch r := req.(type) {
	case DailyRequirement:
		if r.Name == "" || r.DailyMinutes < 0 {
			return fmt.Errorf("%w: %s has an invalid daily requirement", ErrInvalidRequest, owner)
		}
	case WeeklyRequirement:
		if r.Name == "" || r.SessionsPerWeek < 0 || r.MinutesPerSession < 0 {
			return fmt.Errorf("%w: %s has an invalid weekly requirement", ErrInvalidRequest, owner)
		}
	default:
		return fmt.Errorf("%w: %s has an unsupported requirement %T", ErrInvalidRequest, owner, req)
	}
	return nil
}

func (p *plan) requirement(person, subject string) SubjectRequirement {
	i, ok := p.profileAt[person]
	if !ok {
		return nil
	}
	return p.profiles[i].index[subject]
}

func parseSpan(field string, blocked BlockedInterval) (Interval, error) {
	from, err := parseField(field+".start", blocked.Start)
	if err != nil {
		return Interval{}, err
	}
	to, err := parseField(field+".end", blocked.End)
	if err != nil {
		return Interval{}, err
	}
	if to < from {
		return Interval{}, fmt.Errorf("%w: %s ends before it starts", ErrInvalidRequest, field)
	}
	return Interval{Start: from, End: to}, nil
}

func parseField(field, raw string) (int, error) {
	minutes, err := ToMinutes(raw)
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) {
			fe.Field = field
		}
		return 0, err
	}
	return minutes, nil
}

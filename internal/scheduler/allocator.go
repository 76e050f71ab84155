package scheduler

import "go.uber.org/zap"

// allocationContext carries all per-request bookkeeping. It is created by Engine.Generate and
// discarded when the call returns.
type allocationContext struct {
	plan   *plan
	policy PlacementPolicy
	logger *zap.Logger

	blocked map[string][]Interval
	free    map[string]*IntervalSet
	blocks  []TimeBlock

	minutesOnDay   map[string]map[string]map[string]int
	weeklyMinutes  map[string]map[string]int
	weeklySessions map[string]map[string]int
	subjectsOnDay  map[string]map[string]map[string]bool

	conflicts []string
}

func newAllocationContext(p *plan, policy PlacementPolicy, logger *zap.Logger) *allocationContext {
	a := &allocationContext{
		plan:           p,
		policy:         policy,
		logger:         logger,
		blocked:        make(map[string][]Interval, len(p.days)),
		free:           make(map[string]*IntervalSet, len(p.days)),
		minutesOnDay:   make(map[string]map[string]map[string]int, len(p.profiles)),
		weeklyMinutes:  make(map[string]map[string]int, len(p.profiles)),
		weeklySessions: make(map[string]map[string]int, len(p.profiles)),
		subjectsOnDay:  make(map[string]map[string]map[string]bool, len(p.profiles)),
	}
	for _, prof := range p.profiles {
		a.minutesOnDay[prof.name] = make(map[string]map[string]int, len(prof.subjects))
		a.weeklyMinutes[prof.name] = make(map[string]int, len(prof.subjects))
		a.weeklySessions[prof.name] = make(map[string]int, len(prof.subjects))
		a.subjectsOnDay[prof.name] = make(map[string]map[string]bool, len(p.days))
		for _, req := range prof.subjects {
			a.minutesOnDay[prof.name][req.SubjectName()] = make(map[string]int, len(p.days))
		}
	}
	return a
}

// seedDays places lunch and blocked entries and derives each day's free slots.
func (a *allocationContext) seedDays() {
	lunchPieces := slice(a.plan.lunch)
	for _, day := range a.plan.days {
		a.blocks = append(a.blocks, TimeBlock{Day: day, Start: a.plan.lunch.Start, End: a.plan.lunch.End, Kind: BlockLunch})

		for _, person := range a.plan.people {
			for _, blocked := range person.blocked {
				if !sameDay(blocked.day, day) {
					continue
				}
				span, ok := clipToWindow(blocked.span, a.plan.window)
				if !ok {
					continue
				}
				a.blocks = append(a.blocks, TimeBlock{Day: day, Start: span.Start, End: span.End, Kind: BlockBlocked, Label: blocked.label})
			}
		}

		pieces := blockedIntervals(day, a.plan.people, a.plan.window)
		pieces = append(pieces, lunchPieces...)
		a.blocked[day] = pieces
		a.free[day] = FreeIntervals(a.plan.window, pieces)
	}
}

// allocate runs the daily pass over every day, then the weekly pass.
func (a *allocationContext) allocate() {
	for _, pass := range []demandPass{dailyPass{}, weeklyPass{}} {
		for _, day := range a.plan.days {
			a.allocateDay(day, pass)
		}
	}
}

type subjectGroup struct {
	subject string
	people  []string
}

func (a *allocationContext) allocateDay(day string, pass demandPass) {
	var groups []subjectGroup
	position := make(map[string]int)
	for _, prof := range a.plan.profiles {
		for _, req := range prof.subjects {
			if _, ok := pass.sessionMinutes(req); !ok {
				continue
			}
			if !pass.pending(a, prof.name, req, day) {
				continue
			}
			idx, ok := position[req.SubjectName()]
			if !ok {
				idx = len(groups)
				position[req.SubjectName()] = idx
				groups = append(groups, subjectGroup{subject: req.SubjectName()})
			}
			groups[idx].people = append(groups[idx].people, prof.name)
		}
	}

	for _, group := range groups {
		a.fillSubject(day, group, pass)
	}
}

func (a *allocationContext) fillSubject(day string, group subjectGroup, pass demandPass) {
	for {
		remaining := make([]string, 0, len(group.people))
		maxMinutes := 0
		for _, name := range group.people {
			req := a.plan.requirement(name, group.subject)
			if !pass.pending(a, name, req, day) {
				continue
			}
			remaining = append(remaining, name)
			minutes, _ := pass.sessionMinutes(req)
			maxMinutes = max(maxMinutes, minutes)
		}
		if len(remaining) == 0 {
			return
		}
		if a.free[day].Len() == 0 {
			a.logger.Debug("no free slots left", zap.String("day", day), zap.String("subject", group.subject))
			return
		}

		best, ok := a.bestPlacement(day, group.subject, remaining, maxMinutes)
		if !ok {
			a.logger.Debug("subject abandoned for day",
				zap.String("day", day),
				zap.String("subject", group.subject),
				zap.Strings("remaining", remaining),
				zap.Int("minutes", maxMinutes),
			)
			return
		}
		a.commit(best, pass)
	}
}

func (a *allocationContext) bestPlacement(day, subject string, candidates []string, minutes int) (Placement, bool) {
	free := a.free[day]
	slots := SlotsNeeded(minutes)

	var best Placement
	found := false
	for i := 0; i+slots <= free.Len(); i++ {
		window, ok := free.Window(i, slots)
		if !ok || window.Minutes() < minutes {
			continue
		}
		if window.Overlaps(a.plan.lunch) {
			continue
		}
		group := a.compatibleGroup(day, window, candidates)
		if len(group) == 0 {
			continue
		}
		candidate := Placement{Day: day, Subject: subject, Window: window, Group: group}
		if !found || a.policy.Prefer(candidate, best) {
			best = candidate
			found = true
		}
	}
	return best, found
}

// compatibleGroup accumulates candidates in order; someone accepted early is never evicted.
func (a *allocationContext) compatibleGroup(day string, window Interval, candidates []string) []string {
	var group []string
	for _, name := range candidates {
		if a.plan.isBlocked(name, day, window) {
			continue
		}
		trial := make([]string, len(group), len(group)+1)
		copy(trial, group)
		trial = append(trial, name)
		if a.plan.compat.CanShareGroup(trial) {
			group = trial
		}
	}
	return group
}

func (a *allocationContext) commit(p Placement, pass demandPass) {
	block := TimeBlock{
		Day:     p.Day,
		Start:   p.Window.Start,
		End:     p.Window.End,
		Kind:    BlockSession,
		Subject: p.Subject,
	}
	if len(p.Group) == 1 {
		block.Person = p.Group[0]
	} else {
		block.People = append([]string(nil), p.Group...)
	}
	a.blocks = append(a.blocks, block)

	for _, name := range p.Group {
		pass.record(a, name, a.plan.requirement(name, p.Subject), p.Day, p.Window.Minutes())
	}
	a.free[p.Day].Remove(p.Window.Start, p.Window.End)

	a.logger.Debug("session placed",
		zap.String("day", p.Day),
		zap.String("subject", p.Subject),
		zap.String("start", ToClock(p.Window.Start)),
		zap.String("end", ToClock(p.Window.End)),
		zap.Strings("group", p.Group),
	)
}

// --- Demand passes ---

// demandPass isolates what differs between the daily and weekly passes.
type demandPass interface {
	sessionMinutes(req SubjectRequirement) (int, bool)
	pending(a *allocationContext, person string, req SubjectRequirement, day string) bool
	record(a *allocationContext, person string, req SubjectRequirement, day string, minutes int)
}

type dailyPass struct{}

func (dailyPass) sessionMinutes(req SubjectRequirement) (int, bool) {
	r, ok := req.(DailyRequirement)
	if !ok || r.DailyMinutes <= 0 {
		return 0, false
	}
	return r.DailyMinutes, true
}

func (dailyPass) pending(a *allocationContext, person string, req SubjectRequirement, day string) bool {
	r, ok := req.(DailyRequirement)
	if !ok {
		return false
	}
	return a.minutesOnDay[person][r.Name][day] < r.DailyMinutes
}

func (dailyPass) record(a *allocationContext, person string, req SubjectRequirement, day string, minutes int) {
	a.addMinutes(person, req.SubjectName(), day, minutes)
}

type weeklyPass struct{}

func (weeklyPass) sessionMinutes(req SubjectRequirement) (int, bool) {
	r, ok := req.(WeeklyRequirement)
	if !ok || r.SessionsPerWeek <= 0 || r.MinutesPerSession <= 0 {
		return 0, false
	}
	return r.MinutesPerSession, true
}

func (weeklyPass) pending(a *allocationContext, person string, req SubjectRequirement, day string) bool {
	r, ok := req.(WeeklyRequirement)
	if !ok {
		return false
	}
	if a.subjectsOnDay[person][day][r.Name] {
		return false
	}
	return a.weeklySessions[person][r.Name] < r.SessionsPerWeek
}

func (weeklyPass) record(a *allocationContext, person string, req SubjectRequirement, day string, minutes int) {
	a.addMinutes(person, req.SubjectName(), day, minutes)
	if a.subjectsOnDay[person][day] == nil {
		a.subjectsOnDay[person][day] = make(map[string]bool)
	}
	a.subjectsOnDay[person][day][req.SubjectName()] = true
}

func (a *allocationContext) addMinutes(person, subject, day string, minutes int) {
	a.minutesOnDay[person][subject][day] += minutes
	a.weeklyMinutes[person][subject] += minutes
	a.weeklySessions[person][subject]++
}

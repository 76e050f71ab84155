package scheduler

import "fmt"

const (
	messageSuccess   = "Schedule generated successfully"
	messageConflicts = "Schedule generated with conflicts"
)

// audit appends one conflict per unmet quota, in profile then subject order.
func (a *allocationContext) audit() {
	for _, prof := range a.plan.profiles {
		for _, req := range prof.subjects {
			switch r := req.(type) {
			case DailyRequirement:
				if r.DailyMinutes <= 0 {
					continue
				}
				for _, day := range a.plan.days {
					got := a.minutesOnDay[prof.name][r.Name][day]
					if got < r.DailyMinutes {
						a.conflicts = append(a.conflicts, fmt.Sprintf(
							"%s - %s on %s: Scheduled %dmin, needed %dmin daily",
							prof.name, r.Name, day, got, r.DailyMinutes))
					}
				}
			case WeeklyRequirement:
				if r.SessionsPerWeek <= 0 || r.MinutesPerSession <= 0 {
					continue
				}
				sessions := a.weeklySessions[prof.name][r.Name]
				minutes := a.weeklyMinutes[prof.name][r.Name]
				neededMinutes := r.SessionsPerWeek * r.MinutesPerSession
				if sessions < r.SessionsPerWeek {
					a.conflicts = append(a.conflicts, fmt.Sprintf(
						"%s - %s: Scheduled %d sessions, needed %d sessions per week",
						prof.name, r.Name, sessions, r.SessionsPerWeek))
				}
				if minutes < neededMinutes {
					a.conflicts = append(a.conflicts, fmt.Sprintf(
						"%s - %s: Scheduled %dmin total, needed %dmin per week (%d sessions × %dmin)",
						prof.name, r.Name, minutes, neededMinutes, r.SessionsPerWeek, r.MinutesPerSession))
				}
			}
		}
	}
}

func (a *allocationContext) result() *Result {
	res := &Result{
		Blocks:  a.blocks,
		Success: len(a.conflicts) == 0,
		Message: messageSuccess,
	}
	if !res.Success {
		res.Conflicts = append([]string(nil), a.conflicts...)
		res.Message = messageConflicts
	}
	return res
}

package scheduler

// BlockedInterval is a window during which a person cannot attend a session.
type BlockedInterval struct {
	Day   string
	Start string
	End   string
	Label string
}

// Person holds the availability and sharing preferences of one attendee.
type Person struct {
	BlockedIntervals []BlockedInterval
	CompatibleWith   []string
}

// SubjectRequirement is either a DailyRequirement or a WeeklyRequirement.
type SubjectRequirement interface {
	SubjectName() string
}

// DailyRequirement asks for a number of minutes on every working day.
type DailyRequirement struct {
	Name         string
	DailyMinutes int
}

// SubjectName implements SubjectRequirement.
func (r DailyRequirement) SubjectName() string { return r.Name }

// WeeklyRequirement asks for a number of sessions per week, each on a distinct day.
type WeeklyRequirement struct {
	Name              string
	SessionsPerWeek   int
	MinutesPerSession int
}

// SubjectName implements SubjectRequirement.
func (r WeeklyRequirement) SubjectName() string { return r.Name }

// PersonProfile lists the subject quotas owed to a person.
type PersonProfile struct {
	Name     string
	Subjects []SubjectRequirement
}

// Calendar describes the working week.
type Calendar struct {
	Days      []string
	StartTime string
	EndTime   string
}

// Request is the complete input of one allocation run.
type Request struct {
	People                map[string]Person
	Profiles              []PersonProfile
	Calendar              Calendar
	LunchTime             string
	FlexibleBlockRequired bool
}

// BlockKind classifies a committed timetable entry.
type BlockKind string

const (
	BlockSession  BlockKind = "session"
	BlockLunch    BlockKind = "lunch"
	BlockFlexible BlockKind = "flexible"
	BlockBlocked  BlockKind = "blocked"
)

// TimeBlock is one entry of the generated timetable. Start and End are minutes since midnight.
type TimeBlock struct {
	Day     string
	Start   int
	End     int
	Kind    BlockKind
	Subject string
	Person  string
	People  []string
	Label   string
}

// Attendees returns everyone attending a session block.
func (b TimeBlock) Attendees() []string {
	if b.Person != "" {
		return []string{b.Person}
	}
	return b.People
}

// Result is the generated timetable plus every unmet requirement.
type Result struct {
	Blocks    []TimeBlock
	Conflicts []string
	Success   bool
	Message   string
}

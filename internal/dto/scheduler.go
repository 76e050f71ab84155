package dto

import "github.com/noah-isme/tutor-timetable-api/internal/models"

// Subject requirement kinds.
const (
	SubjectTypeDaily  = "daily"
	SubjectTypeWeekly = "weekly"
)

// PersonAvailability is the inline form of a stored person schedule.
type PersonAvailability struct {
	BlockedIntervals []models.BlockedInterval `json:"blockedIntervals" yaml:"blockedIntervals" validate:"omitempty,dive"`
	CompatibleWith   []string                 `json:"compatibleWith" yaml:"compatibleWith" validate:"omitempty,dive,required"`
}

// SubjectRequirementRequest is a tagged union: daily subjects need dailyMinutes, weekly ones
// need sessionsPerWeek and minutesPerSession.
type SubjectRequirementRequest struct {
	Type              string `json:"type" yaml:"type" validate:"required,oneof=daily weekly"`
	Name              string `json:"name" yaml:"name" validate:"required"`
	DailyMinutes      int    `json:"dailyMinutes,omitempty" yaml:"dailyMinutes,omitempty" validate:"min=0"`
	SessionsPerWeek   int    `json:"sessionsPerWeek,omitempty" yaml:"sessionsPerWeek,omitempty" validate:"min=0"`
	MinutesPerSession int    `json:"minutesPerSession,omitempty" yaml:"minutesPerSession,omitempty" validate:"min=0"`
}

// PersonProfileRequest lists the quotas owed to one person.
type PersonProfileRequest struct {
	Name     string                      `json:"name" yaml:"name" validate:"required"`
	Subjects []SubjectRequirementRequest `json:"subjects" yaml:"subjects" validate:"omitempty,dive"`
}

// CalendarRequest describes the working week.
type CalendarRequest struct {
	Days      []string `json:"days" yaml:"days" validate:"required,min=1,dive,required"`
	StartTime string   `json:"startTime" yaml:"startTime" validate:"required"`
	EndTime   string   `json:"endTime" yaml:"endTime" validate:"required"`
}

// GenerateScheduleRequest is the body of POST /schedules/generate.
type GenerateScheduleRequest struct {
	People                map[string]PersonAvailability `json:"people" yaml:"people" validate:"omitempty,dive"`
	PersonProfiles        []PersonProfileRequest        `json:"personProfiles" yaml:"personProfiles" validate:"omitempty,dive"`
	Calendar              CalendarRequest               `json:"calendar" yaml:"calendar"`
	LunchTime             string                        `json:"lunchTime" yaml:"lunchTime" validate:"required"`
	FlexibleBlockRequired bool                          `json:"flexibleBlockRequired" yaml:"flexibleBlockRequired"`
	UsePeopleStore        bool                          `json:"usePeopleStore,omitempty" yaml:"usePeopleStore,omitempty"`
}

// TimeBlockResponse is one entry of a generated timetable.
type TimeBlockResponse struct {
	Day     string   `json:"day"`
	Start   string   `json:"start"`
	End     string   `json:"end"`
	Type    string   `json:"type"`
	Subject string   `json:"subject,omitempty"`
	Person  string   `json:"person,omitempty"`
	People  []string `json:"people,omitempty"`
	Label   string   `json:"label,omitempty"`
}

// GenerateScheduleResponse mirrors the engine result.
type GenerateScheduleResponse struct {
	Blocks    []TimeBlockResponse `json:"blocks"`
	Success   bool                `json:"success"`
	Message   string              `json:"message"`
	Conflicts []string            `json:"conflicts"`
}

// ExportScheduleQuery selects the export format.
type ExportScheduleQuery struct {
	Format string `form:"format"`
}

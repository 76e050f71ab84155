package dto

import (
	"time"

	"github.com/noah-isme/tutor-timetable-api/internal/models"
)

// UpsertPersonRequest replaces a stored schedule.
type UpsertPersonRequest struct {
	BlockedIntervals []models.BlockedInterval `json:"blockedIntervals" validate:"omitempty,dive"`
	CompatibleWith   []string                 `json:"compatibleWith" validate:"omitempty,dive,required"`
}

// UploadPeopleResponse reports the parsed content of an uploaded people file.
type UploadPeopleResponse struct {
	People map[string]models.ScheduleDocument `json:"people"`
	Saved  []string                           `json:"saved,omitempty"`
}

// ScheduleChangesRequest carries the modification times a client already knows about.
type ScheduleChangesRequest struct {
	KnownFiles map[string]time.Time `json:"knownFiles"`
}

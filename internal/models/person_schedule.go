package models

import "time"

// BlockedInterval is a stored window in which a person is unavailable.
type BlockedInterval struct {
	Day   string `json:"day" yaml:"day" validate:"required"`
	Start string `json:"start" yaml:"start" validate:"required"`
	End   string `json:"end" yaml:"end" validate:"required"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// ScheduleDocument is the persisted body of one person's schedule.
type ScheduleDocument struct {
	BlockedIntervals []BlockedInterval `json:"blockedIntervals" yaml:"blockedIntervals" validate:"dive"`
	CompatibleWith   []string          `json:"compatibleWith" yaml:"compatibleWith" validate:"dive,required"`
}

// PersonSchedule is a named schedule document with its last modification time.
type PersonSchedule struct {
	Name string `json:"name"`
	ScheduleDocument
	UpdatedAt time.Time `json:"updatedAt"`
}

// ScheduleFile describes a stored schedule without loading its body.
type ScheduleFile struct {
	Name       string    `json:"name"`
	ModifiedAt time.Time `json:"modifiedAt"`
	Size       int64     `json:"size,omitempty"`
}

// DeletionEntry keeps a deleted schedule so it can be restored.
type DeletionEntry struct {
	Name      string           `json:"name"`
	DeletedAt time.Time        `json:"deletedAt"`
	DeletedBy string           `json:"deletedBy,omitempty"`
	Schedule  ScheduleDocument `json:"schedule"`
}

// ScheduleChanges compares the store against a snapshot held by a client.
type ScheduleChanges struct {
	New      []string             `json:"new"`
	Modified []string             `json:"modified"`
	Deleted  []string             `json:"deleted"`
	Files    map[string]time.Time `json:"files"`
}

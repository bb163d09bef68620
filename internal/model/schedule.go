package model

import "time"

// Schedule anchors a (class, lab) pairing on a given date.  All seat
// and computer assignments reference a schedule.  Schedules are
// created lazily by the resolver the first time a class is planned
// against a lab; the unique key (class_id, lab_id, scheduled_date)
// makes the resolve operation idempotent under concurrent callers.
//
// Fields:
//  ID            – primary key identifier.
//  ClassID       – class being scheduled.
//  LabID         – lab being scheduled.
//  Title         – display title (e.g. "Capacity Planning - 11 NM C").
//  Description   – free-form description.
//  ScheduledDate – calendar date of the session (UTC, date only).
//  StartTime     – start of the working window, "HH:MM".
//  EndTime       – end of the working window, "HH:MM".
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Schedule struct {
	ID            uint64    // schedules.id
	ClassID       uint64    // schedules.class_id
	LabID         uint64    // schedules.lab_id
	Title         string    // schedules.title
	Description   string    // schedules.description
	ScheduledDate time.Time // schedules.scheduled_date
	StartTime     string    // schedules.start_time
	EndTime       string    // schedules.end_time
	CreatedAt     time.Time // schedules.created_at
	UpdatedAt     time.Time // schedules.updated_at
}

// Default working window applied when the resolver creates a schedule.
const (
	DefaultStartTime = "09:00"
	DefaultEndTime   = "17:00"
)

// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// Queue names for assignment lifecycle events.
const (
	QueueAssigned = "capacity.assigned"
	QueueReleased = "capacity.released"
)

// Assignment kinds carried in AssignmentEvent.Kind.
const (
	KindSeat     = "SEAT"
	KindComputer = "COMPUTER"
)

// AssignmentEvent is published whenever a seat or computer assignment
// is created or released. It carries enough denormalised context for
// downstream consumers to log or notify without querying the primary
// database. EventID is unique per event so consumers can deduplicate
// redelivered messages.
type AssignmentEvent struct {
	EventID      string  `json:"event_id"`
	Kind         string  `json:"kind"` // SEAT | COMPUTER
	AssignmentID uint64  `json:"assignment_id"`
	ScheduleID   uint64  `json:"schedule_id"`
	LabID        uint64  `json:"lab_id"`
	LabName      string  `json:"lab_name"`
	ClassID      uint64  `json:"class_id"`
	ClassName    string  `json:"class_name"`
	ResourceID   uint64  `json:"resource_id"`   // seat or computer id
	ResourceName string  `json:"resource_name"` // e.g. "Seat 4" or "CL2-PC-003"
	UserID       *uint64 `json:"user_id,omitempty"`
	UserName     string  `json:"user_name,omitempty"`
	GroupID      *uint64 `json:"group_id,omitempty"`
	GroupName    string  `json:"group_name,omitempty"`
	ActorID      uint64  `json:"actor_id"`
	OccurredAt   string  `json:"occurred_at"`
}

// NewAssignmentEvent stamps a fresh event with a unique id and the
// current UTC time.
func NewAssignmentEvent(kind string) AssignmentEvent {
	return AssignmentEvent{
		EventID:    uuid.NewString(),
		Kind:       kind,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}

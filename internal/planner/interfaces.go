package planner

import (
	"context"
	"fmt"
)

// Catalog reads labs and their physical resources.
type Catalog interface {
	ListLabs(ctx context.Context) ([]Lab, error)
	GetLab(ctx context.Context, id uint64) (LabDetail, error)
}

// Directory reads classes and their membership.
type Directory interface {
	ListClasses(ctx context.Context, labID uint64) ([]ClassSummary, error)
	Roster(ctx context.Context, classID uint64) (Roster, error)
}

// Scheduler looks up and resolves schedules.  Find is the read-only
// path used when selecting a class; Resolve is the idempotent
// create-if-missing path used before any mutation.
type Scheduler interface {
	FindSchedules(ctx context.Context, classID, labID uint64) ([]Schedule, error)
	Resolve(ctx context.Context, classID, labID uint64) (Schedule, error)
}

// Ledger reads and mutates assignments.
type Ledger interface {
	SeatAssignments(ctx context.Context, labID, scheduleID uint64) ([]SeatAssignment, error)
	ComputerAssignments(ctx context.Context, classID, labID uint64) ([]ComputerAssignment, error)
	AssignSeat(ctx context.Context, scheduleID, seatID, userID uint64) (SeatAssignment, error)
	AssignComputerToGroup(ctx context.Context, scheduleID, computerID, groupID uint64) (ComputerAssignment, error)
	DeleteSeatAssignment(ctx context.Context, id uint64) error
	DeleteComputerAssignment(ctx context.Context, id uint64) error
	UnassignedStudents(ctx context.Context, classID, labID, scheduleID uint64) ([]Student, error)
}

// Confirmer asks the user a yes/no question before a destructive
// action.  Returning false aborts the action with no side effects.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Notifier delivers non-blocking notifications.  No notification is
// ever fatal; the planner stays interactive after any failure.
type Notifier interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

// ServerError is a non-2xx response carrying the server's error
// message.  The message is surfaced to the user verbatim.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

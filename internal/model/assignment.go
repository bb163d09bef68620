package model

import "time"

// Assignment types recorded on computer assignments.
const (
	AssignmentGroup      = "GROUP"
	AssignmentIndividual = "INDIVIDUAL"
)

// SeatAssignment links a student to a seat within one schedule.  The
// database enforces at most one assignment per (schedule, seat) and
// per (schedule, student) through unique keys.
//
// Fields:
//  ID         – primary key identifier.
//  ScheduleID – schedule scoping this assignment.
//  SeatID     – seat being occupied.
//  UserID     – student occupying the seat.
//  CreatedAt  – creation timestamp.
type SeatAssignment struct {
	ID         uint64    // seat_assignments.id
	ScheduleID uint64    // seat_assignments.schedule_id
	SeatID     uint64    // seat_assignments.seat_id
	UserID     uint64    // seat_assignments.user_id
	CreatedAt  time.Time // seat_assignments.created_at
}

// ComputerAssignment links either a group or an individual student to
// a computer within one schedule.  Exactly one of GroupID and UserID
// is set, matching the assignment type.  The database enforces at
// most one assignment per (schedule, computer).
//
// Fields:
//  ID             – primary key identifier.
//  ScheduleID     – schedule scoping this assignment.
//  ComputerID     – computer being assigned.
//  GroupID        – assigned group (nil for individual assignments).
//  UserID         – assigned student (nil for group assignments).
//  AssignmentType – GROUP or INDIVIDUAL.
//  CreatedAt      – creation timestamp.
type ComputerAssignment struct {
	ID             uint64    // computer_assignments.id
	ScheduleID     uint64    // computer_assignments.schedule_id
	ComputerID     uint64    // computer_assignments.computer_id
	GroupID        *uint64   // computer_assignments.group_id (nullable)
	UserID         *uint64   // computer_assignments.user_id (nullable)
	AssignmentType string    // computer_assignments.assignment_type
	CreatedAt      time.Time // computer_assignments.created_at
}

package model

import "time"

// Class represents a cohort of students (e.g. "11 NM C").  Group and
// student counts are derived at query time, not stored.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – class name, unique.
//  Grade     – grade level (e.g. "11").
//  Stream    – academic stream (e.g. "NM").
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Class struct {
	ID        uint64    // classes.id
	Name      string    // classes.name
	Grade     string    // classes.grade
	Stream    string    // classes.stream
	CreatedAt time.Time // classes.created_at
	UpdatedAt time.Time // classes.updated_at
}

// Enrollment links a student to a class.  A student is enrolled in at
// most one row per class.
type Enrollment struct {
	ID        uint64    // enrollments.id
	ClassID   uint64    // enrollments.class_id
	UserID    uint64    // enrollments.user_id
	CreatedAt time.Time // enrollments.created_at
}

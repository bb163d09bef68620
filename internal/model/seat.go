package model

import "time"

// Seat describes a physical seat in a lab.  Seats are uniquely
// identified by their lab and sequence number.  A seat whose
// IsAvailable flag is false is under maintenance and must never be
// assigned, even if an assignment row already references it.
//
// Fields:
//  ID          – primary key identifier.
//  LabID       – lab to which this seat belongs.
//  SeqNumber   – position of the seat within the lab (1-based).
//  IsAvailable – false when the seat is under maintenance.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Seat struct {
	ID          uint64    // seats.id
	LabID       uint64    // seats.lab_id
	SeqNumber   uint32    // seats.seq_number
	IsAvailable bool      // seats.is_available
	CreatedAt   time.Time // seats.created_at
	UpdatedAt   time.Time // seats.updated_at
}

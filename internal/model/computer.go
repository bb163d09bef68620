package model

import "time"

// Computer describes a workstation inside a lab.  Computers are
// identified by their lab and sequence number; the name is derived
// from the lab code (e.g. "CL2-PC-003").  A computer may carry at
// most one active assignment per schedule.
//
// Fields:
//  ID           – primary key identifier.
//  LabID        – lab to which this computer belongs.
//  Name         – generated name, unique per lab.
//  SeqNumber    – position of the computer within the lab (1-based).
//  IsFunctional – false when the machine is broken or removed.
//  Spec         – free-form hardware description (nil when unspecified).
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Computer struct {
	ID           uint64    // computers.id
	LabID        uint64    // computers.lab_id
	Name         string    // computers.name
	SeqNumber    uint32    // computers.seq_number
	IsFunctional bool      // computers.is_functional
	Spec         *string   // computers.spec (nullable)
	CreatedAt    time.Time // computers.created_at
	UpdatedAt    time.Time // computers.updated_at
}

package model

import "time"

// Lab represents a computer laboratory room.  A lab contains a fixed
// number of computers and seats which are generated when the lab is
// created.  Within a planning session labs are treated as immutable
// reference data.  This struct corresponds to a row in the `labs` table.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – human readable lab name (e.g. "Computer Lab 2").
//  Code          – short code used to derive computer names (e.g. "CL2").
//  Location      – building/floor description.
//  ComputerCount – total number of computers in the lab.
//  SeatCount     – total number of seats in the lab.
//  CreatedAt     – timestamp when the lab was created.
//  UpdatedAt     – timestamp of last update.
type Lab struct {
	ID            uint64    // labs.id
	Name          string    // labs.name
	Code          string    // labs.code
	Location      string    // labs.location
	ComputerCount uint32    // labs.computer_count
	SeatCount     uint32    // labs.seat_count
	CreatedAt     time.Time // labs.created_at
	UpdatedAt     time.Time // labs.updated_at
}

package planner

// Wire types decoded from the capacity planning API.  Field tags match
// the server's JSON representation.

// Lab is a catalog entry.
type Lab struct {
	ID            uint64 `json:"id"`
	Name          string `json:"name"`
	Code          string `json:"code"`
	Location      string `json:"location"`
	ComputerCount uint32 `json:"computer_count"`
	SeatCount     uint32 `json:"seat_count"`
}

// Computer is one machine inside a lab.
type Computer struct {
	ID           uint64  `json:"id"`
	LabID        uint64  `json:"lab_id"`
	Name         string  `json:"name"`
	SeqNumber    uint32  `json:"seq_number"`
	IsFunctional bool    `json:"is_functional"`
	Spec         *string `json:"spec"`
}

// Seat is one seat inside a lab.  IsAvailable false means the seat is
// under maintenance.
type Seat struct {
	ID          uint64 `json:"id"`
	LabID       uint64 `json:"lab_id"`
	SeqNumber   uint32 `json:"seq_number"`
	IsAvailable bool   `json:"is_available"`
}

// LabDetail bundles a lab with its computers and seats.
type LabDetail struct {
	Lab       Lab        `json:"lab"`
	Computers []Computer `json:"computers"`
	Seats     []Seat     `json:"seats"`
}

// ClassSummary is a class with derived counts.
type ClassSummary struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	Grade        string `json:"grade"`
	Stream       string `json:"stream"`
	GroupCount   uint32 `json:"group_count"`
	StudentCount uint32 `json:"student_count"`
}

// Student is an enrolled class member.
type Student struct {
	ID       uint64 `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// GroupMember is one student inside a group with their role.
type GroupMember struct {
	UserID   uint64 `json:"user_id"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Group is a working group with its members.
type Group struct {
	ID         uint64        `json:"id"`
	ClassID    uint64        `json:"class_id"`
	Name       string        `json:"name"`
	MaxMembers uint32        `json:"max_members"`
	Members    []GroupMember `json:"members"`
}

// Roster is the full membership view of a class.
type Roster struct {
	Students []Student `json:"students"`
	Groups   []Group   `json:"groups"`
}

// Schedule anchors a (class, lab, date) planning session.
type Schedule struct {
	ID            uint64 `json:"id"`
	ClassID       uint64 `json:"class_id"`
	LabID         uint64 `json:"lab_id"`
	Title         string `json:"title"`
	ScheduledDate string `json:"scheduled_date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
}

// SeatAssignment links a student to a seat within a schedule.
type SeatAssignment struct {
	ID            uint64 `json:"id"`
	ScheduleID    uint64 `json:"schedule_id"`
	SeatID        uint64 `json:"seat_id"`
	SeatSeqNumber uint32 `json:"seat_seq_number"`
	UserID        uint64 `json:"user_id"`
	StudentName   string `json:"student_name"`
}

// ComputerAssignment links a group or student to a computer within a
// schedule.
type ComputerAssignment struct {
	ID             uint64  `json:"id"`
	ScheduleID     uint64  `json:"schedule_id"`
	ComputerID     uint64  `json:"computer_id"`
	ComputerName   string  `json:"computer_name"`
	AssignmentType string  `json:"assignment_type"`
	GroupID        *uint64 `json:"group_id,omitempty"`
	GroupName      *string `json:"group_name,omitempty"`
	UserID         *uint64 `json:"user_id,omitempty"`
	StudentName    *string `json:"student_name,omitempty"`
}

// Seat status values derived by the planner.
const (
	StatusAvailable   = "available"
	StatusReserved    = "reserved"
	StatusMaintenance = "maintenance"
)

package planner

import (
	"context"
	"fmt"
	"time"
)

// mockBackend is an in-memory stand-in for the API implementing
// Catalog, Directory, Scheduler and Ledger.  It mirrors the server's
// invariants: idempotent schedule resolution and unique keys on
// (schedule, seat), (schedule, student) and (schedule, computer).
type mockBackend struct {
	labs    map[uint64]LabDetail
	classes []ClassSummary
	rosters map[uint64]Roster

	schedules      []Schedule
	nextScheduleID uint64

	seatAssignments     map[uint64]SeatAssignment
	computerAssignments map[uint64]ComputerAssignment
	nextAssignmentID    uint64

	enrolled map[uint64][]Student // class id → students

	err         error // when set, every call fails with it
	deleteCalls int

	// onComputerAssignments runs just before ComputerAssignments
	// returns, letting tests interleave a selection change with an
	// in-flight refresh.
	onComputerAssignments func()
}

func newMockBackend() *mockBackend {
	return &mockBackend{
		labs:                map[uint64]LabDetail{},
		rosters:             map[uint64]Roster{},
		nextScheduleID:      1,
		seatAssignments:     map[uint64]SeatAssignment{},
		computerAssignments: map[uint64]ComputerAssignment{},
		nextAssignmentID:    1,
		enrolled:            map[uint64][]Student{},
	}
}

func (m *mockBackend) ListLabs(_ context.Context) ([]Lab, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]Lab, 0, len(m.labs))
	for _, d := range m.labs {
		out = append(out, d.Lab)
	}
	return out, nil
}

func (m *mockBackend) GetLab(_ context.Context, id uint64) (LabDetail, error) {
	if m.err != nil {
		return LabDetail{}, m.err
	}
	d, ok := m.labs[id]
	if !ok {
		return LabDetail{}, &ServerError{Status: 404, Message: "lab not found"}
	}
	return d, nil
}

func (m *mockBackend) ListClasses(_ context.Context, _ uint64) ([]ClassSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.classes, nil
}

func (m *mockBackend) Roster(_ context.Context, classID uint64) (Roster, error) {
	if m.err != nil {
		return Roster{}, m.err
	}
	return m.rosters[classID], nil
}

func (m *mockBackend) FindSchedules(_ context.Context, classID, labID uint64) ([]Schedule, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []Schedule
	for _, s := range m.schedules {
		if s.ClassID == classID && s.LabID == labID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockBackend) Resolve(_ context.Context, classID, labID uint64) (Schedule, error) {
	if m.err != nil {
		return Schedule{}, m.err
	}
	today := time.Now().UTC().Format("2006-01-02")
	for _, s := range m.schedules {
		if s.ClassID == classID && s.LabID == labID && s.ScheduledDate == today {
			return s, nil
		}
	}
	s := Schedule{
		ID:            m.nextScheduleID,
		ClassID:       classID,
		LabID:         labID,
		Title:         "Capacity Planning",
		ScheduledDate: today,
		StartTime:     "09:00",
		EndTime:       "17:00",
	}
	m.nextScheduleID++
	m.schedules = append(m.schedules, s)
	return s, nil
}

func (m *mockBackend) SeatAssignments(_ context.Context, _, scheduleID uint64) ([]SeatAssignment, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []SeatAssignment
	for _, a := range m.seatAssignments {
		if scheduleID == 0 || a.ScheduleID == scheduleID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockBackend) ComputerAssignments(_ context.Context, _, _ uint64) ([]ComputerAssignment, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []ComputerAssignment
	for _, a := range m.computerAssignments {
		out = append(out, a)
	}
	if m.onComputerAssignments != nil {
		m.onComputerAssignments()
	}
	return out, nil
}

func (m *mockBackend) AssignSeat(_ context.Context, scheduleID, seatID, userID uint64) (SeatAssignment, error) {
	if m.err != nil {
		return SeatAssignment{}, m.err
	}
	for _, l := range m.labs {
		for _, s := range l.Seats {
			if s.ID == seatID && !s.IsAvailable {
				return SeatAssignment{}, &ServerError{Status: 422, Message: "seat is under maintenance"}
			}
		}
	}
	for _, a := range m.seatAssignments {
		if a.ScheduleID == scheduleID && a.SeatID == seatID {
			return SeatAssignment{}, &ServerError{Status: 409, Message: "seat is already assigned in this schedule"}
		}
		if a.ScheduleID == scheduleID && a.UserID == userID {
			return SeatAssignment{}, &ServerError{Status: 409, Message: "student already has a seat in this schedule"}
		}
	}
	a := SeatAssignment{
		ID:          m.nextAssignmentID,
		ScheduleID:  scheduleID,
		SeatID:      seatID,
		UserID:      userID,
		StudentName: fmt.Sprintf("student %d", userID),
	}
	m.nextAssignmentID++
	m.seatAssignments[a.ID] = a
	return a, nil
}

func (m *mockBackend) AssignComputerToGroup(_ context.Context, scheduleID, computerID, groupID uint64) (ComputerAssignment, error) {
	if m.err != nil {
		return ComputerAssignment{}, m.err
	}
	for _, a := range m.computerAssignments {
		if a.ScheduleID == scheduleID && a.ComputerID == computerID {
			return ComputerAssignment{}, &ServerError{Status: 409, Message: "computer is already assigned in this schedule"}
		}
	}
	gid := groupID
	a := ComputerAssignment{
		ID:             m.nextAssignmentID,
		ScheduleID:     scheduleID,
		ComputerID:     computerID,
		AssignmentType: "GROUP",
		GroupID:        &gid,
	}
	m.nextAssignmentID++
	m.computerAssignments[a.ID] = a
	return a, nil
}

func (m *mockBackend) DeleteSeatAssignment(_ context.Context, id uint64) error {
	m.deleteCalls++
	if m.err != nil {
		return m.err
	}
	if _, ok := m.seatAssignments[id]; !ok {
		return &ServerError{Status: 404, Message: "assignment not found"}
	}
	delete(m.seatAssignments, id)
	return nil
}

func (m *mockBackend) DeleteComputerAssignment(_ context.Context, id uint64) error {
	m.deleteCalls++
	if m.err != nil {
		return m.err
	}
	if _, ok := m.computerAssignments[id]; !ok {
		return &ServerError{Status: 404, Message: "assignment not found"}
	}
	delete(m.computerAssignments, id)
	return nil
}

func (m *mockBackend) UnassignedStudents(_ context.Context, classID, _, scheduleID uint64) ([]Student, error) {
	if m.err != nil {
		return nil, m.err
	}
	seated := map[uint64]bool{}
	for _, a := range m.seatAssignments {
		if a.ScheduleID == scheduleID {
			seated[a.UserID] = true
		}
	}
	var out []Student
	for _, s := range m.enrolled[classID] {
		if !seated[s.ID] {
			out = append(out, s)
		}
	}
	return out, nil
}

// mockConfirmer answers every prompt with a fixed decision.
type mockConfirmer struct {
	answer  bool
	prompts []string
}

func (m *mockConfirmer) Confirm(prompt string) bool {
	m.prompts = append(m.prompts, prompt)
	return m.answer
}

// mockNotifier records every notification.
type mockNotifier struct {
	infos  []string
	warns  []string
	errors []string
}

func (m *mockNotifier) Info(msg string)  { m.infos = append(m.infos, msg) }
func (m *mockNotifier) Warn(msg string)  { m.warns = append(m.warns, msg) }
func (m *mockNotifier) Error(msg string) { m.errors = append(m.errors, msg) }

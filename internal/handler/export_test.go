package handler

import (
	"testing"

	"github.com/labsyncpro/labsyncpro/internal/model"
	"github.com/labsyncpro/labsyncpro/internal/repository"
)

func strPtr(s string) *string { return &s }

func TestBuildCapacityWorkbook(t *testing.T) {
	lab := &model.Lab{ID: 2, Name: "Computer Lab 2", Code: "CL2"}
	seats := []model.Seat{
		{ID: 201, LabID: 2, SeqNumber: 1, IsAvailable: true},
		{ID: 202, LabID: 2, SeqNumber: 2, IsAvailable: true},
		{ID: 203, LabID: 2, SeqNumber: 3, IsAvailable: false},
	}
	computers := []model.Computer{
		{ID: 101, LabID: 2, Name: "CL2-PC-001", SeqNumber: 1, IsFunctional: true},
		{ID: 102, LabID: 2, Name: "CL2-PC-002", SeqNumber: 2, IsFunctional: false},
	}
	seatAssignments := []repository.SeatAssignmentDetail{
		{ID: 1, ScheduleID: 9, SeatID: 202, SeatSeqNumber: 2, UserID: 301, StudentName: "Aicha Benali"},
		// Assigned but the seat is down: maintenance must win.
		{ID: 2, ScheduleID: 9, SeatID: 203, SeatSeqNumber: 3, UserID: 302, StudentName: "Karim Haddad"},
	}
	computerAssignments := []repository.ComputerAssignmentDetail{
		{ID: 3, ScheduleID: 9, ComputerID: 101, ComputerName: "CL2-PC-001", AssignmentType: "GROUP", GroupName: strPtr("Group A")},
	}

	f, err := BuildCapacityWorkbook(lab, seats, computers, seatAssignments, computerAssignments)
	if err != nil {
		t.Fatalf("BuildCapacityWorkbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Seats" || sheets[1] != "Computers" {
		t.Fatalf("sheet list = %v, want [Seats Computers]", sheets)
	}

	cell := func(sheet, ref string) string {
		v, err := f.GetCellValue(sheet, ref)
		if err != nil {
			t.Fatalf("GetCellValue(%s!%s): %v", sheet, ref, err)
		}
		return v
	}

	if got := cell("Seats", "A1"); got != "Seat" {
		t.Errorf("Seats!A1 = %q", got)
	}
	if got := cell("Seats", "B2"); got != "available" {
		t.Errorf("free seat status = %q, want available", got)
	}
	if got := cell("Seats", "B3"); got != "reserved" {
		t.Errorf("assigned seat status = %q, want reserved", got)
	}
	if got := cell("Seats", "C3"); got != "Aicha Benali" {
		t.Errorf("assigned seat student = %q", got)
	}
	if got := cell("Seats", "B4"); got != "maintenance" {
		t.Errorf("broken assigned seat status = %q, want maintenance", got)
	}

	if got := cell("Computers", "A2"); got != "CL2-PC-001" {
		t.Errorf("Computers!A2 = %q", got)
	}
	if got := cell("Computers", "C2"); got != "Group A" {
		t.Errorf("assigned computer assignee = %q, want Group A", got)
	}
	if got := cell("Computers", "B3"); got != "FALSE" {
		t.Errorf("non-functional flag = %q, want FALSE", got)
	}
	if got := cell("Computers", "C3"); got != "" {
		t.Errorf("unassigned computer assignee = %q, want empty", got)
	}
}

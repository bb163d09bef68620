package handler

import (
	"testing"

	"github.com/labsyncpro/labsyncpro/internal/model"
)

func TestComputerName(t *testing.T) {
	cases := []struct {
		code string
		seq  uint32
		want string
	}{
		{"CL2", 3, "CL2-PC-003"},
		{"CL2", 19, "CL2-PC-019"},
		{"LAB1", 120, "LAB1-PC-120"},
		{"X", 1, "X-PC-001"},
	}
	for _, tc := range cases {
		if got := computerName(tc.code, tc.seq); got != tc.want {
			t.Errorf("computerName(%q, %d) = %q, want %q", tc.code, tc.seq, got, tc.want)
		}
	}
}

func TestBuildComputers(t *testing.T) {
	lab := &model.Lab{ID: 5, Code: "CL2", ComputerCount: 19}
	computers := buildComputers(lab)
	if len(computers) != 19 {
		t.Fatalf("got %d computers, want 19", len(computers))
	}
	if computers[0].SeqNumber != 1 || computers[0].Name != "CL2-PC-001" {
		t.Errorf("first computer = %d %q", computers[0].SeqNumber, computers[0].Name)
	}
	if computers[18].SeqNumber != 19 || computers[18].Name != "CL2-PC-019" {
		t.Errorf("last computer = %d %q", computers[18].SeqNumber, computers[18].Name)
	}
	for _, cp := range computers {
		if cp.LabID != 5 {
			t.Fatalf("computer %q bound to lab %d, want 5", cp.Name, cp.LabID)
		}
	}
}

func TestBuildSeats(t *testing.T) {
	lab := &model.Lab{ID: 5, SeatCount: 24}
	seats := buildSeats(lab)
	if len(seats) != 24 {
		t.Fatalf("got %d seats, want 24", len(seats))
	}
	if seats[0].SeqNumber != 1 || seats[23].SeqNumber != 24 {
		t.Errorf("sequence range = %d..%d, want 1..24", seats[0].SeqNumber, seats[23].SeqNumber)
	}
	for _, s := range seats {
		if s.LabID != 5 {
			t.Fatalf("seat %d bound to lab %d, want 5", s.SeqNumber, s.LabID)
		}
	}
}

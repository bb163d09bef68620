package handler

import (
	"strings"
	"testing"
	"time"

	"github.com/labsyncpro/labsyncpro/internal/model"
)

func TestBuildScheduleICal(t *testing.T) {
	s := &model.Schedule{
		ID:            12,
		ClassID:       7,
		LabID:         2,
		Title:         "Capacity Planning - 11 NM C",
		Description:   "Weekly lab session",
		ScheduledDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		StartTime:     "09:00",
		EndTime:       "17:00",
		CreatedAt:     time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
	lab := &model.Lab{Name: "Computer Lab 2", Location: "Building A, Floor 2"}

	data, err := BuildScheduleICal(s, lab)
	if err != nil {
		t.Fatalf("BuildScheduleICal: %v", err)
	}
	cal := string(data)

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:schedule-12@labsyncpro",
		"DTSTART:20260310T090000Z",
		"DTEND:20260310T170000Z",
		"SUMMARY:Capacity Planning - 11 NM C",
		"DESCRIPTION:Weekly lab session",
		"END:VEVENT",
		"END:VCALENDAR",
	} {
		if !strings.Contains(cal, want) {
			t.Errorf("calendar missing %q:\n%s", want, cal)
		}
	}
	if !strings.Contains(cal, "LOCATION:Computer Lab 2 (Building A") {
		t.Errorf("calendar missing location:\n%s", cal)
	}
}

func TestBuildScheduleICalOmitsEmptyDescription(t *testing.T) {
	s := &model.Schedule{
		ID:            3,
		Title:         "Session",
		ScheduledDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		StartTime:     "09:00",
		EndTime:       "17:00",
	}
	data, err := BuildScheduleICal(s, &model.Lab{Name: "Lab"})
	if err != nil {
		t.Fatalf("BuildScheduleICal: %v", err)
	}
	if strings.Contains(string(data), "DESCRIPTION") {
		t.Error("empty description rendered as a DESCRIPTION property")
	}
}

func TestBuildScheduleICalRejectsBadClock(t *testing.T) {
	s := &model.Schedule{
		ID:            3,
		Title:         "Session",
		ScheduledDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		StartTime:     "9 o'clock",
		EndTime:       "17:00",
	}
	if _, err := BuildScheduleICal(s, &model.Lab{Name: "Lab"}); err == nil {
		t.Error("expected error for malformed start time")
	}
}

func TestScheduleInstant(t *testing.T) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	got, err := scheduleInstant(date, "14:30")
	if err != nil {
		t.Fatalf("scheduleInstant: %v", err)
	}
	want := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("scheduleInstant = %v, want %v", got, want)
	}
}

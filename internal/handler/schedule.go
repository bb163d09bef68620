package handler

// schedule.go implements schedule lookup, creation, idempotent
// resolution for capacity planning, and iCalendar export.

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/labstack/echo/v4"

	"github.com/labsyncpro/labsyncpro/internal/model"
	"github.com/labsyncpro/labsyncpro/internal/repository"
)

// ScheduleHandler serves the /v1/schedules endpoints.
type ScheduleHandler struct {
	ScheduleRepo *repository.ScheduleRepo
	ClassRepo    *repository.ClassRepo
	LabRepo      *repository.LabRepo
}

// NewScheduleHandler constructs a ScheduleHandler.  All dependencies
// must be non-nil.
func NewScheduleHandler(scheduleRepo *repository.ScheduleRepo, classRepo *repository.ClassRepo, labRepo *repository.LabRepo) *ScheduleHandler {
	if scheduleRepo == nil || classRepo == nil || labRepo == nil {
		panic("nil repository passed to NewScheduleHandler")
	}
	return &ScheduleHandler{ScheduleRepo: scheduleRepo, ClassRepo: classRepo, LabRepo: labRepo}
}

func scheduleJSON(s *model.Schedule) echo.Map {
	return echo.Map{
		"id":             s.ID,
		"class_id":       s.ClassID,
		"lab_id":         s.LabID,
		"title":          s.Title,
		"description":    s.Description,
		"scheduled_date": s.ScheduledDate.Format("2006-01-02"),
		"start_time":     s.StartTime,
		"end_time":       s.EndTime,
	}
}

// List handles GET /v1/schedules?class_id=&lab_id=.  Both filters are
// required; results are newest first.
func (h *ScheduleHandler) List(c echo.Context) error {
	classID, err := queryID(c, "class_id")
	if err != nil || classID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "class_id is required"})
	}
	labID, err := queryID(c, "lab_id")
	if err != nil || labID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "lab_id is required"})
	}
	schedules, err := h.ScheduleRepo.FindByClassAndLab(c.Request().Context(), classID, labID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	items := make([]echo.Map, 0, len(schedules))
	for i := range schedules {
		items = append(items, scheduleJSON(&schedules[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Create handles POST /v1/schedules.  A second schedule for the same
// class, lab and date is rejected with 409.
func (h *ScheduleHandler) Create(c echo.Context) error {
	var body struct {
		ClassID       uint64 `json:"class_id"`
		LabID         uint64 `json:"lab_id"`
		Title         string `json:"title"`
		Description   string `json:"description"`
		ScheduledDate string `json:"scheduled_date"`
		StartTime     string `json:"start_time"`
		EndTime       string `json:"end_time"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ClassID == 0 || body.LabID == 0 || body.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "class_id, lab_id and title are required"})
	}
	date, err := time.ParseInLocation("2006-01-02", body.ScheduledDate, time.UTC)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "scheduled_date must be YYYY-MM-DD"})
	}
	if body.StartTime == "" {
		body.StartTime = model.DefaultStartTime
	}
	if body.EndTime == "" {
		body.EndTime = model.DefaultEndTime
	}
	s := &model.Schedule{
		ClassID:       body.ClassID,
		LabID:         body.LabID,
		Title:         body.Title,
		Description:   body.Description,
		ScheduledDate: date,
		StartTime:     body.StartTime,
		EndTime:       body.EndTime,
	}
	if err := h.ScheduleRepo.Create(c.Request().Context(), s); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "schedule already exists for this class, lab and date"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create schedule"})
	}
	return c.JSON(http.StatusCreated, scheduleJSON(s))
}

// Resolve handles POST /v1/schedules/resolve.  It returns the schedule
// anchoring the given (class, lab, date) triple, creating it on first
// use.  The operation is idempotent: concurrent callers for the same
// triple all receive the same schedule.
func (h *ScheduleHandler) Resolve(c echo.Context) error {
	var body struct {
		ClassID uint64 `json:"class_id"`
		LabID   uint64 `json:"lab_id"`
		Date    string `json:"date"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ClassID == 0 || body.LabID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "class_id and lab_id are required"})
	}
	date := time.Now().UTC().Truncate(24 * time.Hour)
	if body.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", body.Date, time.UTC)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
		date = parsed
	}
	ctx := c.Request().Context()
	cl, err := h.ClassRepo.GetByID(ctx, body.ClassID)
	if err != nil {
		if errors.Is(err, repository.ErrClassNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "class not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if _, err := h.LabRepo.GetByID(ctx, body.LabID); err != nil {
		if errors.Is(err, repository.ErrLabNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lab not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	s, err := h.ScheduleRepo.ResolveForDate(ctx, body.ClassID, body.LabID, cl.Name, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not resolve schedule"})
	}
	return c.JSON(http.StatusOK, echo.Map{"schedule": scheduleJSON(s)})
}

// ExportICal handles GET /v1/schedules/:id/ical and returns the
// schedule as a single-event iCalendar file.
func (h *ScheduleHandler) ExportICal(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	s, err := h.ScheduleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	lab, err := h.LabRepo.GetByID(ctx, s.LabID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	data, err := BuildScheduleICal(s, lab)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not build calendar"})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="schedule.ics"`)
	return c.Blob(http.StatusOK, "text/calendar", data)
}

// BuildScheduleICal renders a schedule as an iCalendar document with
// one VEVENT.  The working window times are interpreted in UTC.
func BuildScheduleICal(s *model.Schedule, lab *model.Lab) ([]byte, error) {
	start, err := scheduleInstant(s.ScheduledDate, s.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := scheduleInstant(s.ScheduledDate, s.EndTime)
	if err != nil {
		return nil, err
	}
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	ev := cal.AddEvent(fmt.Sprintf("schedule-%d@labsyncpro", s.ID))
	ev.SetCreatedTime(s.CreatedAt)
	ev.SetDtStampTime(time.Now().UTC())
	ev.SetStartAt(start)
	ev.SetEndAt(end)
	ev.SetSummary(s.Title)
	if s.Description != "" {
		ev.SetDescription(s.Description)
	}
	loc := lab.Name
	if lab.Location != "" {
		loc += " (" + lab.Location + ")"
	}
	ev.SetLocation(loc)
	return []byte(cal.Serialize()), nil
}

// scheduleInstant combines a calendar date with an "HH:MM" clock value.
func scheduleInstant(date time.Time, clock string) (time.Time, error) {
	t, err := time.ParseInLocation("15:04", clock, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

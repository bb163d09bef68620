package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/labsyncpro/labsyncpro/internal/model"
)

// ErrScheduleNotFound indicates that a schedule was not located in the DB.
var ErrScheduleNotFound = errors.New("schedule not found")

// ScheduleRepo provides data access to schedules, the anchor records
// that all seat and computer assignments reference.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo returns a new ScheduleRepo bound to the given database.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

const scheduleColumns = `id, class_id, lab_id, title, description, scheduled_date, start_time, end_time, created_at, updated_at`

func scanSchedule(row interface{ Scan(...any) error }, s *model.Schedule) error {
	return row.Scan(&s.ID, &s.ClassID, &s.LabID, &s.Title, &s.Description,
		&s.ScheduledDate, &s.StartTime, &s.EndTime, &s.CreatedAt, &s.UpdatedAt)
}

// GetByID retrieves a schedule by its ID.  It returns
// ErrScheduleNotFound if no row matches.
func (r *ScheduleRepo) GetByID(ctx context.Context, id uint64) (*model.Schedule, error) {
	const q = `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = ?`
	var s model.Schedule
	if err := scanSchedule(r.db.QueryRowContext(ctx, q, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindByClassAndLab returns all schedules for the pair ordered most
// recent date first.  An empty slice means no schedule exists yet;
// callers on the read-only path must not create one.
func (r *ScheduleRepo) FindByClassAndLab(ctx context.Context, classID, labID uint64) ([]model.Schedule, error) {
	const q = `SELECT ` + scheduleColumns + ` FROM schedules
	           WHERE class_id = ? AND lab_id = ?
	           ORDER BY scheduled_date DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, classID, labID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Schedule, 0)
	for rows.Next() {
		var s model.Schedule
		if err := scanSchedule(rows, &s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts an explicit schedule row.  A duplicate
// (class, lab, date) yields ErrConflict.
func (r *ScheduleRepo) Create(ctx context.Context, s *model.Schedule) error {
	const q = `INSERT INTO schedules (class_id, lab_id, title, description, scheduled_date, start_time, end_time)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.ClassID, s.LabID, s.Title, s.Description,
		s.ScheduledDate.Format("2006-01-02"), s.StartTime, s.EndTime)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = ?`
	return scanSchedule(r.db.QueryRowContext(ctx, sel, s.ID), s)
}

// ResolveForDate finds or creates the schedule anchoring (classID,
// labID) on the given date.  The whole operation is a single statement:
// the unique key on (class_id, lab_id, scheduled_date) combined with
// ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id) makes concurrent
// resolutions converge on one row, so the check-then-act race of a
// lookup-then-insert sequence cannot produce duplicates.  Title and
// working hours are only applied when the row is first created.
func (r *ScheduleRepo) ResolveForDate(ctx context.Context, classID, labID uint64, className string, date time.Time) (*model.Schedule, error) {
	const q = `INSERT INTO schedules (class_id, lab_id, title, description, scheduled_date, start_time, end_time)
	           VALUES (?, ?, ?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)`
	res, err := r.db.ExecContext(ctx, q,
		classID, labID,
		"Capacity Planning - "+className,
		"Auto-created for capacity planning",
		date.Format("2006-01-02"),
		model.DefaultStartTime, model.DefaultEndTime,
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Delete removes a schedule and cascades to its assignments inside one
// transaction.
func (r *ScheduleRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM seat_assignments WHERE schedule_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM computer_assignments WHERE schedule_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

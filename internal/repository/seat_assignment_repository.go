package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/labsyncpro/labsyncpro/internal/model"
)

// Sentinel errors distinguishing the two uniqueness invariants on
// seat assignments.  The unique keys live in the database; the
// repository only translates the duplicate-entry error into the
// message the caller surfaces to the user.
var (
	ErrSeatTaken            = errors.New("seat is already assigned in this schedule")
	ErrStudentSeated        = errors.New("student already has a seat in this schedule")
	ErrAssignmentNotFound   = errors.New("assignment not found")
	ErrSeatUnderMaintenance = errors.New("seat is under maintenance")
)

// SeatAssignmentDetail joins an assignment with the seat position and
// the student's name for display.
type SeatAssignmentDetail struct {
	ID            uint64 `json:"id"`
	ScheduleID    uint64 `json:"schedule_id"`
	SeatID        uint64 `json:"seat_id"`
	SeatSeqNumber uint32 `json:"seat_seq_number"`
	UserID        uint64 `json:"user_id"`
	StudentName   string `json:"student_name"`
}

// SeatAssignmentRepo provides data access to the seat_assignments table.
type SeatAssignmentRepo struct {
	db *sql.DB
}

// NewSeatAssignmentRepo returns a repo bound to the provided database.
func NewSeatAssignmentRepo(db *sql.DB) *SeatAssignmentRepo { return &SeatAssignmentRepo{db: db} }

// Create inserts a seat assignment.  The INSERT..SELECT only matches
// a seat that is not under maintenance, so the availability check and
// the insert are a single statement; occupancy is enforced by the
// unique keys (schedule_id, seat_id) and (schedule_id, user_id).
func (r *SeatAssignmentRepo) Create(ctx context.Context, a *model.SeatAssignment) error {
	const q = `INSERT INTO seat_assignments (schedule_id, seat_id, user_id)
	           SELECT ?, ?, ? FROM seats WHERE id = ? AND is_available = 1`
	res, err := r.db.ExecContext(ctx, q, a.ScheduleID, a.SeatID, a.UserID, a.SeatID)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			// The key name inside the 1062 message tells the two
			// invariants apart.
			if strings.Contains(me.Message, "uq_seat_per_schedule") {
				return ErrSeatTaken
			}
			return ErrStudentSeated
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Nothing matched: the seat is missing or under maintenance.
		var available bool
		err := r.db.QueryRowContext(ctx, `SELECT is_available FROM seats WHERE id = ?`, a.SeatID).Scan(&available)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSeatNotFound
		}
		if err != nil {
			return err
		}
		return ErrSeatUnderMaintenance
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByID fetches one assignment row.
func (r *SeatAssignmentRepo) GetByID(ctx context.Context, id uint64) (*model.SeatAssignment, error) {
	const q = `SELECT id, schedule_id, seat_id, user_id, created_at FROM seat_assignments WHERE id = ?`
	var a model.SeatAssignment
	err := r.db.QueryRowContext(ctx, q, id).Scan(&a.ID, &a.ScheduleID, &a.SeatID, &a.UserID, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByLab returns seat assignments for the lab.  When scheduleID is
// non-zero the result is narrowed to that schedule; otherwise the
// broader unscoped view is returned (the default before a class is
// selected) and callers must not assume schedule-exclusivity.
func (r *SeatAssignmentRepo) ListByLab(ctx context.Context, labID, scheduleID uint64) ([]SeatAssignmentDetail, error) {
	q := `SELECT sa.id, sa.schedule_id, sa.seat_id, se.seq_number, sa.user_id, u.full_name
	      FROM seat_assignments sa
	      JOIN seats se ON se.id = sa.seat_id
	      JOIN users u ON u.id = sa.user_id
	      WHERE se.lab_id = ?`
	args := []any{labID}
	if scheduleID != 0 {
		q += ` AND sa.schedule_id = ?`
		args = append(args, scheduleID)
	}
	q += ` ORDER BY se.seq_number`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SeatAssignmentDetail, 0)
	for rows.Next() {
		var d SeatAssignmentDetail
		if err := rows.Scan(&d.ID, &d.ScheduleID, &d.SeatID, &d.SeatSeqNumber, &d.UserID, &d.StudentName); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes one assignment by id.  Deleting an id that no longer
// exists returns ErrAssignmentNotFound; callers treat that as already
// resolved rather than fatal.
func (r *SeatAssignmentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM seat_assignments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

// UnassignedStudents computes {students enrolled in the class} minus
// {students with a seat assignment under the schedule} in a single
// query.  With scheduleID zero no assignment narrows the set, so all
// enrolled students are returned.
func (r *SeatAssignmentRepo) UnassignedStudents(ctx context.Context, classID, scheduleID uint64) ([]Student, error) {
	const q = `SELECT u.id, u.full_name, u.email
	           FROM enrollments e
	           JOIN users u ON u.id = e.user_id
	           WHERE e.class_id = ?
	             AND NOT EXISTS (
	               SELECT 1 FROM seat_assignments sa
	               WHERE sa.user_id = u.id AND sa.schedule_id = ?
	             )
	           ORDER BY u.full_name`
	rows, err := r.db.QueryContext(ctx, q, classID, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := make([]Student, 0)
	for rows.Next() {
		var s Student
		if err := rows.Scan(&s.ID, &s.FullName, &s.Email); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return students, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/labsyncpro/labsyncpro/internal/model"
)

// Sentinel errors for computer assignment invariants.
var (
	ErrComputerTaken         = errors.New("computer is already assigned in this schedule")
	ErrComputerNotFunctional = errors.New("computer is not functional")
)

// ComputerAssignmentDetail joins an assignment with the computer name
// and the assignee (group or student) for display.  Matching is done
// by computer id throughout; the name is carried for display only.
type ComputerAssignmentDetail struct {
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

// ComputerAssignmentRepo provides data access to computer_assignments.
type ComputerAssignmentRepo struct {
	db *sql.DB
}

// NewComputerAssignmentRepo returns a repo bound to the provided database.
func NewComputerAssignmentRepo(db *sql.DB) *ComputerAssignmentRepo {
	return &ComputerAssignmentRepo{db: db}
}

// Create inserts a computer assignment.  The computer must be
// functional; occupancy per schedule is enforced by the unique key
// (schedule_id, computer_id).
func (r *ComputerAssignmentRepo) Create(ctx context.Context, a *model.ComputerAssignment) error {
	var functional bool
	err := r.db.QueryRowContext(ctx, `SELECT is_functional FROM computers WHERE id = ?`, a.ComputerID).Scan(&functional)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrComputerNotFound
		}
		return err
	}
	if !functional {
		return ErrComputerNotFunctional
	}
	const q = `INSERT INTO computer_assignments (schedule_id, computer_id, group_id, user_id, assignment_type)
	           VALUES (?, ?, ?, ?, ?)`
	var groupID, userID any
	if a.GroupID != nil {
		groupID = *a.GroupID
	}
	if a.UserID != nil {
		userID = *a.UserID
	}
	res, err := r.db.ExecContext(ctx, q, a.ScheduleID, a.ComputerID, groupID, userID, a.AssignmentType)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrComputerTaken
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByID fetches one assignment row.
func (r *ComputerAssignmentRepo) GetByID(ctx context.Context, id uint64) (*model.ComputerAssignment, error) {
	const q = `SELECT id, schedule_id, computer_id, group_id, user_id, assignment_type, created_at
	           FROM computer_assignments WHERE id = ?`
	var a model.ComputerAssignment
	var groupID, userID sql.NullInt64
	err := r.db.QueryRowContext(ctx, q, id).Scan(&a.ID, &a.ScheduleID, &a.ComputerID,
		&groupID, &userID, &a.AssignmentType, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}
	if groupID.Valid {
		gid := uint64(groupID.Int64)
		a.GroupID = &gid
	}
	if userID.Valid {
		uid := uint64(userID.Int64)
		a.UserID = &uid
	}
	return &a, nil
}

// ListByClassAndLab returns the computer assignments visible when a
// class is planned against a lab, i.e. assignments whose schedule
// joins that (class, lab) pair.
func (r *ComputerAssignmentRepo) ListByClassAndLab(ctx context.Context, classID, labID uint64) ([]ComputerAssignmentDetail, error) {
	const q = `SELECT ca.id, ca.schedule_id, ca.computer_id, co.name, ca.assignment_type,
	                  ca.group_id, g.name, ca.user_id, u.full_name
	           FROM computer_assignments ca
	           JOIN schedules sc ON sc.id = ca.schedule_id
	           JOIN computers co ON co.id = ca.computer_id
	           LEFT JOIN class_groups g ON g.id = ca.group_id
	           LEFT JOIN users u ON u.id = ca.user_id
	           WHERE sc.class_id = ? AND sc.lab_id = ?
	           ORDER BY co.seq_number`
	return r.queryDetails(ctx, q, classID, labID)
}

// ListBySchedule returns all computer assignments under one schedule.
func (r *ComputerAssignmentRepo) ListBySchedule(ctx context.Context, scheduleID uint64) ([]ComputerAssignmentDetail, error) {
	const q = `SELECT ca.id, ca.schedule_id, ca.computer_id, co.name, ca.assignment_type,
	                  ca.group_id, g.name, ca.user_id, u.full_name
	           FROM computer_assignments ca
	           JOIN computers co ON co.id = ca.computer_id
	           LEFT JOIN class_groups g ON g.id = ca.group_id
	           LEFT JOIN users u ON u.id = ca.user_id
	           WHERE ca.schedule_id = ?
	           ORDER BY co.seq_number`
	return r.queryDetails(ctx, q, scheduleID)
}

func (r *ComputerAssignmentRepo) queryDetails(ctx context.Context, q string, args ...any) ([]ComputerAssignmentDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ComputerAssignmentDetail, 0)
	for rows.Next() {
		var d ComputerAssignmentDetail
		var groupID sql.NullInt64
		var groupName sql.NullString
		var userID sql.NullInt64
		var userName sql.NullString
		if err := rows.Scan(&d.ID, &d.ScheduleID, &d.ComputerID, &d.ComputerName, &d.AssignmentType,
			&groupID, &groupName, &userID, &userName); err != nil {
			return nil, err
		}
		if groupID.Valid {
			gid := uint64(groupID.Int64)
			d.GroupID = &gid
		}
		if groupName.Valid {
			gn := groupName.String
			d.GroupName = &gn
		}
		if userID.Valid {
			uid := uint64(userID.Int64)
			d.UserID = &uid
		}
		if userName.Valid {
			un := userName.String
			d.StudentName = &un
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes one assignment by id, returning ErrAssignmentNotFound
// when it is already gone.
func (r *ComputerAssignmentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM computer_assignments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

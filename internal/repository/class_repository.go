package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/labsyncpro/labsyncpro/internal/model"
)

// ErrClassNotFound is returned when a class lookup fails.
var ErrClassNotFound = errors.New("class not found")

// ClassSummary is a class together with its derived member counts.
// The counts are computed at query time from class_groups and
// enrollments; nothing is denormalized.
type ClassSummary struct {
	model.Class
	GroupCount   uint32 // number of groups in the class
	StudentCount uint32 // number of enrolled students
}

// ClassRepo provides data access to classes and enrollments.
type ClassRepo struct {
	db *sql.DB
}

// NewClassRepo constructs a ClassRepo with the given DB handle.
func NewClassRepo(db *sql.DB) *ClassRepo {
	return &ClassRepo{db: db}
}

// Create inserts a new class.  A duplicate name yields ErrConflict.
func (r *ClassRepo) Create(ctx context.Context, cl *model.Class) error {
	const q = `INSERT INTO classes (name, grade, stream) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, cl.Name, cl.Grade, cl.Stream)
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
	cl.ID = uint64(id)
	const sel = `SELECT id, name, grade, stream, created_at, updated_at FROM classes WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, cl.ID).
		Scan(&cl.ID, &cl.Name, &cl.Grade, &cl.Stream, &cl.CreatedAt, &cl.UpdatedAt)
}

// GetByID retrieves a class by its ID.
func (r *ClassRepo) GetByID(ctx context.Context, id uint64) (*model.Class, error) {
	const q = `SELECT id, name, grade, stream, created_at, updated_at FROM classes WHERE id = ?`
	var cl model.Class
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&cl.ID, &cl.Name, &cl.Grade, &cl.Stream, &cl.CreatedAt, &cl.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return &cl, nil
}

// List returns classes with derived group and student counts.  When
// labID is non-zero only classes that already have a schedule in that
// lab are returned; otherwise all classes are listed.
func (r *ClassRepo) List(ctx context.Context, labID uint64) ([]ClassSummary, error) {
	q := `SELECT c.id, c.name, c.grade, c.stream, c.created_at, c.updated_at,
	             (SELECT COUNT(*) FROM class_groups g WHERE g.class_id = c.id),
	             (SELECT COUNT(*) FROM enrollments e WHERE e.class_id = c.id)
	      FROM classes c`
	args := []any{}
	if labID != 0 {
		q += ` WHERE EXISTS (SELECT 1 FROM schedules s WHERE s.class_id = c.id AND s.lab_id = ?)`
		args = append(args, labID)
	}
	q += ` ORDER BY c.name`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ClassSummary
	for rows.Next() {
		var cs ClassSummary
		if err := rows.Scan(&cs.ID, &cs.Name, &cs.Grade, &cs.Stream,
			&cs.CreatedAt, &cs.UpdatedAt, &cs.GroupCount, &cs.StudentCount); err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Enroll adds a student to a class.  Enrolling the same student twice
// yields ErrConflict; a non-student user yields ErrForbidden.
func (r *ClassRepo) Enroll(ctx context.Context, classID, userID uint64) error {
	var role string
	err := r.db.QueryRowContext(ctx, `SELECT role FROM users WHERE id = ?`, userID).Scan(&role)
	if err != nil {
		return err
	}
	if role != "STUDENT" {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO enrollments (class_id, user_id) VALUES (?, ?)`, classID, userID)
	if isDuplicateKey(err) {
		return ErrConflict
	}
	return err
}

// Student is the projection of an enrolled user returned to capacity
// planning callers.
type Student struct {
	ID       uint64 `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// ListStudents returns the students enrolled in a class ordered by name.
func (r *ClassRepo) ListStudents(ctx context.Context, classID uint64) ([]Student, error) {
	const q = `SELECT u.id, u.full_name, u.email
	           FROM enrollments e
	           JOIN users u ON u.id = e.user_id
	           WHERE e.class_id = ?
	           ORDER BY u.full_name`
	rows, err := r.db.QueryContext(ctx, q, classID)
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

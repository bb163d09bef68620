package repository // repository holds data access logic for domain entities

import (
	"context"      // context is used to manage deadlines and cancellation
	"database/sql" // sql provides DB primitives
	"errors"       // errors package allows sentinel error definitions

	"github.com/labsyncpro/labsyncpro/internal/model"
)

// ErrLabNotFound is returned when a lab lookup fails.
var ErrLabNotFound = errors.New("lab not found")

// LabRepo provides methods to create and retrieve labs.  It embeds a
// database handle to perform queries and commands.
type LabRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewLabRepo constructs a LabRepo with the given DB handle.
func NewLabRepo(db *sql.DB) *LabRepo {
	return &LabRepo{db: db}
}

const labColumns = `id, name, code, location, computer_count, seat_count, created_at, updated_at`

func scanLab(row interface{ Scan(...any) error }, l *model.Lab) error {
	return row.Scan(&l.ID, &l.Name, &l.Code, &l.Location,
		&l.ComputerCount, &l.SeatCount, &l.CreatedAt, &l.UpdatedAt)
}

// Create inserts a new lab.  Name and Code must be unique; a duplicate
// yields ErrConflict.  After insert the row is read back so timestamp
// fields are populated.
func (r *LabRepo) Create(ctx context.Context, l *model.Lab) error {
	const qInsert = `INSERT INTO labs (name, code, location, computer_count, seat_count)
	                 VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, l.Name, l.Code, l.Location, l.ComputerCount, l.SeatCount)
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
	l.ID = uint64(id)

	const qSelect = `SELECT ` + labColumns + ` FROM labs WHERE id = ?`
	return scanLab(r.db.QueryRowContext(ctx, qSelect, l.ID), l)
}

// GetByID retrieves a lab by its ID.  It returns ErrLabNotFound when no
// row is found.
func (r *LabRepo) GetByID(ctx context.Context, id uint64) (*model.Lab, error) {
	const q = `SELECT ` + labColumns + ` FROM labs WHERE id = ?`
	var l model.Lab
	if err := scanLab(r.db.QueryRowContext(ctx, q, id), &l); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLabNotFound
		}
		return nil, err
	}
	return &l, nil
}

// List returns all labs ordered by name.
func (r *LabRepo) List(ctx context.Context) ([]*model.Lab, error) {
	const q = `SELECT ` + labColumns + ` FROM labs ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Lab
	for rows.Next() {
		l := new(model.Lab)
		if err := scanLab(rows, l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update changes name, location and the declared counts of a lab.
// Returns sql.ErrNoRows when the lab does not exist.  Callers that
// change the counts must regenerate computers/seats themselves.
func (r *LabRepo) Update(ctx context.Context, l *model.Lab) error {
	const q = `UPDATE labs
	           SET name = ?, location = ?, computer_count = ?, seat_count = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, l.Name, l.Location, l.ComputerCount, l.SeatCount, l.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a lab.  It refuses with ErrConflict when any seat or
// computer assignment still references the lab through a schedule.
func (r *LabRepo) Delete(ctx context.Context, id uint64) error {
	const qCheck = `SELECT
	  (SELECT COUNT(*) FROM seat_assignments sa JOIN schedules sc ON sc.id = sa.schedule_id WHERE sc.lab_id = ?) +
	  (SELECT COUNT(*) FROM computer_assignments ca JOIN schedules sc ON sc.id = ca.schedule_id WHERE sc.lab_id = ?)`
	var live int
	if err := r.db.QueryRowContext(ctx, qCheck, id, id).Scan(&live); err != nil {
		return err
	}
	if live > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM labs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

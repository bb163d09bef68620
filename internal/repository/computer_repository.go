package repository // repository defines data access for computers

import (
	"context"      // context allows query cancellation and timeouts
	"database/sql" // sql provides DB primitives
	"errors"       // errors for sentinel definitions

	"github.com/labsyncpro/labsyncpro/internal/model"
)

// ErrComputerNotFound is returned when a computer lookup yields no rows.
var ErrComputerNotFound = errors.New("computer not found")

// ComputerRepo provides methods to work with computers in the database.
type ComputerRepo struct {
	db *sql.DB
}

// NewComputerRepo constructs a ComputerRepo with the given DB handle.
func NewComputerRepo(db *sql.DB) *ComputerRepo {
	return &ComputerRepo{db: db}
}

const computerColumns = `id, lab_id, name, seq_number, is_functional, spec, created_at, updated_at`

func scanComputer(row interface{ Scan(...any) error }, c *model.Computer) error {
	var spec sql.NullString
	if err := row.Scan(&c.ID, &c.LabID, &c.Name, &c.SeqNumber,
		&c.IsFunctional, &spec, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return err
	}
	if spec.Valid {
		s := spec.String
		c.Spec = &s
	}
	return nil
}

// CreateBulk inserts multiple computers in a single statement.
func (r *ComputerRepo) CreateBulk(ctx context.Context, computers []model.Computer) error {
	if len(computers) == 0 {
		return nil
	}
	query := `INSERT INTO computers (lab_id, name, seq_number, spec) VALUES `
	args := make([]interface{}, 0, len(computers)*4)
	for i, c := range computers {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		var spec any
		if c.Spec != nil {
			spec = *c.Spec
		}
		args = append(args, c.LabID, c.Name, c.SeqNumber, spec)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// ListByLab retrieves all computers of a lab ordered by sequence number.
func (r *ComputerRepo) ListByLab(ctx context.Context, labID uint64) ([]model.Computer, error) {
	const q = `SELECT ` + computerColumns + ` FROM computers
	           WHERE lab_id = ?
	           ORDER BY seq_number`
	rows, err := r.db.QueryContext(ctx, q, labID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Computer
	for rows.Next() {
		var c model.Computer
		if err := scanComputer(rows, &c); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID retrieves a computer by its id.
func (r *ComputerRepo) GetByID(ctx context.Context, id uint64) (*model.Computer, error) {
	const q = `SELECT ` + computerColumns + ` FROM computers WHERE id = ?`
	var c model.Computer
	if err := scanComputer(r.db.QueryRowContext(ctx, q, id), &c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrComputerNotFound
		}
		return nil, err
	}
	return &c, nil
}

// SetFunctional flips the functional flag and optionally replaces the
// spec text.  Returns sql.ErrNoRows when the computer does not exist.
func (r *ComputerRepo) SetFunctional(ctx context.Context, id uint64, functional bool, spec *string) error {
	const q = `UPDATE computers
	           SET is_functional = ?, spec = COALESCE(?, spec), updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	var specArg any
	if spec != nil {
		specArg = *spec
	}
	res, err := r.db.ExecContext(ctx, q, functional, specArg, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteByLab removes all computers of a lab.  Used when a lab's
// declared computer count changes and the machines are regenerated.
// Callers must verify the lab has no live assignments first.
func (r *ComputerRepo) DeleteByLab(ctx context.Context, labID uint64) error {
	const q = `DELETE FROM computers WHERE lab_id = ?`
	_, err := r.db.ExecContext(ctx, q, labID)
	return err
}

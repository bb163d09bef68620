package repository // repository defines data access for seats

import (
	"context"      // context allows query cancellation and timeouts
	"database/sql" // sql provides DB primitives
	"errors"       // errors for sentinel definitions

	"github.com/labsyncpro/labsyncpro/internal/model"
)

// ErrSeatNotFound is returned when a seat lookup yields no rows.
var ErrSeatNotFound = errors.New("seat not found")

// SeatRepo provides methods to work with seats in the database.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

const seatColumns = `id, lab_id, seq_number, is_available, created_at, updated_at`

func scanSeat(row interface{ Scan(...any) error }, s *model.Seat) error {
	return row.Scan(&s.ID, &s.LabID, &s.SeqNumber, &s.IsAvailable, &s.CreatedAt, &s.UpdatedAt)
}

// CreateBulk inserts multiple seats in a single statement.
func (r *SeatRepo) CreateBulk(ctx context.Context, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO seats (lab_id, seq_number) VALUES `
	args := make([]interface{}, 0, len(seats)*2)
	for i, seat := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, seat.LabID, seat.SeqNumber)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// ListByLab retrieves all seats of a lab ordered by sequence number.
func (r *SeatRepo) ListByLab(ctx context.Context, labID uint64) ([]model.Seat, error) {
	const q = `SELECT ` + seatColumns + ` FROM seats
	           WHERE lab_id = ?
	           ORDER BY seq_number`
	rows, err := r.db.QueryContext(ctx, q, labID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := scanSeat(rows, &s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID retrieves a seat by its id.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
	const q = `SELECT ` + seatColumns + ` FROM seats WHERE id = ?`
	var s model.Seat
	if err := scanSeat(r.db.QueryRowContext(ctx, q, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	return &s, nil
}

// SetAvailability flips the maintenance flag of a seat.  Returns
// sql.ErrNoRows when the seat does not exist.
func (r *SeatRepo) SetAvailability(ctx context.Context, id uint64, available bool) error {
	const q = `UPDATE seats SET is_available = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, available, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteByLab removes all seats associated with a given lab ID.  This is
// used when a lab's seat count is changed and the seats must be
// regenerated.  It does not perform any assignment checks – callers
// should verify the lab has no live assignments prior to calling.
func (r *SeatRepo) DeleteByLab(ctx context.Context, labID uint64) error {
	const q = `DELETE FROM seats WHERE lab_id = ?`
	_, err := r.db.ExecContext(ctx, q, labID)
	return err
}

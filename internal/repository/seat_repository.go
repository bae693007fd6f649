package repository // repository defines data access for seats

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinema-booking/internal/model"
)

const seatCols = `id, hall_id, row_num, seat_number, seat_code, created_at, updated_at`

// SeatRepo provides methods to work with seats in the database.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

func scanSeat(row interface{ Scan(...any) error }, s *model.Seat) error {
	return row.Scan(&s.ID, &s.HallID, &s.RowNumber, &s.SeatNumber, &s.SeatCode,
		&s.CreatedAt, &s.UpdatedAt)
}

// CreateBulkTx inserts multiple seats in a single statement within the
// given transaction.  Seat codes must already be derived by the caller
// via model.SeatCode.
func (r *SeatRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO seats (hall_id, row_num, seat_number, seat_code) VALUES `
	args := make([]any, 0, len(seats)*4)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, s.HallID, s.RowNumber, s.SeatNumber, s.SeatCode)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// DeleteByHallTx removes all seats of a hall inside the given
// transaction.  Used by seat initialization, which replaces the whole
// seat set.
func (r *SeatRepo) DeleteByHallTx(ctx context.Context, tx *sql.Tx, hallID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM seats WHERE hall_id = ?`, hallID)
	return err
}

// GetByID retrieves a seat by its id.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
	const q = `SELECT ` + seatCols + ` FROM seats WHERE id = ?`
	var s model.Seat
	if err := scanSeat(r.db.QueryRowContext(ctx, q, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetByHall retrieves all seats of a hall in row-major order.
func (r *SeatRepo) GetByHall(ctx context.Context, hallID uint64) ([]model.Seat, error) {
	const q = `SELECT ` + seatCols + ` FROM seats
	           WHERE hall_id = ?
	           ORDER BY row_num, seat_number`
	rows, err := r.db.QueryContext(ctx, q, hallID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		if err := scanSeat(rows, &s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByIDsTx loads the seats for a set of seat IDs within a
// transaction.  Duplicate input IDs resolve to one row each, so the
// caller can compare the result count against the requested count to
// detect unknown seats.
func (r *SeatRepo) GetByIDsTx(ctx context.Context, tx *sql.Tx, ids []uint64) ([]model.Seat, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + seatCols + ` FROM seats WHERE id IN (`
	args := make([]any, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			query += ","
		}
		query += "?"
		args = append(args, id)
	}
	query += `) ORDER BY row_num, seat_number`
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Seat, 0, len(ids))
	for rows.Next() {
		var s model.Seat
		if err := scanSeat(rows, &s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByHall returns the number of seat rows for a hall.
func (r *SeatRepo) CountByHall(ctx context.Context, hallID uint64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seats WHERE hall_id = ?`, hallID).Scan(&n)
	return n, err
}

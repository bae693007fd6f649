package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinema-booking/internal/model"
)

const hallCols = `id, hall_number, name, total_rows, seats_per_row, description, created_at, updated_at`

// HallRepo provides persistence for halls.
type HallRepo struct {
	db *sql.DB
}

// NewHallRepo constructs a HallRepo with the given DB handle.
func NewHallRepo(db *sql.DB) *HallRepo {
	return &HallRepo{db: db}
}

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *HallRepo) DB() *sql.DB {
	return r.db
}

func scanHall(row interface{ Scan(...any) error }, h *model.Hall) error {
	return row.Scan(&h.ID, &h.HallNumber, &h.Name, &h.TotalRows, &h.SeatsPerRow,
		&h.Description, &h.CreatedAt, &h.UpdatedAt)
}

// CreateTx inserts a new hall inside the caller's transaction, so the
// hall and its seat grid commit or roll back together.  A duplicate
// hall number surfaces as ErrConflict.  After insert the row is read
// back to populate timestamps.
func (r *HallRepo) CreateTx(ctx context.Context, tx *sql.Tx, h *model.Hall) error {
	const q = `INSERT INTO halls (hall_number, name, total_rows, seats_per_row, description)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, h.HallNumber, h.Name, h.TotalRows, h.SeatsPerRow, h.Description)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	const sel = `SELECT ` + hallCols + ` FROM halls WHERE id = ?`
	return scanHall(tx.QueryRowContext(ctx, sel, h.ID), h)
}

// GetByID retrieves a hall by its ID.  Returns ErrHallNotFound when no
// row matches.
func (r *HallRepo) GetByID(ctx context.Context, id uint64) (*model.Hall, error) {
	const q = `SELECT ` + hallCols + ` FROM halls WHERE id = ?`
	var h model.Hall
	if err := scanHall(r.db.QueryRowContext(ctx, q, id), &h); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHallNotFound
		}
		return nil, err
	}
	return &h, nil
}

// List returns all halls ordered by hall number.
func (r *HallRepo) List(ctx context.Context) ([]model.Hall, error) {
	const q = `SELECT ` + hallCols + ` FROM halls ORDER BY hall_number`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Hall, 0)
	for rows.Next() {
		var h model.Hall
		if err := scanHall(rows, &h); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites a hall's mutable fields.  Duplicate hall numbers
// surface as ErrConflict, missing rows as ErrHallNotFound.
func (r *HallRepo) Update(ctx context.Context, h *model.Hall) error {
	const q = `UPDATE halls
	           SET hall_number = ?, name = ?, total_rows = ?, seats_per_row = ?, description = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, h.HallNumber, h.Name, h.TotalRows, h.SeatsPerRow, h.Description, h.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM halls WHERE id = ?`, h.ID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrHallNotFound
			}
			return err
		}
	}
	const sel = `SELECT ` + hallCols + ` FROM halls WHERE id = ?`
	return scanHall(r.db.QueryRowContext(ctx, sel, h.ID), h)
}

// Delete removes a hall; its seats and sessions cascade in the database.
func (r *HallRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM halls WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrHallNotFound
	}
	return nil
}

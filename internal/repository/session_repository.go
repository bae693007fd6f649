// Package repository: session persistence and the scheduling queries.
// A session ties one movie to one hall for a time window; end_time is
// always derived by the caller (model.SessionEndTime), never stored
// from input.  The overlap predicate lives here as SQL so the check
// runs against committed rows: two intervals [s1,e1) and [s2,e2)
// overlap iff s1 < e2 AND e1 > s2.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/cinema-booking/internal/model"
)

const sessionCols = `id, movie_id, hall_id, start_time, end_time, price_cents, created_at, updated_at`

// SessionRepo manages persistence for sessions.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo constructs a SessionRepo with the given DB handle.
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// DB exposes the underlying sql.DB for multi-repository transactions.
func (r *SessionRepo) DB() *sql.DB {
	return r.db
}

func scanSession(row interface{ Scan(...any) error }, s *model.Session) error {
	return row.Scan(&s.ID, &s.MovieID, &s.HallID, &s.StartTime, &s.EndTime,
		&s.PriceCents, &s.CreatedAt, &s.UpdatedAt)
}

// SessionDetail is a session joined with its movie and hall for
// display.  Used by the booking and reporting read paths.
type SessionDetail struct {
	model.Session
	MovieTitle       string `json:"movie_title"`
	MovieDurationMin uint32 `json:"movie_duration_min"`
	HallName         string `json:"hall_name"`
	HallNumber       uint32 `json:"hall_number"`
}

// HasOverlapping reports whether the hall already has a session whose
// [start_time, end_time) interval overlaps [start, end), excluding the
// session with excludeID (pass 0 on create).
func (r *SessionRepo) HasOverlapping(ctx context.Context, hallID, excludeID uint64, start, end time.Time) (bool, error) {
	const q = `SELECT COUNT(*) FROM sessions
	           WHERE hall_id = ? AND id != ? AND start_time < ? AND end_time > ?`
	var n int64
	if err := r.db.QueryRowContext(ctx, q, hallID, excludeID, end, start).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts a new session and reads the row back.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	const q = `INSERT INTO sessions (movie_id, hall_id, start_time, end_time, price_cents)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.MovieID, s.HallID, s.StartTime, s.EndTime, s.PriceCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = `SELECT ` + sessionCols + ` FROM sessions WHERE id = ?`
	return scanSession(r.db.QueryRowContext(ctx, sel, s.ID), s)
}

// Update rewrites a session's schedule fields.
func (r *SessionRepo) Update(ctx context.Context, s *model.Session) error {
	const q = `UPDATE sessions
	           SET movie_id = ?, hall_id = ?, start_time = ?, end_time = ?, price_cents = ?
	           WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, s.MovieID, s.HallID, s.StartTime, s.EndTime, s.PriceCents, s.ID); err != nil {
		return err
	}
	const sel = `SELECT ` + sessionCols + ` FROM sessions WHERE id = ?`
	if err := scanSession(r.db.QueryRowContext(ctx, sel, s.ID), s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSessionNotFound
		}
		return err
	}
	return nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (*model.Session, error) {
	const q = `SELECT ` + sessionCols + ` FROM sessions WHERE id = ?`
	var s model.Session
	if err := scanSession(r.db.QueryRowContext(ctx, q, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

const detailSelect = `SELECT s.id, s.movie_id, s.hall_id, s.start_time, s.end_time, s.price_cents,
	       s.created_at, s.updated_at, m.title, m.duration_min, h.name, h.hall_number
	FROM sessions s
	JOIN movies m ON m.id = s.movie_id
	JOIN halls  h ON h.id = s.hall_id`

func scanDetail(row interface{ Scan(...any) error }, d *SessionDetail) error {
	return row.Scan(&d.ID, &d.MovieID, &d.HallID, &d.StartTime, &d.EndTime, &d.PriceCents,
		&d.CreatedAt, &d.UpdatedAt, &d.MovieTitle, &d.MovieDurationMin, &d.HallName, &d.HallNumber)
}

// GetDetail loads a session together with its movie and hall.
func (r *SessionRepo) GetDetail(ctx context.Context, id uint64) (*SessionDetail, error) {
	q := detailSelect + ` WHERE s.id = ?`
	var d SessionDetail
	if err := scanDetail(r.db.QueryRowContext(ctx, q, id), &d); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &d, nil
}

// GetDetailTx is GetDetail inside an existing transaction.
func (r *SessionRepo) GetDetailTx(ctx context.Context, tx *sql.Tx, id uint64) (*SessionDetail, error) {
	q := detailSelect + ` WHERE s.id = ?`
	var d SessionDetail
	if err := scanDetail(tx.QueryRowContext(ctx, q, id), &d); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &d, nil
}

// SearchQuery holds the optional filters for the combined session
// search.  Nil/zero fields are skipped; all present filters combine
// with AND.
type SearchQuery struct {
	MovieID   uint64
	HallID    uint64
	StartDate *time.Time // match sessions starting on/after this date (00:00 UTC)
	EndDate   *time.Time // match sessions starting on/before this date (end of day)
	MinPrice  *uint32
	MaxPrice  *uint32
}

// Search returns session details matching every supplied filter,
// ordered by start time.
func (r *SessionRepo) Search(ctx context.Context, q SearchQuery) ([]SessionDetail, error) {
	where := []string{}
	args := []any{}
	if q.MovieID != 0 {
		where = append(where, "s.movie_id = ?")
		args = append(args, q.MovieID)
	}
	if q.HallID != 0 {
		where = append(where, "s.hall_id = ?")
		args = append(args, q.HallID)
	}
	if q.StartDate != nil {
		where = append(where, "s.start_time >= ?")
		args = append(args, q.StartDate.Truncate(24*time.Hour))
	}
	if q.EndDate != nil {
		where = append(where, "s.start_time < ?")
		args = append(args, q.EndDate.Truncate(24*time.Hour).Add(24*time.Hour))
	}
	if q.MinPrice != nil {
		where = append(where, "s.price_cents >= ?")
		args = append(args, *q.MinPrice)
	}
	if q.MaxPrice != nil {
		where = append(where, "s.price_cents <= ?")
		args = append(args, *q.MaxPrice)
	}
	sqlq := detailSelect
	if len(where) > 0 {
		sqlq += " WHERE " + strings.Join(where, " AND ")
	}
	sqlq += " ORDER BY s.start_time"
	return r.queryDetails(ctx, sqlq, args...)
}

// List returns all sessions with movie/hall detail ordered by start time.
func (r *SessionRepo) List(ctx context.Context) ([]SessionDetail, error) {
	return r.queryDetails(ctx, detailSelect+` ORDER BY s.start_time`)
}

// ByMovie returns upcoming-first sessions for a movie.
func (r *SessionRepo) ByMovie(ctx context.Context, movieID uint64) ([]SessionDetail, error) {
	return r.queryDetails(ctx, detailSelect+` WHERE s.movie_id = ? ORDER BY s.start_time`, movieID)
}

// ByHall returns all sessions in a hall.
func (r *SessionRepo) ByHall(ctx context.Context, hallID uint64) ([]SessionDetail, error) {
	return r.queryDetails(ctx, detailSelect+` WHERE s.hall_id = ? ORDER BY s.start_time`, hallID)
}

// ByDate returns sessions starting on the given calendar day (UTC).
func (r *SessionRepo) ByDate(ctx context.Context, day time.Time) ([]SessionDetail, error) {
	start := day.Truncate(24 * time.Hour)
	end := start.Add(24 * time.Hour)
	return r.queryDetails(ctx,
		detailSelect+` WHERE s.start_time >= ? AND s.start_time < ? ORDER BY s.start_time`,
		start, end)
}

// Upcoming returns sessions starting within the next `days` days (all
// future sessions when days <= 0).
func (r *SessionRepo) Upcoming(ctx context.Context, days int) ([]SessionDetail, error) {
	if days <= 0 {
		return r.queryDetails(ctx,
			detailSelect+` WHERE s.start_time > UTC_TIMESTAMP() ORDER BY s.start_time`)
	}
	return r.queryDetails(ctx,
		detailSelect+` WHERE s.start_time > UTC_TIMESTAMP()
		               AND s.start_time <= UTC_TIMESTAMP() + INTERVAL ? DAY
		               ORDER BY s.start_time`, days)
}

// Available returns upcoming sessions whose hall still has free
// capacity: rows*seats_per_row greater than the count of non-CANCELLED
// tickets.
func (r *SessionRepo) Available(ctx context.Context) ([]SessionDetail, error) {
	q := detailSelect + `
	WHERE s.start_time > UTC_TIMESTAMP()
	  AND (h.total_rows * h.seats_per_row) >
	      (SELECT COUNT(*) FROM tickets t WHERE t.session_id = s.id AND t.status != 'CANCELLED')
	ORDER BY s.start_time`
	return r.queryDetails(ctx, q)
}

// Delete removes a session row.  Ticket handling (refusing SOLD,
// cancelling BOOKED) is done by the caller inside the same
// transaction, so this variant takes a *sql.Tx.
func (r *SessionRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepo) queryDetails(ctx context.Context, q string, args ...any) ([]SessionDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SessionDetail, 0)
	for rows.Next() {
		var d SessionDetail
		if err := scanDetail(rows, &d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

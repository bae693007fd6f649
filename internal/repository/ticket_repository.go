// Package repository: ticket persistence and the booking workflow
// queries.  Writes that participate in the reserve/purchase flow run
// inside a caller-owned transaction; the uq_active_seat unique key on
// (session_id, seat_id, active) is the final arbiter when two
// transactions race for the same seat, surfacing as
// ErrSeatsUnavailable.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/cinema-booking/internal/model"
)

const ticketCols = `id, ticket_number, session_id, seat_id, user_id, status, purchase_time, created_at, updated_at`

// TicketRepo manages persistence for tickets.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo constructs a TicketRepo with the given DB handle.
func NewTicketRepo(db *sql.DB) *TicketRepo {
	return &TicketRepo{db: db}
}

// DB exposes the underlying sql.DB so handlers can open transactions
// spanning ticket and seat lookups.
func (r *TicketRepo) DB() *sql.DB {
	return r.db
}

func scanTicket(row interface{ Scan(...any) error }, t *model.Ticket) error {
	return row.Scan(&t.ID, &t.TicketNumber, &t.SessionID, &t.SeatID, &t.UserID,
		&t.Status, &t.PurchaseTime, &t.CreatedAt, &t.UpdatedAt)
}

// TicketDetail is a ticket joined with its seat, session, movie and
// hall, shaped for receipts and listings.
type TicketDetail struct {
	model.Ticket
	SeatCode   string    `json:"seat_code"`
	RowNum     uint32    `json:"row"`
	SeatNumber uint32    `json:"seat_number"`
	MovieTitle string    `json:"movie_title"`
	HallName   string    `json:"hall_name"`
	StartTime  time.Time `json:"session_start_time"`
	PriceCents uint32    `json:"price_cents"`
}

const ticketDetailSelect = `SELECT t.id, t.ticket_number, t.session_id, t.seat_id, t.user_id,
	       t.status, t.purchase_time, t.created_at, t.updated_at,
	       st.seat_code, st.row_num, st.seat_number,
	       m.title, h.name, s.start_time, s.price_cents
	FROM tickets t
	JOIN seats    st ON st.id = t.seat_id
	JOIN sessions s  ON s.id = t.session_id
	JOIN movies   m  ON m.id = s.movie_id
	JOIN halls    h  ON h.id = s.hall_id`

func scanTicketDetail(row interface{ Scan(...any) error }, d *TicketDetail) error {
	return row.Scan(&d.ID, &d.TicketNumber, &d.SessionID, &d.SeatID, &d.UserID,
		&d.Status, &d.PurchaseTime, &d.CreatedAt, &d.UpdatedAt,
		&d.SeatCode, &d.RowNum, &d.SeatNumber,
		&d.MovieTitle, &d.HallName, &d.StartTime, &d.PriceCents)
}

// AreSeatsAvailableTx reports whether none of the given seats has an
// occupying (non-CANCELLED) ticket for the session.  This is the
// friendly pre-check; the unique key still backstops concurrent
// writers that both pass it.
func (r *TicketRepo) AreSeatsAvailableTx(ctx context.Context, tx *sql.Tx, sessionID uint64, seatIDs []uint64) (bool, error) {
	if len(seatIDs) == 0 {
		return true, nil
	}
	placeholders := strings.Repeat("?,", len(seatIDs))
	placeholders = placeholders[:len(placeholders)-1]
	q := `SELECT COUNT(*) FROM tickets
	      WHERE session_id = ? AND status != 'CANCELLED' AND seat_id IN (` + placeholders + `)`
	args := make([]any, 0, len(seatIDs)+1)
	args = append(args, sessionID)
	for _, id := range seatIDs {
		args = append(args, id)
	}
	var n int64
	if err := tx.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}

// CreateBulkTx inserts one ticket per seat in a single statement.  A
// duplicate-key error on uq_active_seat means another transaction won
// a seat first and maps to ErrSeatsUnavailable; one on the ticket
// number key maps to ErrTicketNumberTaken so the caller can retry with
// fresh numbers.
func (r *TicketRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, tickets []model.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO tickets (ticket_number, session_id, seat_id, user_id, status, purchase_time) VALUES `)
	args := make([]any, 0, len(tickets)*6)
	for i, t := range tickets {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?)")
		args = append(args, t.TicketNumber, t.SessionID, t.SeatID, t.UserID, t.Status, t.PurchaseTime)
	}
	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		switch {
		case isDuplicateKey(err, "uq_active_seat"):
			return ErrSeatsUnavailable
		case isDuplicateKey(err, "uq_tickets_number"):
			return ErrTicketNumberTaken
		}
		return err
	}
	return nil
}

// GetByNumber retrieves a ticket by its public ticket number.
func (r *TicketRepo) GetByNumber(ctx context.Context, number string) (*model.Ticket, error) {
	const q = `SELECT ` + ticketCols + ` FROM tickets WHERE ticket_number = ?`
	var t model.Ticket
	if err := scanTicket(r.db.QueryRowContext(ctx, q, number), &t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

// GetByNumberTx is GetByNumber inside a transaction, locking the row
// for the status transition that follows.
func (r *TicketRepo) GetByNumberTx(ctx context.Context, tx *sql.Tx, number string) (*model.Ticket, error) {
	const q = `SELECT ` + ticketCols + ` FROM tickets WHERE ticket_number = ? FOR UPDATE`
	var t model.Ticket
	if err := scanTicket(tx.QueryRowContext(ctx, q, number), &t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

// UpdateStatusTx sets a ticket's status, stamping purchase_time when
// it is non-nil (the BOOKED -> SOLD confirmation path).
func (r *TicketRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.TicketStatus, purchaseTime *time.Time) error {
	var (
		res sql.Result
		err error
	)
	if purchaseTime != nil {
		res, err = tx.ExecContext(ctx,
			`UPDATE tickets SET status = ?, purchase_time = ? WHERE id = ?`,
			status, purchaseTime, id)
	} else {
		res, err = tx.ExecContext(ctx,
			`UPDATE tickets SET status = ? WHERE id = ?`, status, id)
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// ListBySession returns every ticket detail for a session.
func (r *TicketRepo) ListBySession(ctx context.Context, sessionID uint64) ([]TicketDetail, error) {
	return r.queryDetails(ctx,
		ticketDetailSelect+` WHERE t.session_id = ? ORDER BY st.row_num, st.seat_number`, sessionID)
}

// ListByUser returns a user's tickets, newest first.
func (r *TicketRepo) ListByUser(ctx context.Context, userID uint64) ([]TicketDetail, error) {
	return r.queryDetails(ctx,
		ticketDetailSelect+` WHERE t.user_id = ? ORDER BY t.created_at DESC`, userID)
}

// DetailsByNumbersTx loads details for the given ticket numbers inside
// a transaction (used to shape the purchase receipt after the insert).
func (r *TicketRepo) DetailsByNumbersTx(ctx context.Context, tx *sql.Tx, numbers []string) ([]TicketDetail, error) {
	if len(numbers) == 0 {
		return []TicketDetail{}, nil
	}
	placeholders := strings.Repeat("?,", len(numbers))
	placeholders = placeholders[:len(placeholders)-1]
	q := ticketDetailSelect + ` WHERE t.ticket_number IN (` + placeholders + `) ORDER BY st.row_num, st.seat_number`
	args := make([]any, len(numbers))
	for i, n := range numbers {
		args[i] = n
	}
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTicketDetails(rows)
}

// OccupiedSeatIDs returns the seat IDs holding a BOOKED or SOLD ticket
// for the session.  Feeds the per-session seat map.
func (r *TicketRepo) OccupiedSeatIDs(ctx context.Context, sessionID uint64) (map[uint64]model.TicketStatus, error) {
	const q = `SELECT seat_id, status FROM tickets
	           WHERE session_id = ? AND status IN ('BOOKED','SOLD')`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uint64]model.TicketStatus)
	for rows.Next() {
		var (
			id uint64
			st model.TicketStatus
		)
		if err := rows.Scan(&id, &st); err != nil {
			return nil, err
		}
		out[id] = st
	}
	return out, rows.Err()
}

// CancelExpired cancels reservations that were never paid: BOOKED
// tickets created before the cutoff become CANCELLED and lose their
// user so the seat returns to the pool.  Returns the number of rows
// swept.
func (r *TicketRepo) CancelExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `UPDATE tickets SET status = 'CANCELLED', user_id = NULL
	           WHERE status = 'BOOKED' AND created_at < ?`
	res, err := r.db.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountSoldTx counts SOLD tickets for a session inside a transaction.
// Session deletion refuses to proceed when this is non-zero.
func (r *TicketRepo) CountSoldTx(ctx context.Context, tx *sql.Tx, sessionID uint64) (int64, error) {
	var n int64
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE session_id = ? AND status = 'SOLD'`,
		sessionID).Scan(&n)
	return n, err
}

// CancelByStatusTx cancels all tickets of a session currently in the
// given statuses and detaches them from their users.
func (r *TicketRepo) CancelByStatusTx(ctx context.Context, tx *sql.Tx, sessionID uint64, statuses ...model.TicketStatus) (int64, error) {
	if len(statuses) == 0 {
		return 0, nil
	}
	placeholders := strings.Repeat("?,", len(statuses))
	placeholders = placeholders[:len(placeholders)-1]
	q := `UPDATE tickets SET status = 'CANCELLED', user_id = NULL
	      WHERE session_id = ? AND status IN (` + placeholders + `)`
	args := make([]any, 0, len(statuses)+1)
	args = append(args, sessionID)
	for _, s := range statuses {
		args = append(args, s)
	}
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *TicketRepo) queryDetails(ctx context.Context, q string, args ...any) ([]TicketDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTicketDetails(rows)
}

func collectTicketDetails(rows *sql.Rows) ([]TicketDetail, error) {
	out := make([]TicketDetail, 0)
	for rows.Next() {
		var d TicketDetail
		if err := scanTicketDetail(rows, &d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

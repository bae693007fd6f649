// Package repository: reporting aggregations.  All figures derive from
// SOLD tickets priced at their session's price_cents; nothing is
// precomputed or cached at this layer.
package repository

import (
	"context"
	"database/sql"
	"time"
)

// StatsRepo runs the read-only aggregation queries behind the admin
// dashboard and user statistics.
type StatsRepo struct {
	db *sql.DB
}

// NewStatsRepo constructs a StatsRepo with the given DB handle.
func NewStatsRepo(db *sql.DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// Dashboard is the admin landing snapshot.
type Dashboard struct {
	TotalMovies       int64  `json:"total_movies"`
	TotalHalls        int64  `json:"total_halls"`
	TotalUsers        int64  `json:"total_users"`
	UpcomingSessions  int64  `json:"upcoming_sessions"`
	TicketsSold       int64  `json:"tickets_sold"`
	ActiveBookings    int64  `json:"active_bookings"`
	TotalRevenueCents uint64 `json:"total_revenue_cents"`
}

// Dashboard gathers the headline counts in one round of queries.
func (r *StatsRepo) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	counts := []struct {
		q    string
		dest *int64
	}{
		{`SELECT COUNT(*) FROM movies`, &d.TotalMovies},
		{`SELECT COUNT(*) FROM halls`, &d.TotalHalls},
		{`SELECT COUNT(*) FROM users`, &d.TotalUsers},
		{`SELECT COUNT(*) FROM sessions WHERE start_time > UTC_TIMESTAMP()`, &d.UpcomingSessions},
		{`SELECT COUNT(*) FROM tickets WHERE status = 'SOLD'`, &d.TicketsSold},
		{`SELECT COUNT(*) FROM tickets WHERE status = 'BOOKED'`, &d.ActiveBookings},
	}
	for _, c := range counts {
		if err := r.db.QueryRowContext(ctx, c.q).Scan(c.dest); err != nil {
			return nil, err
		}
	}
	const revQ = `SELECT COALESCE(SUM(s.price_cents), 0)
	              FROM tickets t JOIN sessions s ON s.id = t.session_id
	              WHERE t.status = 'SOLD'`
	if err := r.db.QueryRowContext(ctx, revQ).Scan(&d.TotalRevenueCents); err != nil {
		return nil, err
	}
	return &d, nil
}

// Revenue summarises sales over a window.
type Revenue struct {
	From              time.Time `json:"from"`
	To                time.Time `json:"to"`
	TicketsSold       int64     `json:"tickets_sold"`
	TotalRevenueCents uint64    `json:"total_revenue_cents"`
	AveragePriceCents uint32    `json:"average_price_cents"`
}

// RevenueBetween totals SOLD tickets whose purchase fell inside
// [from, to).
func (r *StatsRepo) RevenueBetween(ctx context.Context, from, to time.Time) (*Revenue, error) {
	const q = `SELECT COUNT(*), COALESCE(SUM(s.price_cents), 0)
	           FROM tickets t JOIN sessions s ON s.id = t.session_id
	           WHERE t.status = 'SOLD' AND t.purchase_time >= ? AND t.purchase_time < ?`
	rev := Revenue{From: from, To: to}
	if err := r.db.QueryRowContext(ctx, q, from, to).Scan(&rev.TicketsSold, &rev.TotalRevenueCents); err != nil {
		return nil, err
	}
	if rev.TicketsSold > 0 {
		rev.AveragePriceCents = uint32(rev.TotalRevenueCents / uint64(rev.TicketsSold))
	}
	return &rev, nil
}

// DailyRevenue is one day's slice of a revenue report.
type DailyRevenue struct {
	Day          string `json:"day"`
	TicketsSold  int64  `json:"tickets_sold"`
	RevenueCents uint64 `json:"revenue_cents"`
}

// RevenueByDay buckets sales per UTC calendar day inside [from, to).
func (r *StatsRepo) RevenueByDay(ctx context.Context, from, to time.Time) ([]DailyRevenue, error) {
	const q = `SELECT DATE(t.purchase_time), COUNT(*), COALESCE(SUM(s.price_cents), 0)
	           FROM tickets t JOIN sessions s ON s.id = t.session_id
	           WHERE t.status = 'SOLD' AND t.purchase_time >= ? AND t.purchase_time < ?
	           GROUP BY DATE(t.purchase_time)
	           ORDER BY DATE(t.purchase_time)`
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]DailyRevenue, 0)
	for rows.Next() {
		var d DailyRevenue
		if err := rows.Scan(&d.Day, &d.TicketsSold, &d.RevenueCents); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// MovieRevenue ranks a movie by its sales.
type MovieRevenue struct {
	MovieID      uint64 `json:"movie_id"`
	Title        string `json:"title"`
	TicketsSold  int64  `json:"tickets_sold"`
	RevenueCents uint64 `json:"revenue_cents"`
}

// RevenueByMovie breaks total sales down per movie, highest first.
func (r *StatsRepo) RevenueByMovie(ctx context.Context) ([]MovieRevenue, error) {
	const q = `SELECT m.id, m.title, COUNT(t.id), COALESCE(SUM(s.price_cents), 0)
	           FROM movies m
	           JOIN sessions s ON s.movie_id = m.id
	           JOIN tickets  t ON t.session_id = s.id AND t.status = 'SOLD'
	           GROUP BY m.id, m.title
	           ORDER BY SUM(s.price_cents) DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]MovieRevenue, 0)
	for rows.Next() {
		var mr MovieRevenue
		if err := rows.Scan(&mr.MovieID, &mr.Title, &mr.TicketsSold, &mr.RevenueCents); err != nil {
			return nil, err
		}
		out = append(out, mr)
	}
	return out, rows.Err()
}

// PopularMovie is one entry of the popularity ranking.
type PopularMovie struct {
	MovieID     uint64 `json:"movie_id"`
	Title       string `json:"title"`
	Genre       string `json:"genre"`
	TicketsSold int64  `json:"tickets_sold"`
}

// PopularMovies ranks movies by tickets sold in the last `days` days,
// capped at limit.
func (r *StatsRepo) PopularMovies(ctx context.Context, days, limit int) ([]PopularMovie, error) {
	const q = `SELECT m.id, m.title, m.genre, COUNT(t.id) AS sold
	           FROM movies m
	           JOIN sessions s ON s.movie_id = m.id
	           JOIN tickets  t ON t.session_id = s.id AND t.status = 'SOLD'
	           WHERE t.purchase_time >= UTC_TIMESTAMP() - INTERVAL ? DAY
	           GROUP BY m.id, m.title, m.genre
	           ORDER BY sold DESC
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, days, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]PopularMovie, 0)
	for rows.Next() {
		var p PopularMovie
		if err := rows.Scan(&p.MovieID, &p.Title, &p.Genre, &p.TicketsSold); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UserStats summarises one user's purchases.
type UserStats struct {
	UserID           uint64 `json:"user_id"`
	TotalTickets     int64  `json:"total_tickets"`
	TicketsThisMonth int64  `json:"tickets_this_month"`
	TotalSpentCents  uint64 `json:"total_spent_cents"`
	FavoriteGenre    string `json:"favorite_genre"`
}

// UserStats aggregates real figures for the user: lifetime SOLD
// tickets, purchases since the start of the current month, total
// spend, and the genre they buy most.
func (r *StatsRepo) UserStats(ctx context.Context, userID uint64) (*UserStats, error) {
	st := UserStats{UserID: userID}

	const totalsQ = `SELECT COUNT(*), COALESCE(SUM(s.price_cents), 0)
	                 FROM tickets t JOIN sessions s ON s.id = t.session_id
	                 WHERE t.user_id = ? AND t.status = 'SOLD'`
	if err := r.db.QueryRowContext(ctx, totalsQ, userID).Scan(&st.TotalTickets, &st.TotalSpentCents); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	const monthQ = `SELECT COUNT(*) FROM tickets
	                WHERE user_id = ? AND status = 'SOLD' AND purchase_time >= ?`
	if err := r.db.QueryRowContext(ctx, monthQ, userID, monthStart).Scan(&st.TicketsThisMonth); err != nil {
		return nil, err
	}

	const genreQ = `SELECT m.genre
	                FROM tickets t
	                JOIN sessions s ON s.id = t.session_id
	                JOIN movies   m ON m.id = s.movie_id
	                WHERE t.user_id = ? AND t.status = 'SOLD'
	                GROUP BY m.genre
	                ORDER BY COUNT(*) DESC
	                LIMIT 1`
	err := r.db.QueryRowContext(ctx, genreQ, userID).Scan(&st.FavoriteGenre)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return &st, nil
}

// SessionAttendance reports how full an upcoming session is.
type SessionAttendance struct {
	SessionID  uint64    `json:"session_id"`
	MovieTitle string    `json:"movie_title"`
	HallName   string    `json:"hall_name"`
	StartTime  time.Time `json:"start_time"`
	Capacity   int64     `json:"capacity"`
	Occupied   int64     `json:"occupied"`
}

// LowAttendance lists upcoming sessions whose occupancy ratio is below
// the threshold (0 < threshold <= 1).
func (r *StatsRepo) LowAttendance(ctx context.Context, threshold float64) ([]SessionAttendance, error) {
	const q = `SELECT s.id, m.title, h.name, s.start_time,
	                  h.total_rows * h.seats_per_row AS capacity,
	                  COUNT(t.id) AS occupied
	           FROM sessions s
	           JOIN movies m ON m.id = s.movie_id
	           JOIN halls  h ON h.id = s.hall_id
	           LEFT JOIN tickets t ON t.session_id = s.id AND t.status IN ('BOOKED','SOLD')
	           WHERE s.start_time > UTC_TIMESTAMP()
	           GROUP BY s.id, m.title, h.name, s.start_time, capacity
	           HAVING occupied < capacity * ?
	           ORDER BY s.start_time`
	rows, err := r.db.QueryContext(ctx, q, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SessionAttendance, 0)
	for rows.Next() {
		var a SessionAttendance
		if err := rows.Scan(&a.SessionID, &a.MovieTitle, &a.HallName, &a.StartTime, &a.Capacity, &a.Occupied); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

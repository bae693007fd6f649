package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// AdminHandler serves the reporting dashboard and the destructive
// session operations reserved for administrators.
type AdminHandler struct {
	Stats       *repository.StatsRepo
	Users       *repository.UserRepo
	SessionRepo *repository.SessionRepo
	TicketRepo  *repository.TicketRepo
	MovieRepo   *repository.MovieRepo
}

func NewAdminHandler(st *repository.StatsRepo, u *repository.UserRepo,
	s *repository.SessionRepo, t *repository.TicketRepo, m *repository.MovieRepo) *AdminHandler {
	return &AdminHandler{Stats: st, Users: u, SessionRepo: s, TicketRepo: t, MovieRepo: m}
}

// Dashboard handles GET /v1/admin/dashboard.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	d, err := h.Stats.Dashboard(c.Request().Context())
	if err != nil {
		return DBError(c, err)
	}
	return OK(c, "", d)
}

// parsePeriod reads optional from/to query params (YYYY-MM-DD) and
// defaults to the last 30 days ending now.
func parsePeriod(c echo.Context) (from, to time.Time, err error) {
	now := time.Now().UTC()
	from = now.AddDate(0, 0, -30)
	to = now
	if s := c.QueryParam("from"); s != "" {
		if from, err = time.Parse("2006-01-02", s); err != nil {
			return
		}
	}
	if s := c.QueryParam("to"); s != "" {
		var d time.Time
		if d, err = time.Parse("2006-01-02", s); err != nil {
			return
		}
		to = d.Add(24 * time.Hour)
	}
	return
}

// Revenue handles GET /v1/admin/reports/revenue?from=&to=.
func (h *AdminHandler) Revenue(c echo.Context) error {
	from, to, err := parsePeriod(c)
	if err != nil {
		return BadRequest(c, "invalid date, want YYYY-MM-DD")
	}
	rev, err := h.Stats.RevenueBetween(c.Request().Context(), from, to)
	if err != nil {
		return DBError(c, err)
	}
	return OK(c, "", rev)
}

// RevenueByDay handles GET /v1/admin/reports/revenue/daily?from=&to=.
func (h *AdminHandler) RevenueByDay(c echo.Context) error {
	from, to, err := parsePeriod(c)
	if err != nil {
		return BadRequest(c, "invalid date, want YYYY-MM-DD")
	}
	out, err := h.Stats.RevenueByDay(c.Request().Context(), from, to)
	if err != nil {
		return DBError(c, err)
	}
	return OK(c, "", out)
}

// RevenueByMovie handles GET /v1/admin/reports/revenue/movies.
func (h *AdminHandler) RevenueByMovie(c echo.Context) error {
	out, err := h.Stats.RevenueByMovie(c.Request().Context())
	if err != nil {
		return DBError(c, err)
	}
	return OK(c, "", out)
}

// PopularMovies handles GET /v1/admin/reports/popular?days=&limit=.
func (h *AdminHandler) PopularMovies(c echo.Context) error {
	days := 30
	limit := 10
	if s := c.QueryParam("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return BadRequest(c, "invalid days")
		}
		days = n
	}
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return BadRequest(c, "invalid limit")
		}
		limit = n
	}
	out, err := h.Stats.PopularMovies(c.Request().Context(), days, limit)
	if err != nil {
		return DBError(c, err)
	}
	return OK(c, "", out)
}

// LowAttendance handles GET /v1/admin/reports/low-attendance?threshold=.
// The threshold is an occupancy ratio in (0, 1], default 0.2.
func (h *AdminHandler) LowAttendance(c echo.Context) error {
	threshold := 0.2
	if s := c.QueryParam("threshold"); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f <= 0 || f > 1 {
			return BadRequest(c, "threshold must be in (0, 1]")
		}
		threshold = f
	}
	out, err := h.Stats.LowAttendance(c.Request().Context(), threshold)
	if err != nil {
		return DBError(c, err)
	}
	return OK(c, "", out)
}

// ListUsers handles GET /v1/admin/users.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.Users.List(c.Request().Context())
	if err != nil {
		return DBError(c, err)
	}
	return OK(c, "", users)
}

// UserStats handles GET /v1/admin/users/:id/stats.
func (h *AdminHandler) UserStats(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return BadRequest(c, err.Error())
	}
	if _, err := h.Users.GetByID(c.Request().Context(), id); err != nil {
		return DBError(c, err)
	}
	st, err := h.Stats.UserStats(c.Request().Context(), id)
	if err != nil {
		return DBError(c, err)
	}
	return OK(c, "", st)
}

// UserTickets handles GET /v1/admin/users/:id/tickets.
func (h *AdminHandler) UserTickets(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return BadRequest(c, err.Error())
	}
	if _, err := h.Users.GetByID(c.Request().Context(), id); err != nil {
		return DBError(c, err)
	}
	out, err := h.TicketRepo.ListByUser(c.Request().Context(), id)
	if err != nil {
		return DBError(c, err)
	}
	return OK(c, "", out)
}

// CancelSession handles POST /v1/admin/sessions/:id/cancel.  Unlike
// the regular delete, this cancels every ticket, sold ones included,
// and then removes the session.  Sessions that have already started
// cannot be cancelled.
func (h *AdminHandler) CancelSession(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return BadRequest(c, err.Error())
	}
	ctx := c.Request().Context()
	s, err := h.SessionRepo.GetByID(ctx, id)
	if err != nil {
		return DBError(c, err)
	}
	if s.Started(time.Now().UTC()) {
		return Conflict(c, "session has already started")
	}

	tx, err := h.SessionRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return Fail(c, http.StatusInternalServerError, "failed to start transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	cancelled, err := h.TicketRepo.CancelByStatusTx(ctx, tx, id, model.StatusBooked, model.StatusSold)
	if err != nil {
		return Fail(c, http.StatusInternalServerError, "failed to cancel tickets")
	}
	if err := h.SessionRepo.DeleteTx(ctx, tx, id); err != nil {
		return Fail(c, http.StatusInternalServerError, "database error")
	}
	if err := tx.Commit(); err != nil {
		return Fail(c, http.StatusInternalServerError, "commit failed")
	}
	committed = true

	return OK(c, "session cancelled", echo.Map{"tickets_cancelled": cancelled})
}

type rescheduleReq struct {
	NewDate string `json:"new_date"` // YYYY-MM-DD, time of day is kept
}

// Reschedule handles POST /v1/admin/sessions/:id/reschedule.  The
// session moves to the new date keeping its time of day; the target
// slot is re-validated for overlaps.
func (h *AdminHandler) Reschedule(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return BadRequest(c, err.Error())
	}
	var req rescheduleReq
	if err := c.Bind(&req); err != nil {
		return BadRequest(c, "invalid body")
	}
	day, err := time.Parse("2006-01-02", req.NewDate)
	if err != nil {
		return BadRequest(c, "invalid new_date, want YYYY-MM-DD")
	}

	ctx := c.Request().Context()
	s, err := h.SessionRepo.GetByID(ctx, id)
	if err != nil {
		return DBError(c, err)
	}
	now := time.Now().UTC()
	if s.Started(now) {
		return Conflict(c, "session has already started")
	}

	old := s.StartTime.UTC()
	newStart := time.Date(day.Year(), day.Month(), day.Day(),
		old.Hour(), old.Minute(), old.Second(), 0, time.UTC)
	if !newStart.After(now) {
		return Conflict(c, "new start time must be in the future")
	}
	newEnd := newStart.Add(s.EndTime.Sub(s.StartTime))

	overlaps, err := h.SessionRepo.HasOverlapping(ctx, s.HallID, s.ID, newStart, newEnd)
	if err != nil {
		return DBError(c, err)
	}
	if overlaps {
		return Conflict(c, "hall already has a session in this time range")
	}

	s.StartTime = newStart
	s.EndTime = newEnd
	if err := h.SessionRepo.Update(ctx, s); err != nil {
		return DBError(c, err)
	}
	return OK(c, "session rescheduled", s)
}

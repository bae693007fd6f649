package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// SessionHandler serves session scheduling and browsing.  End times
// are always derived from the movie duration; client-supplied end
// times are ignored.
type SessionHandler struct {
	SessionRepo *repository.SessionRepo
	MovieRepo   *repository.MovieRepo
	HallRepo    *repository.HallRepo
	SeatRepo    *repository.SeatRepo
	TicketRepo  *repository.TicketRepo
}

func NewSessionHandler(s *repository.SessionRepo, m *repository.MovieRepo, h *repository.HallRepo,
	seats *repository.SeatRepo, t *repository.TicketRepo) *SessionHandler {
	return &SessionHandler{SessionRepo: s, MovieRepo: m, HallRepo: h, SeatRepo: seats, TicketRepo: t}
}

type sessionReq struct {
	MovieID    uint64    `json:"movie_id"`
	HallID     uint64    `json:"hall_id"`
	StartTime  time.Time `json:"start_time"`
	PriceCents uint32    `json:"price_cents"`
}

// buildSession validates references and the schedule rules, then
// derives the end time.  Failures come back as httpError or repository
// sentinels for respondErr to translate.
func (h *SessionHandler) buildSession(ctx context.Context, req sessionReq, out *model.Session, excludeID uint64) error {
	if req.MovieID == 0 || req.HallID == 0 {
		return badRequestErr("movie_id and hall_id are required")
	}
	if req.StartTime.IsZero() {
		return badRequestErr("start_time is required")
	}
	if req.PriceCents == 0 {
		return badRequestErr("price_cents must be greater than zero")
	}
	start := req.StartTime.UTC()
	if !start.After(time.Now().UTC()) {
		return conflictErr("start_time must be in the future")
	}

	movie, err := h.MovieRepo.GetByID(ctx, req.MovieID)
	if err != nil {
		return err
	}
	if _, err := h.HallRepo.GetByID(ctx, req.HallID); err != nil {
		return err
	}

	end := model.SessionEndTime(start, movie.DurationMin)
	overlaps, err := h.SessionRepo.HasOverlapping(ctx, req.HallID, excludeID, start, end)
	if err != nil {
		return err
	}
	if overlaps {
		return conflictErr("hall already has a session in this time range")
	}

	out.MovieID = req.MovieID
	out.HallID = req.HallID
	out.StartTime = start
	out.EndTime = end
	out.PriceCents = req.PriceCents
	return nil
}

// Create handles POST /v1/sessions (admin).
func (h *SessionHandler) Create(c echo.Context) error {
	var req sessionReq
	if err := c.Bind(&req); err != nil {
		return BadRequest(c, "invalid body")
	}
	var s model.Session
	if err := h.buildSession(c.Request().Context(), req, &s, 0); err != nil {
		return respondErr(c, err)
	}
	if err := h.SessionRepo.Create(c.Request().Context(), &s); err != nil {
		return DBError(c, err)
	}
	return Created(c, "session created", s)
}

// Get handles GET /v1/sessions/:id.
func (h *SessionHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return BadRequest(c, err.Error())
	}
	d, err := h.SessionRepo.GetDetail(c.Request().Context(), id)
	if err != nil {
		return DBError(c, err)
	}
	return OK(c, "", d)
}

// List handles GET /v1/sessions.
func (h *SessionHandler) List(c echo.Context) error {
	out, err := h.SessionRepo.List(c.Request().Context())
	if err != nil {
		return DBError(c, err)
	}
	return OK(c, "", out)
}

// ByMovie handles GET /v1/movies/:id/sessions.
func (h *SessionHandler) ByMovie(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return BadRequest(c, err.Error())
	}
	if _, err := h.MovieRepo.GetByID(c.Request().Context(), id); err != nil {
		return DBError(c, err)
	}
	out, err := h.SessionRepo.ByMovie(c.Request().Context(), id)
	if err != nil {
		return DBError(c, err)
	}
	return OK(c, "", out)
}

// ByHall handles GET /v1/halls/:id/sessions.
func (h *SessionHandler) ByHall(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return BadRequest(c, err.Error())
	}
	if _, err := h.HallRepo.GetByID(c.Request().Context(), id); err != nil {
		return DBError(c, err)
	}
	out, err := h.SessionRepo.ByHall(c.Request().Context(), id)
	if err != nil {
		return DBError(c, err)
	}
	return OK(c, "", out)
}

// ByDate handles GET /v1/sessions/by-date?date=YYYY-MM-DD.
func (h *SessionHandler) ByDate(c echo.Context) error {
	day, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return BadRequest(c, "invalid date, want YYYY-MM-DD")
	}
	out, err := h.SessionRepo.ByDate(c.Request().Context(), day)
	if err != nil {
		return DBError(c, err)
	}
	return OK(c, "", out)
}

// Upcoming handles GET /v1/sessions/upcoming?days=N.
func (h *SessionHandler) Upcoming(c echo.Context) error {
	days := 0
	if s := c.QueryParam("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return BadRequest(c, "invalid days")
		}
		days = n
	}
	out, err := h.SessionRepo.Upcoming(c.Request().Context(), days)
	if err != nil {
		return DBError(c, err)
	}
	return OK(c, "", out)
}

// Available handles GET /v1/sessions/available.
func (h *SessionHandler) Available(c echo.Context) error {
	out, err := h.SessionRepo.Available(c.Request().Context())
	if err != nil {
		return DBError(c, err)
	}
	return OK(c, "", out)
}

// Search handles GET /v1/sessions/search.  All filters are optional
// and combine with AND: movie_id, hall_id, start_date, end_date
// (YYYY-MM-DD), min_price, max_price.
func (h *SessionHandler) Search(c echo.Context) error {
	var q repository.SearchQuery
	var err error

	if s := c.QueryParam("movie_id"); s != "" {
		if q.MovieID, err = strconv.ParseUint(s, 10, 64); err != nil {
			return BadRequest(c, "invalid movie_id")
		}
	}
	if s := c.QueryParam("hall_id"); s != "" {
		if q.HallID, err = strconv.ParseUint(s, 10, 64); err != nil {
			return BadRequest(c, "invalid hall_id")
		}
	}
	if s := c.QueryParam("start_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return BadRequest(c, "invalid start_date, want YYYY-MM-DD")
		}
		q.StartDate = &t
	}
	if s := c.QueryParam("end_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return BadRequest(c, "invalid end_date, want YYYY-MM-DD")
		}
		q.EndDate = &t
	}
	if s := c.QueryParam("min_price"); s != "" {
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return BadRequest(c, "invalid min_price")
		}
		v := uint32(n)
		q.MinPrice = &v
	}
	if s := c.QueryParam("max_price"); s != "" {
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return BadRequest(c, "invalid max_price")
		}
		v := uint32(n)
		q.MaxPrice = &v
	}

	out, err := h.SessionRepo.Search(c.Request().Context(), q)
	if err != nil {
		return DBError(c, err)
	}
	return OK(c, "", out)
}

// seatView is one seat of the per-session availability map.
type seatView struct {
	SeatID     uint64             `json:"seat_id"`
	SeatCode   string             `json:"seat_code"`
	Row        uint32             `json:"row"`
	SeatNumber uint32             `json:"seat_number"`
	Status     model.TicketStatus `json:"status"`
}

// SeatMap handles GET /v1/sessions/:id/seats.  Seats without a BOOKED
// or SOLD ticket report AVAILABLE.
func (h *SessionHandler) SeatMap(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return BadRequest(c, err.Error())
	}
	ctx := c.Request().Context()
	s, err := h.SessionRepo.GetByID(ctx, id)
	if err != nil {
		return DBError(c, err)
	}
	seats, err := h.SeatRepo.GetByHall(ctx, s.HallID)
	if err != nil {
		return DBError(c, err)
	}
	occupied, err := h.TicketRepo.OccupiedSeatIDs(ctx, id)
	if err != nil {
		return DBError(c, err)
	}

	out := make([]seatView, 0, len(seats))
	for _, seat := range seats {
		status := model.StatusAvailable
		if st, ok := occupied[seat.ID]; ok {
			status = st
		}
		out = append(out, seatView{
			SeatID:     seat.ID,
			SeatCode:   seat.SeatCode,
			Row:        seat.RowNumber,
			SeatNumber: seat.SeatNumber,
			Status:     status,
		})
	}
	return OK(c, "", echo.Map{"session_id": id, "seats": out})
}

// Update handles PUT /v1/sessions/:id (admin).  The end time is
// re-derived and the overlap check excludes the session itself.
func (h *SessionHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return BadRequest(c, err.Error())
	}
	var req sessionReq
	if err := c.Bind(&req); err != nil {
		return BadRequest(c, "invalid body")
	}
	s, err := h.SessionRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return DBError(c, err)
	}
	if err := h.buildSession(c.Request().Context(), req, s, id); err != nil {
		return respondErr(c, err)
	}
	if err := h.SessionRepo.Update(c.Request().Context(), s); err != nil {
		return DBError(c, err)
	}
	return OK(c, "session updated", s)
}

// Delete handles DELETE /v1/sessions/:id (admin).  Sessions with sold
// tickets cannot be deleted; outstanding reservations are cancelled
// before the row goes away.
func (h *SessionHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return BadRequest(c, err.Error())
	}
	ctx := c.Request().Context()
	if _, err := h.SessionRepo.GetByID(ctx, id); err != nil {
		return DBError(c, err)
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

	sold, err := h.TicketRepo.CountSoldTx(ctx, tx, id)
	if err != nil {
		return Fail(c, http.StatusInternalServerError, "database error")
	}
	if sold > 0 {
		return Conflict(c, "session has sold tickets and cannot be deleted")
	}
	if _, err := h.TicketRepo.CancelByStatusTx(ctx, tx, id, model.StatusBooked); err != nil {
		return Fail(c, http.StatusInternalServerError, "failed to cancel reservations")
	}
	if err := h.SessionRepo.DeleteTx(ctx, tx, id); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return NotFound(c, err.Error())
		}
		return Fail(c, http.StatusInternalServerError, "database error")
	}
	if err := tx.Commit(); err != nil {
		return Fail(c, http.StatusInternalServerError, "commit failed")
	}
	committed = true

	return OK(c, "session deleted", nil)
}

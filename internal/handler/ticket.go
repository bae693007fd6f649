package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/queue"
	"github.com/iliyamo/cinema-booking/internal/repository"
	queue_publisher "github.com/iliyamo/cinema-booking/internal/service"
)

// TicketHandler runs the booking workflow.  Reserve and Purchase
// create tickets inside one transaction per request; the unique key on
// (session_id, seat_id, active) settles races between concurrent
// buyers of the same seat.
type TicketHandler struct {
	TicketRepo  *repository.TicketRepo
	SessionRepo *repository.SessionRepo
	SeatRepo    *repository.SeatRepo
	UserRepo    *repository.UserRepo
}

func NewTicketHandler(t *repository.TicketRepo, s *repository.SessionRepo,
	seats *repository.SeatRepo, users *repository.UserRepo) *TicketHandler {
	return &TicketHandler{TicketRepo: t, SessionRepo: s, SeatRepo: seats, UserRepo: users}
}

type seatSelectionReq struct {
	SeatIDs []uint64 `json:"seat_ids"`
}

// receipt is the purchase/confirmation response payload.
type receipt struct {
	Tickets          []repository.TicketDetail `json:"tickets"`
	TotalAmountCents uint64                    `json:"total_amount_cents"`
}

func buildReceipt(details []repository.TicketDetail) receipt {
	var total uint64
	for _, d := range details {
		total += uint64(d.PriceCents)
	}
	return receipt{Tickets: details, TotalAmountCents: total}
}

// batchTicketNumbers generates n ticket numbers with no duplicates
// inside the batch.  Collisions with existing rows surface on insert
// as ErrTicketNumberTaken.
func batchTicketNumbers(n int) []string {
	numbers := make([]string, 0, n)
	seen := make(map[string]struct{}, n)
	for len(numbers) < n {
		num := model.RandomTicketNumber()
		if _, dup := seen[num]; dup {
			continue
		}
		seen[num] = struct{}{}
		numbers = append(numbers, num)
	}
	return numbers
}

// issueTickets is the shared body of Reserve and Purchase.  It
// validates the session and seats, inserts one ticket per seat with
// the given status, and returns the joined details.
func (h *TicketHandler) issueTickets(c echo.Context, status model.TicketStatus) error {
	userID, err := getUserID(c)
	if err != nil {
		return Unauthorized(c)
	}
	sessionID, err := parseID(c, "id")
	if err != nil {
		return BadRequest(c, err.Error())
	}

	var body seatSelectionReq
	if err := c.Bind(&body); err != nil {
		return BadRequest(c, "invalid body")
	}
	seatIDs := dedupeIDs(body.SeatIDs)
	if len(seatIDs) == 0 {
		return BadRequest(c, "seat_ids is required")
	}

	ctx := c.Request().Context()
	now := time.Now().UTC()

	tx, err := h.TicketRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return Fail(c, http.StatusInternalServerError, "failed to start transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	session, err := h.SessionRepo.GetDetailTx(ctx, tx, sessionID)
	if err != nil {
		return DBError(c, err)
	}
	if session.Started(now) {
		return Conflict(c, "session has already started")
	}

	// A token can outlive its account; the insert would otherwise fail
	// on the user_id foreign key.
	exists, err := h.UserRepo.ExistsTx(ctx, tx, userID)
	if err != nil {
		return Fail(c, http.StatusInternalServerError, "database error")
	}
	if !exists {
		return NotFound(c, repository.ErrUserNotFound.Error())
	}

	seats, err := h.SeatRepo.GetByIDsTx(ctx, tx, seatIDs)
	if err != nil {
		return Fail(c, http.StatusInternalServerError, "database error")
	}
	if len(seats) != len(seatIDs) {
		return NotFound(c, "one or more seats do not exist")
	}
	for _, seat := range seats {
		if seat.HallID != session.HallID {
			return BadRequest(c, "seat does not belong to the session's hall")
		}
	}

	available, err := h.TicketRepo.AreSeatsAvailableTx(ctx, tx, sessionID, seatIDs)
	if err != nil {
		return Fail(c, http.StatusInternalServerError, "database error")
	}
	if !available {
		return Conflict(c, repository.ErrSeatsUnavailable.Error())
	}

	var purchaseTime *time.Time
	if status == model.StatusSold {
		purchaseTime = &now
	}
	var numbers []string
	for attempt := 0; ; attempt++ {
		numbers = batchTicketNumbers(len(seatIDs))
		tickets := make([]model.Ticket, 0, len(seatIDs))
		for i, seatID := range seatIDs {
			tickets = append(tickets, model.Ticket{
				TicketNumber: numbers[i],
				SessionID:    sessionID,
				SeatID:       seatID,
				UserID:       &userID,
				Status:       status,
				PurchaseTime: purchaseTime,
			})
		}
		err := h.TicketRepo.CreateBulkTx(ctx, tx, tickets)
		if err == nil {
			break
		}
		// An existing row may hold one of the generated numbers; one
		// regeneration is enough given the millisecond timestamp.
		if errors.Is(err, repository.ErrTicketNumberTaken) && attempt == 0 {
			continue
		}
		return DBError(c, err)
	}

	details, err := h.TicketRepo.DetailsByNumbersTx(ctx, tx, numbers)
	if err != nil {
		return Fail(c, http.StatusInternalServerError, "database error")
	}
	if err := tx.Commit(); err != nil {
		return Fail(c, http.StatusInternalServerError, "commit failed")
	}
	committed = true

	rcpt := buildReceipt(details)
	if status == model.StatusSold {
		h.publishIssued(userID, session, details, rcpt.TotalAmountCents, now)
		return Created(c, "tickets purchased", rcpt)
	}
	return Created(c, "seats reserved", rcpt)
}

// publishIssued fires a tickets.issued event without blocking the
// response on the broker.
func (h *TicketHandler) publishIssued(userID uint64, session *repository.SessionDetail,
	details []repository.TicketDetail, total uint64, at time.Time) {
	ev := queue.TicketsIssuedEvent{
		UserID:           userID,
		SessionID:        session.ID,
		MovieTitle:       session.MovieTitle,
		HallName:         session.HallName,
		StartsAt:         session.StartTime.Format(time.RFC3339),
		TotalAmountCents: total,
		IssuedAt:         at.Format(time.RFC3339),
	}
	for _, d := range details {
		ev.TicketNumbers = append(ev.TicketNumbers, d.TicketNumber)
		ev.SeatCodes = append(ev.SeatCodes, d.SeatCode)
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishTicketsIssued(ctx, ev)
	}()
}

// Reserve handles POST /v1/sessions/:id/reserve.  Seats are held as
// BOOKED until confirmed, cancelled, or reclaimed by the expiry sweep.
func (h *TicketHandler) Reserve(c echo.Context) error {
	return h.issueTickets(c, model.StatusBooked)
}

// Purchase handles POST /v1/sessions/:id/purchase.  Seats go straight
// to SOLD with the purchase time stamped.
func (h *TicketHandler) Purchase(c echo.Context) error {
	return h.issueTickets(c, model.StatusSold)
}

// Confirm handles POST /v1/tickets/:number/confirm, turning the
// caller's BOOKED ticket into SOLD.  Like Cancel, it is refused once
// the session has started.
func (h *TicketHandler) Confirm(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return Unauthorized(c)
	}
	number := c.Param("number")
	if number == "" {
		return BadRequest(c, "ticket number is required")
	}

	ctx := c.Request().Context()
	now := time.Now().UTC()

	tx, err := h.TicketRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return Fail(c, http.StatusInternalServerError, "failed to start transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	t, err := h.TicketRepo.GetByNumberTx(ctx, tx, number)
	if err != nil {
		return DBError(c, err)
	}
	if t.UserID == nil || *t.UserID != userID {
		return NotFound(c, repository.ErrTicketNotFound.Error())
	}
	if !t.Status.CanConfirm() {
		return Conflict(c, "only booked tickets can be confirmed")
	}
	session, err := h.SessionRepo.GetDetailTx(ctx, tx, t.SessionID)
	if err != nil {
		return DBError(c, err)
	}
	if session.Started(now) {
		return Conflict(c, "session has already started")
	}
	if err := h.TicketRepo.UpdateStatusTx(ctx, tx, t.ID, model.StatusSold, &now); err != nil {
		return DBError(c, err)
	}
	details, err := h.TicketRepo.DetailsByNumbersTx(ctx, tx, []string{number})
	if err != nil {
		return Fail(c, http.StatusInternalServerError, "database error")
	}
	if err := tx.Commit(); err != nil {
		return Fail(c, http.StatusInternalServerError, "commit failed")
	}
	committed = true

	rcpt := buildReceipt(details)
	h.publishIssued(userID, session, details, rcpt.TotalAmountCents, now)
	return OK(c, "ticket confirmed", rcpt)
}

// Cancel handles POST /v1/tickets/:number/cancel.  Cancellation is
// refused once the session has started.
func (h *TicketHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return Unauthorized(c)
	}
	number := c.Param("number")
	if number == "" {
		return BadRequest(c, "ticket number is required")
	}

	ctx := c.Request().Context()
	now := time.Now().UTC()

	tx, err := h.TicketRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return Fail(c, http.StatusInternalServerError, "failed to start transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	t, err := h.TicketRepo.GetByNumberTx(ctx, tx, number)
	if err != nil {
		return DBError(c, err)
	}
	if t.UserID == nil || *t.UserID != userID {
		return NotFound(c, repository.ErrTicketNotFound.Error())
	}
	if !t.Status.CanCancel() {
		return Conflict(c, "ticket is not cancellable")
	}
	session, err := h.SessionRepo.GetDetailTx(ctx, tx, t.SessionID)
	if err != nil {
		return DBError(c, err)
	}
	if session.Started(now) {
		return Conflict(c, "session has already started")
	}
	if err := h.TicketRepo.UpdateStatusTx(ctx, tx, t.ID, model.StatusCancelled, nil); err != nil {
		return DBError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return Fail(c, http.StatusInternalServerError, "commit failed")
	}
	committed = true

	return OK(c, "ticket cancelled", nil)
}

// My handles GET /v1/tickets/my.
func (h *TicketHandler) My(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return Unauthorized(c)
	}
	out, err := h.TicketRepo.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return DBError(c, err)
	}
	return OK(c, "", out)
}

// Get handles GET /v1/tickets/:number.  Users only see their own
// tickets; admins see everything.
func (h *TicketHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return Unauthorized(c)
	}
	number := c.Param("number")
	if number == "" {
		return BadRequest(c, "ticket number is required")
	}
	t, err := h.TicketRepo.GetByNumber(c.Request().Context(), number)
	if err != nil {
		return DBError(c, err)
	}
	role, _ := c.Get("role").(string)
	if role != model.RoleAdmin && (t.UserID == nil || *t.UserID != userID) {
		return NotFound(c, repository.ErrTicketNotFound.Error())
	}
	return OK(c, "", t)
}

// BySession handles GET /v1/sessions/:id/tickets (admin).
func (h *TicketHandler) BySession(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return BadRequest(c, err.Error())
	}
	if _, err := h.SessionRepo.GetByID(c.Request().Context(), id); err != nil {
		return DBError(c, err)
	}
	out, err := h.TicketRepo.ListBySession(c.Request().Context(), id)
	if err != nil {
		return DBError(c, err)
	}
	return OK(c, "", out)
}

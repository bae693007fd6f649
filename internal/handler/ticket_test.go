package handler

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/repository"
)

func TestBuildReceiptTotalsPerSeatPrice(t *testing.T) {
	details := []repository.TicketDetail{
		{SeatCode: "1-1-1", PriceCents: 1250},
		{SeatCode: "1-1-2", PriceCents: 1250},
		{SeatCode: "1-1-3", PriceCents: 1250},
	}
	r := buildReceipt(details)
	assert.Equal(t, uint64(3750), r.TotalAmountCents)
	assert.Len(t, r.Tickets, 3)
}

func TestBuildReceiptEmpty(t *testing.T) {
	r := buildReceipt(nil)
	assert.Zero(t, r.TotalAmountCents)
	assert.Empty(t, r.Tickets)
}

func TestBatchTicketNumbersUnique(t *testing.T) {
	re := regexp.MustCompile(`^TKT-\d+-\d{1,3}$`)
	numbers := batchTicketNumbers(200)
	require.Len(t, numbers, 200)

	seen := make(map[string]struct{}, len(numbers))
	for _, n := range numbers {
		assert.Regexp(t, re, n)
		_, dup := seen[n]
		assert.False(t, dup, "duplicate number %s", n)
		seen[n] = struct{}{}
	}
}

func newBookingHandler(t *testing.T) (*TicketHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	h := NewTicketHandler(repository.NewTicketRepo(db), repository.NewSessionRepo(db),
		repository.NewSeatRepo(db), repository.NewUserRepo(db))
	return h, mock
}

func sessionDetailRows(start time.Time) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "movie_id", "hall_id", "start_time", "end_time", "price_cents",
		"created_at", "updated_at", "title", "duration_min", "name", "hall_number",
	}).AddRow(9, 1, 2, start, start.Add(2*time.Hour), 1500, now, now, "Heat", 120, "Main Hall", 1)
}

func bookedTicketRows(userID int64) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "ticket_number", "session_id", "seat_id", "user_id", "status",
		"purchase_time", "created_at", "updated_at",
	}).AddRow(3, "TKT-1700000000000-1", 9, 4, userID, "BOOKED", nil, now, now)
}

// A BOOKED ticket whose session already started must not become SOLD.
func TestConfirmRejectsStartedSession(t *testing.T) {
	h, mock := newBookingHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM tickets WHERE ticket_number").
		WillReturnRows(bookedTicketRows(7))
	mock.ExpectQuery("FROM sessions s").
		WillReturnRows(sessionDetailRows(time.Now().UTC().Add(-time.Hour)))
	mock.ExpectRollback()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("number")
	c.SetParamValues("TKT-1700000000000-1")
	c.Set("user_id", float64(7))

	require.NoError(t, h.Confirm(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "session has already started", env.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A valid token for a user whose row no longer exists must not reach
// the ticket insert.
func TestReserveRejectsMissingUser(t *testing.T) {
	h, mock := newBookingHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM sessions s").
		WillReturnRows(sessionDetailRows(time.Now().UTC().Add(2 * time.Hour)))
	mock.ExpectQuery("SELECT 1 FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectRollback()

	c, rec := newJSONContext(t, http.MethodPost, `{"seat_ids":[4]}`)
	c.SetParamNames("id")
	c.SetParamValues("9")
	c.Set("user_id", float64(7))

	require.NoError(t, h.Reserve(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, repository.ErrUserNotFound.Error(), env.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

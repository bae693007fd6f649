package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/repository"
)

func newAdminHandler(t *testing.T) (*AdminHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	h := NewAdminHandler(repository.NewStatsRepo(db), repository.NewUserRepo(db),
		repository.NewSessionRepo(db), repository.NewTicketRepo(db), repository.NewMovieRepo(db))
	return h, mock
}

func sessionRows(start time.Time) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "movie_id", "hall_id", "start_time", "end_time", "price_cents",
		"created_at", "updated_at",
	}).AddRow(9, 1, 2, start, start.Add(2*time.Hour), 1500, now, now)
}

func TestCancelSessionRejectsStartedSession(t *testing.T) {
	h, mock := newAdminHandler(t)
	mock.ExpectQuery("FROM sessions WHERE id").
		WillReturnRows(sessionRows(time.Now().UTC().Add(-time.Hour)))

	c, rec := newJSONContext(t, http.MethodPost, "")
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.CancelSession(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "session has already started", env.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRescheduleRejectsStartedSession(t *testing.T) {
	h, mock := newAdminHandler(t)
	mock.ExpectQuery("FROM sessions WHERE id").
		WillReturnRows(sessionRows(time.Now().UTC().Add(-time.Hour)))

	c, rec := newJSONContext(t, http.MethodPost, `{"new_date":"2990-06-01"}`)
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.Reschedule(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "session has already started", env.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRescheduleRejectsPastTarget(t *testing.T) {
	h, mock := newAdminHandler(t)
	mock.ExpectQuery("FROM sessions WHERE id").
		WillReturnRows(sessionRows(time.Now().UTC().Add(2 * time.Hour)))

	c, rec := newJSONContext(t, http.MethodPost, `{"new_date":"2020-01-01"}`)
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.Reschedule(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "new start time must be in the future", env.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

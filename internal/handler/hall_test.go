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

// Hall and seat grid share one transaction: a failed seat insert must
// roll the hall row back instead of leaving a seatless hall behind.
func TestCreateHallRollsBackOnSeatFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	h := NewHallHandler(repository.NewHallRepo(db), repository.NewSeatRepo(db))

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO halls").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery("FROM halls WHERE id").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "hall_number", "name", "total_rows", "seats_per_row",
			"description", "created_at", "updated_at",
		}).AddRow(5, 12, "Main Hall", 2, 2, "", now, now))
	mock.ExpectExec("INSERT INTO seats").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	c, rec := newJSONContext(t, http.MethodPost,
		`{"hall_number":12,"name":"Main Hall","total_rows":2,"seats_per_row":2}`)

	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.NoError(t, mock.ExpectationsWereMet())
}

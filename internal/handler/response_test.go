package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/repository"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestOKEnvelope(t *testing.T) {
	c, rec := newTestContext(t)
	require.NoError(t, OK(c, "done", map[string]int{"n": 7}))

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "done", env.Message)
	assert.NotNil(t, env.Data)
}

func TestFailEnvelope(t *testing.T) {
	c, rec := newTestContext(t)
	require.NoError(t, Conflict(c, "seat taken"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "seat taken", env.Message)
	assert.Nil(t, env.Data)
}

func TestDBErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"movie not found", repository.ErrMovieNotFound, http.StatusNotFound},
		{"session not found", repository.ErrSessionNotFound, http.StatusNotFound},
		{"ticket not found", repository.ErrTicketNotFound, http.StatusNotFound},
		{"seats unavailable", repository.ErrSeatsUnavailable, http.StatusConflict},
		{"duplicate email", repository.ErrEmailExists, http.StatusConflict},
		{"unknown", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestContext(t)
			require.NoError(t, DBError(c, tt.err))
			assert.Equal(t, tt.want, rec.Code)
			assert.False(t, decodeEnvelope(t, rec).Success)
		})
	}
}

func TestGetUserID(t *testing.T) {
	c, _ := newTestContext(t)

	_, err := getUserID(c)
	assert.Error(t, err)

	c.Set("user_id", float64(42))
	id, err := getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	c.Set("user_id", "17")
	id, err = getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(17), id)
}

func TestParseID(t *testing.T) {
	c, _ := newTestContext(t)
	c.SetParamNames("id")
	c.SetParamValues("9")

	id, err := parseID(c, "id")
	require.NoError(t, err)
	assert.Equal(t, uint64(9), id)

	c.SetParamValues("zero")
	_, err = parseID(c, "id")
	assert.Error(t, err)
}

func TestDedupeIDs(t *testing.T) {
	assert.Equal(t, []uint64{3, 1, 2}, dedupeIDs([]uint64{3, 1, 3, 0, 2, 1}))
	assert.Empty(t, dedupeIDs([]uint64{0, 0}))
}

func TestRespondErr(t *testing.T) {
	c, rec := newTestContext(t)
	require.NoError(t, respondErr(c, conflictErr("slot taken")))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "slot taken", decodeEnvelope(t, rec).Message)

	c, rec = newTestContext(t)
	require.NoError(t, respondErr(c, badRequestErr("bad field")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newTestContext(t)
	require.NoError(t, respondErr(c, repository.ErrHallNotFound))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

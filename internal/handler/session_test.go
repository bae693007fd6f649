package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/model"
)

func newJSONContext(t *testing.T, method, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// A past start time must be rejected before any reference lookup runs,
// on create and update alike.
func TestBuildSessionRejectsPastStart(t *testing.T) {
	h := &SessionHandler{}
	req := sessionReq{
		MovieID:    1,
		HallID:     2,
		StartTime:  time.Now().UTC().Add(-time.Hour),
		PriceCents: 1500,
	}
	err := h.buildSession(context.Background(), req, &model.Session{}, 0)

	var he *httpError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusConflict, he.status)
	assert.Equal(t, "start_time must be in the future", he.message)
}

func TestCreateSessionRejectsPastStart(t *testing.T) {
	c, rec := newJSONContext(t, http.MethodPost,
		`{"movie_id":1,"hall_id":2,"start_time":"2020-01-01T18:00:00Z","price_cents":1500}`)

	h := &SessionHandler{}
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "start_time must be in the future", env.Message)
}

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

var errNoUser = errors.New("no authenticated user in context")

// httpError carries a status code out of handler helpers that cannot
// write the response themselves.
type httpError struct {
	status  int
	message string
}

func (e *httpError) Error() string { return e.message }

func badRequestErr(message string) error {
	return &httpError{status: http.StatusBadRequest, message: message}
}

func conflictErr(message string) error {
	return &httpError{status: http.StatusConflict, message: message}
}

// respondErr writes the envelope for an error coming out of a handler
// helper: httpError keeps its status, everything else goes through the
// repository sentinel mapping.
func respondErr(c echo.Context, err error) error {
	var he *httpError
	if errors.As(err, &he) {
		return Fail(c, he.status, he.message)
	}
	return DBError(c, err)
}

// getUserID extracts the authenticated user's ID stored by the JWT
// middleware.  MapClaims decode JSON numbers as float64; a string is
// also accepted for robustness.
func getUserID(c echo.Context) (uint64, error) {
	switch v := c.Get("user_id").(type) {
	case float64:
		if v > 0 {
			return uint64(v), nil
		}
	case uint64:
		if v > 0 {
			return v, nil
		}
	case string:
		if id, err := strconv.ParseUint(v, 10, 64); err == nil && id > 0 {
			return id, nil
		}
	}
	return 0, errNoUser
}

// parseID parses a positive uint64 path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// dedupeIDs removes zeros and duplicates while keeping order.
func dedupeIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// MovieHandler serves the movie catalog: public browsing plus the
// admin CRUD surface.
type MovieHandler struct {
	Movies *repository.MovieRepo
}

func NewMovieHandler(m *repository.MovieRepo) *MovieHandler {
	return &MovieHandler{Movies: m}
}

type movieReq struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	DurationMin    uint32 `json:"duration_min"`
	Genre          string `json:"genre"`
	AgeRestriction uint8  `json:"age_restriction"`
	PosterURL      string `json:"poster_url"`
	Director       string `json:"director"`
}

func (r *movieReq) validate() string {
	if strings.TrimSpace(r.Title) == "" {
		return "title is required"
	}
	if r.DurationMin == 0 {
		return "duration_min must be greater than zero"
	}
	return ""
}

func (r *movieReq) apply(m *model.Movie) {
	m.Title = strings.TrimSpace(r.Title)
	m.Description = strings.TrimSpace(r.Description)
	m.DurationMin = r.DurationMin
	m.Genre = strings.TrimSpace(r.Genre)
	m.AgeRestriction = r.AgeRestriction
	m.PosterURL = strings.TrimSpace(r.PosterURL)
	m.Director = strings.TrimSpace(r.Director)
}

// Create handles POST /v1/movies (admin).
func (h *MovieHandler) Create(c echo.Context) error {
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return BadRequest(c, "invalid body")
	}
	if msg := req.validate(); msg != "" {
		return BadRequest(c, msg)
	}
	var m model.Movie
	req.apply(&m)
	if err := h.Movies.Create(c.Request().Context(), &m); err != nil {
		return DBError(c, err)
	}
	return Created(c, "movie created", m)
}

// Get handles GET /v1/movies/:id.
func (h *MovieHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return BadRequest(c, err.Error())
	}
	m, err := h.Movies.GetByID(c.Request().Context(), id)
	if err != nil {
		return DBError(c, err)
	}
	return OK(c, "", m)
}

// List handles GET /v1/movies.
func (h *MovieHandler) List(c echo.Context) error {
	movies, err := h.Movies.List(c.Request().Context())
	if err != nil {
		return DBError(c, err)
	}
	return OK(c, "", movies)
}

// Search handles GET /v1/movies/search with optional title, genre and
// age_restriction filters combined with AND.
func (h *MovieHandler) Search(c echo.Context) error {
	var ageFilter *uint8
	if s := c.QueryParam("age_restriction"); s != "" {
		n, err := strconv.ParseUint(s, 10, 8)
		if err != nil {
			return BadRequest(c, "invalid age_restriction")
		}
		v := uint8(n)
		ageFilter = &v
	}
	movies, err := h.Movies.Search(c.Request().Context(),
		strings.TrimSpace(c.QueryParam("title")),
		strings.TrimSpace(c.QueryParam("genre")),
		ageFilter)
	if err != nil {
		return DBError(c, err)
	}
	return OK(c, "", movies)
}

// NowPlaying handles GET /v1/movies/now-playing: movies with at least
// one upcoming session.
func (h *MovieHandler) NowPlaying(c echo.Context) error {
	movies, err := h.Movies.NowPlaying(c.Request().Context())
	if err != nil {
		return DBError(c, err)
	}
	return OK(c, "", movies)
}

// Update handles PUT /v1/movies/:id (admin).
func (h *MovieHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return BadRequest(c, err.Error())
	}
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return BadRequest(c, "invalid body")
	}
	if msg := req.validate(); msg != "" {
		return BadRequest(c, msg)
	}
	m, err := h.Movies.GetByID(c.Request().Context(), id)
	if err != nil {
		return DBError(c, err)
	}
	req.apply(m)
	if err := h.Movies.Update(c.Request().Context(), m); err != nil {
		return DBError(c, err)
	}
	return OK(c, "movie updated", m)
}

// Delete handles DELETE /v1/movies/:id (admin).  Sessions of the
// movie cascade away with it.
func (h *MovieHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return BadRequest(c, err.Error())
	}
	if err := h.Movies.Delete(c.Request().Context(), id); err != nil {
		return DBError(c, err)
	}
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: "movie deleted"})
}

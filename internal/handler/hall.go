package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// HallHandler serves hall management and seat layout endpoints.
type HallHandler struct {
	HallRepo *repository.HallRepo
	SeatRepo *repository.SeatRepo
}

func NewHallHandler(h *repository.HallRepo, s *repository.SeatRepo) *HallHandler {
	return &HallHandler{HallRepo: h, SeatRepo: s}
}

type hallReq struct {
	HallNumber  uint32 `json:"hall_number"`
	Name        string `json:"name"`
	TotalRows   uint32 `json:"total_rows"`
	SeatsPerRow uint32 `json:"seats_per_row"`
	Description string `json:"description"`
}

func (r *hallReq) validate() string {
	if r.HallNumber == 0 {
		return "hall_number must be greater than zero"
	}
	if strings.TrimSpace(r.Name) == "" {
		return "name is required"
	}
	h := model.Hall{TotalRows: r.TotalRows, SeatsPerRow: r.SeatsPerRow}
	if !h.ValidLayout() {
		return "total_rows and seats_per_row are out of range"
	}
	return ""
}

// Create handles POST /v1/halls (admin).  The hall and its full seat
// grid are created in one transaction.
func (h *HallHandler) Create(c echo.Context) error {
	var req hallReq
	if err := c.Bind(&req); err != nil {
		return BadRequest(c, "invalid body")
	}
	if msg := req.validate(); msg != "" {
		return BadRequest(c, msg)
	}

	hall := model.Hall{
		HallNumber:  req.HallNumber,
		Name:        strings.TrimSpace(req.Name),
		TotalRows:   req.TotalRows,
		SeatsPerRow: req.SeatsPerRow,
		Description: strings.TrimSpace(req.Description),
	}

	ctx := c.Request().Context()
	tx, err := h.HallRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return Fail(c, http.StatusInternalServerError, "failed to start transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.HallRepo.CreateTx(ctx, tx, &hall); err != nil {
		return DBError(c, err)
	}
	seats := model.SeatGrid(hall.ID, hall.TotalRows, hall.SeatsPerRow)
	if err := h.SeatRepo.CreateBulkTx(ctx, tx, seats); err != nil {
		return DBError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return Fail(c, http.StatusInternalServerError, "commit failed")
	}
	committed = true

	return Created(c, "hall created", echo.Map{"hall": hall, "seats_created": len(seats)})
}

// Get handles GET /v1/halls/:id.
func (h *HallHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return BadRequest(c, err.Error())
	}
	hall, err := h.HallRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return DBError(c, err)
	}
	return OK(c, "", hall)
}

// List handles GET /v1/halls.
func (h *HallHandler) List(c echo.Context) error {
	halls, err := h.HallRepo.List(c.Request().Context())
	if err != nil {
		return DBError(c, err)
	}
	return OK(c, "", halls)
}

// Seats handles GET /v1/halls/:id/seats, returning the layout in
// row-major order.
func (h *HallHandler) Seats(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return BadRequest(c, err.Error())
	}
	if _, err := h.HallRepo.GetByID(c.Request().Context(), id); err != nil {
		return DBError(c, err)
	}
	seats, err := h.SeatRepo.GetByHall(c.Request().Context(), id)
	if err != nil {
		return DBError(c, err)
	}
	return OK(c, "", seats)
}

// Update handles PUT /v1/halls/:id (admin).  Changing the layout does
// not touch existing seats; use InitializeSeats to rebuild them.
func (h *HallHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return BadRequest(c, err.Error())
	}
	var req hallReq
	if err := c.Bind(&req); err != nil {
		return BadRequest(c, "invalid body")
	}
	if msg := req.validate(); msg != "" {
		return BadRequest(c, msg)
	}
	hall, err := h.HallRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return DBError(c, err)
	}
	hall.HallNumber = req.HallNumber
	hall.Name = strings.TrimSpace(req.Name)
	hall.TotalRows = req.TotalRows
	hall.SeatsPerRow = req.SeatsPerRow
	hall.Description = strings.TrimSpace(req.Description)
	if err := h.HallRepo.Update(c.Request().Context(), hall); err != nil {
		return DBError(c, err)
	}
	return OK(c, "hall updated", hall)
}

// InitializeSeats handles POST /v1/halls/:id/seats/initialize (admin).
// Existing seats are dropped and the grid is rebuilt from the hall's
// current dimensions.  Tickets referencing the old seats cascade away,
// so this is for halls without sold inventory.
func (h *HallHandler) InitializeSeats(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return BadRequest(c, err.Error())
	}
	ctx := c.Request().Context()
	hall, err := h.HallRepo.GetByID(ctx, id)
	if err != nil {
		return DBError(c, err)
	}

	tx, err := h.HallRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return Fail(c, http.StatusInternalServerError, "failed to start transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.SeatRepo.DeleteByHallTx(ctx, tx, hall.ID); err != nil {
		return Fail(c, http.StatusInternalServerError, "failed to clear seats")
	}
	seats := model.SeatGrid(hall.ID, hall.TotalRows, hall.SeatsPerRow)
	if err := h.SeatRepo.CreateBulkTx(ctx, tx, seats); err != nil {
		return DBError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return Fail(c, http.StatusInternalServerError, "commit failed")
	}
	committed = true

	return OK(c, "seats initialized", echo.Map{"hall_id": hall.ID, "seats_created": len(seats)})
}

// Delete handles DELETE /v1/halls/:id (admin).
func (h *HallHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return BadRequest(c, err.Error())
	}
	if err := h.HallRepo.Delete(c.Request().Context(), id); err != nil {
		return DBError(c, err)
	}
	return OK(c, "hall deleted", nil)
}
